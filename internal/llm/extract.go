package llm

import (
	"fmt"
	"strings"

	"github.com/kestrelworks/riskflow/internal/common"
)

// ExtractJSON finds the JSON object embedded in raw model output.
// Generative services routinely wrap JSON in conversational prose or
// markdown fences, so the scan is greedy: everything from the first
// '{' through the last '}'. A missing span is an extraction failure,
// distinct from a decode failure downstream.
func ExtractJSON(text string) ([]byte, error) {
	cleaned := stripMarkdownFences(text)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: %q", common.ErrExtraction, truncate(text, 120))
	}

	return []byte(cleaned[start : end+1]), nil
}

// stripMarkdownFences removes ```json ... ``` wrappers some models
// emit around structured output.
func stripMarkdownFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.Contains(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.ReplaceAll(trimmed, "```json", "")
	trimmed = strings.ReplaceAll(trimmed, "```", "")
	return strings.TrimSpace(trimmed)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
