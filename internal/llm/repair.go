package llm

import (
	"fmt"

	"github.com/kestrelworks/riskflow/internal/model"
)

// Named defaults substituted for missing explanation scalars.
const (
	defaultDecision    = "Manual Review"
	defaultExplanation = "AI analysis requires review."
	defaultConfidence  = 50.0
)

// repairCompliance forces a decoded compliance payload into the
// contractual shape: score clamped to [0,100], violations always a
// list, recommendations always present and empty by policy.
func repairCompliance(payload map[string]any) model.ComplianceResult {
	result := model.ComplianceResult{
		ComplianceScore: clampScore(asNumber(payload["compliance_score"], 0)),
		Violations:      asStringList(payload["violations"]),
		Recommendations: []string{},
	}
	result.Normalize()
	return result
}

// repairExplanation forces a decoded explanation payload into the
// contractual shape. This runs on the success path too: the remote
// model is a generative service, not a typed API, and has returned
// bare strings where lists belong.
func repairExplanation(payload map[string]any) model.Explanation {
	result := model.Explanation{
		Decision:                  asString(payload["decision"], defaultDecision),
		PrimaryExplanation:        asString(payload["primary_explanation"], defaultExplanation),
		DetailedFactors:           asStringList(payload["detailed_factors"]),
		SuggestionsForImprovement: asStringList(payload["suggestions_for_improvement"]),
		ConfidenceScore:           asNumber(payload["confidence_score"], defaultConfidence),
	}
	result.Normalize()
	return result
}

// asStringList coerces a value to a string slice: a bare string
// becomes a one-element list, a list keeps its elements (stringifying
// non-strings), anything else becomes an empty list.
func asStringList(v any) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	case []string:
		return val
	default:
		return []string{}
	}
}

func asString(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

// asNumber coerces a decoded JSON value to float64. Models sometimes
// quote numbers; tolerate the string form.
func asNumber(v any, fallback float64) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		var f float64
		if _, err := fmt.Sscanf(val, "%f", &f); err == nil {
			return f
		}
		return fallback
	default:
		return fallback
	}
}

func clampScore(score float64) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(score)
}
