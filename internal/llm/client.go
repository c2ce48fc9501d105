package llm

import (
	"context"
)

// Client defines the interface for reasoning service providers. The
// service returns raw text; callers must treat it as untrusted and
// unstructured.
type Client interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// GenerationConfig controls text generation for a provider client.
// It is fixed at construction; every call uses the same settings.
type GenerationConfig struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

func (g GenerationConfig) withDefaults() GenerationConfig {
	if g.MaxTokens == 0 {
		g.MaxTokens = 1024
	}
	if g.Temperature == 0 {
		g.Temperature = 0.1
	}
	if g.TopP == 0 {
		g.TopP = 1.0
	}
	return g
}
