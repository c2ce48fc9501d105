package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Config holds configuration for the reasoning gateway and its
// provider client.
type Config struct {
	Provider    string
	Region      string // bedrock
	APIKey      string // anthropic
	Model       string
	MaxTokens   int
	Temperature float64
	TopP        float64
	Timeout     time.Duration
	RateLimit   int
}

// NewClient creates a raw reasoning client based on the provided
// configuration.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "bedrock":
		return newBedrockClient(ctx, cfg)
	case "anthropic":
		return newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported reasoning provider: %s", cfg.Provider)
	}
}
