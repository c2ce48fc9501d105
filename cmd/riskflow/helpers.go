package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/kestrelworks/riskflow/internal/llm"
	"github.com/kestrelworks/riskflow/internal/model"
	"github.com/kestrelworks/riskflow/internal/scoring"
	"github.com/kestrelworks/riskflow/internal/workflow"
)

func defaultLogger() *slog.Logger {
	return slog.Default()
}

func reasoningConfig() llm.Config {
	viper.SetDefault("reasoning.provider", "bedrock")
	viper.SetDefault("reasoning.rate_limit", 60)

	region := viper.GetString("reasoning.region")
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}

	return llm.Config{
		Provider:    viper.GetString("reasoning.provider"),
		Region:      region,
		APIKey:      viper.GetString("reasoning.api_key"),
		Model:       viper.GetString("reasoning.model"),
		MaxTokens:   viper.GetInt("reasoning.max_tokens"),
		Temperature: viper.GetFloat64("reasoning.temperature"),
		TopP:        viper.GetFloat64("reasoning.top_p"),
		Timeout:     viper.GetDuration("reasoning.timeout"),
		RateLimit:   viper.GetInt("reasoning.rate_limit"),
	}
}

// newRunner wires the workflow from configuration: a reasoning agent
// plus either the local scoring pipeline or a remote scoring service.
func newRunner(ctx context.Context, remoteURL string, logger *slog.Logger) (*workflow.Runner, *llm.Agent, error) {
	cfg := reasoningConfig()

	client, err := llm.NewClient(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create reasoning client: %w", err)
	}
	agent := llm.NewAgent(client, cfg, logger)

	var scorer workflow.Scorer
	if remoteURL != "" {
		remote, err := scoring.NewRemoteScorer(scoring.RemoteConfig{BaseURL: remoteURL}, logger)
		if err != nil {
			return nil, nil, err
		}
		scorer = remote
	} else {
		scorer = scoring.NewPipeline(logger)
	}

	return workflow.NewRunner(scorer, agent, logger), agent, nil
}

// loadEntities parses a JSON document holding either a single entity
// or an ordered sequence of them.
func loadEntities(data []byte) ([]model.EntityRecord, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("no input data received")
	}

	if strings.HasPrefix(trimmed, "[") {
		var entities []model.EntityRecord
		if err := json.Unmarshal([]byte(trimmed), &entities); err != nil {
			return nil, fmt.Errorf("failed to parse entity list: %w", err)
		}
		return entities, nil
	}

	var entity model.EntityRecord
	if err := json.Unmarshal([]byte(trimmed), &entity); err != nil {
		return nil, fmt.Errorf("failed to parse entity: %w", err)
	}
	return []model.EntityRecord{entity}, nil
}

func defaultDBPath() (string, error) {
	if configured := viper.GetString("database.path"); configured != "" {
		return configured, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "riskflow", "assessments.db"), nil
}
