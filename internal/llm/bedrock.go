package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// bedrockClient implements the Client interface for AWS Bedrock
// text models.
type bedrockClient struct {
	runtime *bedrockruntime.Client
	modelID string
	gen     GenerationConfig
}

// newBedrockClient creates a new Bedrock runtime client.
func newBedrockClient(ctx context.Context, cfg Config) (Client, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("AWS region is required for the bedrock provider")
	}

	modelID := cfg.Model
	if modelID == "" {
		modelID = "amazon.titan-text-express-v1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	gen := GenerationConfig{
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
	}.withDefaults()

	return &bedrockClient{
		runtime: bedrockruntime.NewFromConfig(awsCfg),
		modelID: modelID,
		gen:     gen,
	}, nil
}

// titanRequest is the request body shape for Titan text models.
type titanRequest struct {
	InputText            string      `json:"inputText"`
	TextGenerationConfig titanConfig `json:"textGenerationConfig"`
}

type titanConfig struct {
	MaxTokenCount int      `json:"maxTokenCount"`
	StopSequences []string `json:"stopSequences"`
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"topP"`
}

type titanResponse struct {
	Results []struct {
		OutputText string `json:"outputText"`
	} `json:"results"`
}

// Invoke sends a prompt to the Bedrock model and returns the raw
// generated text.
func (c *bedrockClient) Invoke(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(titanRequest{
		InputText: prompt,
		TextGenerationConfig: titanConfig{
			MaxTokenCount: c.gen.MaxTokens,
			StopSequences: []string{},
			Temperature:   c.gen.Temperature,
			TopP:          c.gen.TopP,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	out, err := c.runtime.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock invocation failed: %w", err)
	}

	var response titanResponse
	if err := json.Unmarshal(out.Body, &response); err != nil {
		return "", fmt.Errorf("failed to parse bedrock response: %w", err)
	}

	if len(response.Results) == 0 {
		return "", fmt.Errorf("no results in bedrock response")
	}

	return response.Results[0].OutputText, nil
}
