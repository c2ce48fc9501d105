package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kestrelworks/riskflow/internal/common"
	"github.com/kestrelworks/riskflow/internal/model"
)

// RemoteScorer calls a scoring service that runs the pipeline in a
// separate deployment. Unlike the reasoning service, the score is
// load-bearing: any failure here is fatal for the entity being
// assessed, never silently degraded.
type RemoteScorer struct {
	httpClient *http.Client
	baseURL    string
	retryOpts  common.RetryOptions
	logger     *slog.Logger
}

// RemoteConfig configures a RemoteScorer.
type RemoteConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// NewRemoteScorer creates a client for a split scoring service.
func NewRemoteScorer(cfg RemoteConfig, logger *slog.Logger) (*RemoteScorer, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: scoring service URL is required", common.ErrMissingConfig)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &RemoteScorer{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		retryOpts: retryOpts,
		logger:    logger,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

type scoreRequest struct {
	CreditData    model.CreditData    `json:"credit_data"`
	FinancialData model.FinancialData `json:"financial_data"`
}

type scoreResponse struct {
	CreditScore     int                   `json:"credit_score"`
	RiskLevel       model.RiskLevel       `json:"risk_level"`
	RiskColor       string                `json:"risk_color"`
	FinancialRatios model.FinancialRatios `json:"financial_ratios"`
}

// Assess requests a score from the remote service. Transport errors
// are retried a bounded number of times before failing hard.
func (r *RemoteScorer) Assess(ctx context.Context, credit model.CreditData, fin model.FinancialData) (model.RiskResult, model.FinancialRatios, error) {
	var result scoreResponse

	err := common.WithRetry(ctx, func() error {
		resp, err := r.doScore(ctx, credit, fin)
		if err != nil {
			return err
		}
		result = resp
		return nil
	}, r.retryOpts)
	if err != nil {
		return model.RiskResult{}, nil, err
	}

	risk := model.RiskResult{
		CreditScore: result.CreditScore,
		RiskLevel:   result.RiskLevel,
		RiskColor:   result.RiskColor,
	}
	ratios := result.FinancialRatios
	if ratios == nil {
		ratios = model.FinancialRatios{}
	}
	return risk, ratios, nil
}

func (r *RemoteScorer) doScore(ctx context.Context, credit model.CreditData, fin model.FinancialData) (scoreResponse, error) {
	body, err := json.Marshal(scoreRequest{CreditData: credit, FinancialData: fin})
	if err != nil {
		return scoreResponse{}, fmt.Errorf("failed to marshal score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/v1/score", strings.NewReader(string(body)))
	if err != nil {
		return scoreResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		// Connection failures are worth retrying before giving up.
		return scoreResponse{}, &common.RetryableError{
			Err:       fmt.Errorf("%w: %v", common.ErrScoringUnavailable, err),
			Retryable: true,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return scoreResponse{}, &common.RetryableError{
			Err:       fmt.Errorf("%w: failed to read response: %v", common.ErrScoringUnavailable, err),
			Retryable: true,
		}
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= http.StatusInternalServerError
		return scoreResponse{}, &common.RetryableError{
			Err:       fmt.Errorf("%w: status %d: %s", common.ErrScoringResponse, resp.StatusCode, string(respBody)),
			Retryable: retryable,
		}
	}

	var result scoreResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return scoreResponse{}, &common.RetryableError{
			Err:       fmt.Errorf("%w: %v", common.ErrScoringResponse, err),
			Retryable: false,
		}
	}

	r.logger.Debug("remote score received",
		"credit_score", result.CreditScore,
		"risk_level", result.RiskLevel)

	return result, nil
}
