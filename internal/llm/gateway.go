// Package llm wraps calls to an external generative-text service and
// converts its untrusted output into the strict result structures the
// rest of the workflow consumes. Raw model text never crosses this
// package boundary.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kestrelworks/riskflow/internal/model"
)

// Canonical policy thresholds communicated to the reasoning service.
const (
	maxDebtToIncome = 0.43
	minCurrentRatio = 1.0
)

// Degradation records why a gateway call fell back instead of
// succeeding. A nil *Degradation means the result came from the
// service; callers must check it, so a degraded result cannot be
// mistaken for a real verdict.
type Degradation struct {
	Stage string
	Err   error
}

func (d *Degradation) String() string {
	return fmt.Sprintf("%s degraded: %v", d.Stage, d.Err)
}

// Agent is the reasoning gateway. Each call runs build prompt →
// invoke → extract JSON → repair structure, with any failure routing
// to a fallback result. There is no retry of the remote call: one
// invocation per request bounds latency against an already-unreliable
// dependency.
type Agent struct {
	client  Client
	limiter *rateLimiter
	logger  *slog.Logger
	timeout time.Duration
}

// NewAgent creates a reasoning gateway around the given client. The
// client is injected rather than constructed globally so tests can
// substitute doubles.
func NewAgent(client Client, cfg Config, logger *slog.Logger) *Agent {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Agent{
		client:  client,
		limiter: newRateLimiter(cfg.RateLimit),
		logger:  logger,
		timeout: timeout,
	}
}

// Close stops the gateway's background goroutines.
func (a *Agent) Close() error {
	if a.limiter != nil {
		a.limiter.Close()
	}
	return nil
}

// QueryCompliance asks the reasoning service whether the given ratios
// satisfy the lending policy. On any failure it returns the fallback
// verdict and a non-nil Degradation; it never returns an error.
func (a *Agent) QueryCompliance(ctx context.Context, ratios model.FinancialRatios) (model.ComplianceResult, *Degradation) {
	payload, deg := a.invokeAndExtract(ctx, "compliance", compliancePrompt(ratios))
	if deg != nil {
		return complianceFallback(deg.Err), deg
	}

	result := repairCompliance(payload)

	a.logger.Debug("compliance verdict received",
		"compliance_score", result.ComplianceScore,
		"violation_count", len(result.Violations))

	return result, nil
}

// ExplainDecision asks the reasoning service to narrate a risk
// decision. The structure-repair pass runs even on success: the
// remote schema is not contractually guaranteed. On failure it
// returns the fallback explanation and a non-nil Degradation.
func (a *Agent) ExplainDecision(ctx context.Context, creditScore int, riskFactors map[string]any, violations []string) (model.Explanation, *Degradation) {
	payload, deg := a.invokeAndExtract(ctx, "explanation", explanationPrompt(creditScore, riskFactors, violations))
	if deg != nil {
		return explanationFallback(deg.Err), deg
	}

	result := repairExplanation(payload)

	a.logger.Debug("explanation received",
		"decision", result.Decision,
		"confidence", result.ConfidenceScore)

	return result, nil
}

// invokeAndExtract runs the shared invoke → extract → decode portion
// of a gateway call and reports the first failure as a Degradation.
func (a *Agent) invokeAndExtract(ctx context.Context, stage, prompt string) (map[string]any, *Degradation) {
	if err := a.limiter.wait(ctx); err != nil {
		return nil, a.degrade(stage, err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.client.Invoke(ctx, prompt)
	if err != nil {
		return nil, a.degrade(stage, fmt.Errorf("reasoning service call failed: %w", err))
	}

	span, err := ExtractJSON(raw)
	if err != nil {
		return nil, a.degrade(stage, err)
	}

	var payload map[string]any
	if err := json.Unmarshal(span, &payload); err != nil {
		return nil, a.degrade(stage, fmt.Errorf("malformed JSON in model output: %w", err))
	}

	return payload, nil
}

func (a *Agent) degrade(stage string, err error) *Degradation {
	a.logger.Warn("reasoning call degraded to fallback",
		"stage", stage,
		"error", err)
	return &Degradation{Stage: stage, Err: err}
}

func complianceFallback(cause error) model.ComplianceResult {
	return model.ComplianceResult{
		ComplianceScore: 0,
		Violations:      []string{fmt.Sprintf("Compliance Check Error: %v", cause)},
		Recommendations: []string{},
	}
}

func explanationFallback(cause error) model.Explanation {
	return model.Explanation{
		Decision:                  "Error",
		PrimaryExplanation:        fmt.Sprintf("Could not get an explanation from the reasoning service: %v", cause),
		DetailedFactors:           []string{},
		SuggestionsForImprovement: []string{},
		ConfidenceScore:           0,
	}
}

func compliancePrompt(ratios model.FinancialRatios) string {
	ratioJSON, _ := json.Marshal(ratios)

	return fmt.Sprintf(`Analyze these financial ratios: %s

Lending policy:
- debt_to_income must be below %.2f
- current_ratio must be above %.1f

Respond with a single JSON object with keys: "compliance_score" (integer 0-100) and "violations" (list of strings describing each policy violation, empty if compliant).

JSON Response:`, ratioJSON, maxDebtToIncome, minCurrentRatio)
}

func explanationPrompt(creditScore int, riskFactors map[string]any, violations []string) string {
	factorJSON, _ := json.Marshal(riskFactors)

	violationText := "none"
	if len(violations) > 0 {
		violationText = strings.Join(violations, "; ")
	}

	return fmt.Sprintf(`You are a helpful and empathetic senior loan advisor. Explain a lending decision for an applicant with a credit score of %d, risk factors %s, and compliance violations (%s).

IMPORTANT: Your final output must be a single, valid JSON object with keys: "decision" (Approve, Deny, or Manual Review), "primary_explanation" (string), "detailed_factors" (list of strings), "suggestions_for_improvement" (list of strings), and "confidence_score" (number 0-100).

JSON Response:`, creditScore, factorJSON, violationText)
}
