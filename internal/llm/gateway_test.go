package llm

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelworks/riskflow/internal/common"
	"github.com/kestrelworks/riskflow/internal/model"
)

// stubClient is a canned-response reasoning client.
type stubClient struct {
	response string
	err      error
	prompts  []string
}

func (s *stubClient) Invoke(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func newTestAgent(client Client) *Agent {
	return NewAgent(client, Config{
		RateLimit: 600,
		Timeout:   time.Second,
	}, slog.Default())
}

func TestQueryComplianceSuccess(t *testing.T) {
	client := &stubClient{
		response: `Here you go: {"compliance_score": 80, "violations": []} Thanks!`,
	}
	agent := newTestAgent(client)
	defer func() { _ = agent.Close() }()

	ratios := model.FinancialRatios{"debt_to_income": 0.2, "current_ratio": 2.5}
	result, deg := agent.QueryCompliance(context.Background(), ratios)

	require.Nil(t, deg)
	assert.Equal(t, 80, result.ComplianceScore)
	assert.Empty(t, result.Violations)
	assert.NotNil(t, result.Recommendations, "recommendations must be present even when empty")

	// The prompt must carry the policy thresholds.
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "0.43")
	assert.Contains(t, client.prompts[0], "1.0")
}

func TestQueryComplianceRemoteFailure(t *testing.T) {
	client := &stubClient{err: errors.New("connection refused")}
	agent := newTestAgent(client)
	defer func() { _ = agent.Close() }()

	result, deg := agent.QueryCompliance(context.Background(), model.FinancialRatios{})

	require.NotNil(t, deg)
	assert.Equal(t, 0, result.ComplianceScore)
	require.Len(t, result.Violations, 1)
	assert.Contains(t, result.Violations[0], "Compliance Check Error")
	assert.Contains(t, result.Violations[0], "connection refused", "fallback must name the cause")

	// Exactly one invocation attempt, never a retry.
	assert.Len(t, client.prompts, 1)
}

func TestQueryComplianceNoJSON(t *testing.T) {
	client := &stubClient{response: "I am unable to produce structured output."}
	agent := newTestAgent(client)
	defer func() { _ = agent.Close() }()

	_, deg := agent.QueryCompliance(context.Background(), model.FinancialRatios{})
	require.NotNil(t, deg)
	assert.ErrorIs(t, deg.Err, common.ErrExtraction)
}

func TestQueryComplianceMalformedJSON(t *testing.T) {
	client := &stubClient{response: `{"compliance_score": 80, "violations": [}`}
	agent := newTestAgent(client)
	defer func() { _ = agent.Close() }()

	_, deg := agent.QueryCompliance(context.Background(), model.FinancialRatios{})
	require.NotNil(t, deg)
	// A decode failure reads differently from a missing span.
	assert.NotErrorIs(t, deg.Err, common.ErrExtraction)
	assert.Contains(t, deg.Err.Error(), "malformed JSON")
}

func TestExplainDecisionSuccess(t *testing.T) {
	client := &stubClient{
		response: `{"decision": "Approve", "primary_explanation": "Solid history.",
			"detailed_factors": ["low utilization"], "suggestions_for_improvement": [],
			"confidence_score": 88}`,
	}
	agent := newTestAgent(client)
	defer func() { _ = agent.Close() }()

	result, deg := agent.ExplainDecision(context.Background(), 720, map[string]any{"debt_to_income": 0.2}, nil)

	require.Nil(t, deg)
	assert.Equal(t, "Approve", result.Decision)
	assert.Equal(t, 88.0, result.ConfidenceScore)
	assert.Equal(t, []string{"low utilization"}, result.DetailedFactors)
}

func TestExplainDecisionRepairsStructure(t *testing.T) {
	// The model returned a bare string where a list belongs and
	// dropped the confidence entirely.
	client := &stubClient{
		response: `{"decision": "Deny", "primary_explanation": "High debt.",
			"detailed_factors": "debt_to_income exceeds policy"}`,
	}
	agent := newTestAgent(client)
	defer func() { _ = agent.Close() }()

	result, deg := agent.ExplainDecision(context.Background(), 540, nil, []string{"dti too high"})

	require.Nil(t, deg)
	assert.Equal(t, []string{"debt_to_income exceeds policy"}, result.DetailedFactors)
	assert.NotNil(t, result.SuggestionsForImprovement)
	assert.Equal(t, 50.0, result.ConfidenceScore, "missing confidence gets the default")
}

func TestExplainDecisionFailure(t *testing.T) {
	client := &stubClient{err: errors.New("throttled")}
	agent := newTestAgent(client)
	defer func() { _ = agent.Close() }()

	result, deg := agent.ExplainDecision(context.Background(), 600, nil, nil)

	require.NotNil(t, deg)
	assert.Equal(t, "Error", result.Decision)
	assert.Contains(t, result.PrimaryExplanation, "throttled", "fallback must name the cause")
	assert.NotNil(t, result.DetailedFactors)
	assert.NotNil(t, result.SuggestionsForImprovement)
	assert.Equal(t, 0.0, result.ConfidenceScore)
}
