package workflow

import (
	"context"
	"sync"

	"github.com/kestrelworks/riskflow/internal/llm"
	"github.com/kestrelworks/riskflow/internal/model"
)

// MockScorer is a test implementation of the Scorer interface.
type MockScorer struct {
	Result model.RiskResult
	Ratios model.FinancialRatios
	Err    error

	mu    sync.Mutex
	calls int
}

// Assess returns the configured result or error.
func (m *MockScorer) Assess(_ context.Context, _ model.CreditData, _ model.FinancialData) (model.RiskResult, model.FinancialRatios, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Err != nil {
		return model.RiskResult{}, nil, m.Err
	}
	return m.Result, m.Ratios, nil
}

// Calls reports how many times Assess was invoked.
func (m *MockScorer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockReasoner is a test implementation of the Reasoner interface.
// When a Degradation is configured the corresponding fallback result
// is returned alongside it, mirroring the real gateway contract.
type MockReasoner struct {
	Compliance     model.ComplianceResult
	ComplianceDeg  *llm.Degradation
	Explanation    model.Explanation
	ExplanationDeg *llm.Degradation

	mu               sync.Mutex
	complianceCalls  int
	explanationCalls int
	lastViolations   []string
}

// QueryCompliance returns the configured compliance result.
func (m *MockReasoner) QueryCompliance(_ context.Context, _ model.FinancialRatios) (model.ComplianceResult, *llm.Degradation) {
	m.mu.Lock()
	m.complianceCalls++
	m.mu.Unlock()

	result := m.Compliance
	result.Normalize()
	return result, m.ComplianceDeg
}

// ExplainDecision returns the configured explanation and records the
// violations it was handed.
func (m *MockReasoner) ExplainDecision(_ context.Context, _ int, _ map[string]any, violations []string) (model.Explanation, *llm.Degradation) {
	m.mu.Lock()
	m.explanationCalls++
	m.lastViolations = violations
	m.mu.Unlock()

	result := m.Explanation
	result.Normalize()
	return result, m.ExplanationDeg
}

// LastViolations reports the violations passed to the most recent
// ExplainDecision call.
func (m *MockReasoner) LastViolations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastViolations
}
