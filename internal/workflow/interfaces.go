package workflow

import (
	"context"

	"github.com/kestrelworks/riskflow/internal/llm"
	"github.com/kestrelworks/riskflow/internal/model"
)

// Scorer produces a risk result and financial ratios for an
// applicant. The local pipeline and the remote scoring client both
// satisfy it. A Scorer error is fatal for the entity: the score is
// load-bearing and has no fallback.
type Scorer interface {
	Assess(ctx context.Context, credit model.CreditData, fin model.FinancialData) (model.RiskResult, model.FinancialRatios, error)
}

// Reasoner answers compliance and explanation questions. Both methods
// degrade instead of failing: a non-nil Degradation marks a fallback
// result, and no error ever propagates to the workflow.
type Reasoner interface {
	QueryCompliance(ctx context.Context, ratios model.FinancialRatios) (model.ComplianceResult, *llm.Degradation)
	ExplainDecision(ctx context.Context, creditScore int, riskFactors map[string]any, violations []string) (model.Explanation, *llm.Degradation)
}
