// Package workflow orchestrates the risk assessment pipeline:
// validation, scoring, compliance check, and decision explanation,
// assembled into one record per entity.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kestrelworks/riskflow/internal/common"
	"github.com/kestrelworks/riskflow/internal/model"
)

// Runner sequences the assessment stages for a single entity.
type Runner struct {
	scorer   Scorer
	reasoner Reasoner
	logger   *slog.Logger
}

// NewRunner creates a workflow runner with the given dependencies.
func NewRunner(scorer Scorer, reasoner Reasoner, logger *slog.Logger) *Runner {
	return &Runner{
		scorer:   scorer,
		reasoner: reasoner,
		logger:   logger,
	}
}

// Assess runs the full workflow for one entity. It fails only on
// validation or scoring errors; compliance and explanation failures
// degrade their sub-objects but the record is still fully assembled.
// Validation is the hard gate because there is no meaningful score to
// compute from incomplete identity data, while the reasoning output
// is advisory.
func (r *Runner) Assess(ctx context.Context, entity model.EntityRecord) (model.AssessmentRecord, error) {
	if missing := entity.MissingFields(); len(missing) > 0 {
		return model.AssessmentRecord{}, fmt.Errorf("%w: %s", common.ErrValidation, model.ValidationMessage(missing))
	}

	credit := *entity.CreditData
	fin := *entity.FinancialData

	risk, ratios, err := r.scorer.Assess(ctx, credit, fin)
	if err != nil {
		return model.AssessmentRecord{}, fmt.Errorf("scoring failed for %q: %w", entity.EntityName, err)
	}

	compliance, complianceDeg := r.reasoner.QueryCompliance(ctx, ratios)

	riskFactors := map[string]any{
		"debt_to_income":        ratios["debt_to_income"],
		"payment_history_score": credit.PaymentHistoryScore,
		"credit_utilization":    credit.CreditUtilization,
	}
	explanation, explanationDeg := r.reasoner.ExplainDecision(ctx, risk.CreditScore, riskFactors, compliance.Violations)

	compliance.Normalize()
	explanation.Normalize()

	record := model.AssessmentRecord{
		ID:              uuid.NewString(),
		EntityName:      entity.EntityName,
		CreditScore:     risk.CreditScore,
		RiskLevel:       risk.RiskLevel,
		RiskColor:       risk.RiskColor,
		FinancialRatios: ratios,
		Compliance:      compliance,
		Explanation:     explanation,
		CreditData:      entity.CreditData,
		FinancialData:   entity.FinancialData,
		Timestamp:       time.Now().UTC(),
	}

	r.logger.Info("entity assessed",
		"entity", entity.EntityName,
		"credit_score", risk.CreditScore,
		"risk_level", risk.RiskLevel,
		"compliance_degraded", complianceDeg != nil,
		"explanation_degraded", explanationDeg != nil)

	return record, nil
}
