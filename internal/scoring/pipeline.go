// Package scoring implements the deterministic credit scoring pipeline.
package scoring

import (
	"context"
	"log/slog"

	"github.com/kestrelworks/riskflow/internal/model"
)

// Score bounds and the neutral base used when no bureau score exists.
const (
	MinScore         = 300
	MaxScore         = 850
	neutralBaseScore = 650
)

// Risk tier thresholds. Scores at or above each threshold map to the
// corresponding tier; anything below highThreshold is VERY HIGH.
const (
	lowThreshold    = 750
	mediumThreshold = 650
	highThreshold   = 550
)

// Model is an optional externally supplied predictor. When present
// and successful, its score replaces the rule-based base score. The
// rule-based path must remain fully functional without one.
type Model interface {
	Predict(credit model.CreditData, fin model.FinancialData) (int, error)
}

// Pipeline computes credit scores and financial ratios. It is pure
// and deterministic: identical input produces bit-identical output.
type Pipeline struct {
	model  Model
	logger *slog.Logger
}

// NewPipeline creates a rule-based scoring pipeline.
func NewPipeline(logger *slog.Logger) *Pipeline {
	return &Pipeline{logger: logger}
}

// NewPipelineWithModel creates a pipeline backed by an external
// predictor, falling back to the rule-based path if it fails.
func NewPipelineWithModel(m Model, logger *slog.Logger) *Pipeline {
	return &Pipeline{model: m, logger: logger}
}

// CalculateRatios derives financial ratios from statement data. The
// max(1, denominator) floor trades accuracy at pathological inputs
// for total robustness: zero income or liabilities never divide by
// zero and never error.
func (p *Pipeline) CalculateRatios(fin model.FinancialData) model.FinancialRatios {
	return model.FinancialRatios{
		"debt_to_income": fin.TotalDebt / max(1, fin.AnnualIncome),
		"current_ratio":  fin.CurrentAssets / max(1, fin.CurrentLiabilities),
	}
}

// Score computes the credit score and risk tier for an applicant.
// The base is the bureau score when present, otherwise a neutral 650
// for applicants with no credit history. Payment history adjusts
// relative to an 0.8 baseline; utilization penalizes linearly.
func (p *Pipeline) Score(credit model.CreditData, fin model.FinancialData) model.RiskResult {
	base := float64(neutralBaseScore)
	if credit.CibilScore != nil {
		base = float64(*credit.CibilScore)
	}

	if p.model != nil {
		predicted, err := p.model.Predict(credit, fin)
		if err != nil {
			if p.logger != nil {
				p.logger.Warn("external scoring model failed, using rule-based score",
					"error", err)
			}
		} else {
			base = float64(predicted)
		}
	}

	score := base + (credit.PaymentHistoryScore-0.8)*100
	score -= credit.CreditUtilization * 50

	final := clamp(int(score))
	level, color := riskLevel(final)

	return model.RiskResult{
		CreditScore: final,
		RiskLevel:   level,
		RiskColor:   color,
	}
}

func clamp(score int) int {
	if score > MaxScore {
		return MaxScore
	}
	if score < MinScore {
		return MinScore
	}
	return score
}

// Assess runs the full local pipeline. It satisfies the workflow's
// Scorer contract; the context is accepted for interface parity with
// the remote scorer and never used, and the local path cannot fail.
func (p *Pipeline) Assess(_ context.Context, credit model.CreditData, fin model.FinancialData) (model.RiskResult, model.FinancialRatios, error) {
	return p.Score(credit, fin), p.CalculateRatios(fin), nil
}

// riskLevel maps a clamped score to its tier and color tag. The
// thresholds partition [300,850] totally and without overlap.
func riskLevel(score int) (model.RiskLevel, string) {
	switch {
	case score >= lowThreshold:
		return model.RiskLow, model.ColorLow
	case score >= mediumThreshold:
		return model.RiskMedium, model.ColorMedium
	case score >= highThreshold:
		return model.RiskHigh, model.ColorHigh
	default:
		return model.RiskVeryHigh, model.ColorVeryHigh
	}
}
