package workflow

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelworks/riskflow/internal/common"
	"github.com/kestrelworks/riskflow/internal/llm"
	"github.com/kestrelworks/riskflow/internal/model"
	"github.com/kestrelworks/riskflow/internal/scoring"
)

func validEntity(name string) model.EntityRecord {
	return model.EntityRecord{
		EntityName: name,
		CreditData: &model.CreditData{
			PaymentHistoryScore: 0.9,
			CreditUtilization:   0.3,
			CreditHistoryMonths: 48,
			CreditTypes:         3,
			RecentInquiries:     1,
		},
		FinancialData: &model.FinancialData{
			AnnualIncome:       120000,
			TotalDebt:          20000,
			CurrentAssets:      50000,
			CurrentLiabilities: 20000,
		},
	}
}

func scoredMock() *MockScorer {
	return &MockScorer{
		Result: model.RiskResult{CreditScore: 710, RiskLevel: model.RiskMedium, RiskColor: model.ColorMedium},
		Ratios: model.FinancialRatios{"debt_to_income": 0.17, "current_ratio": 2.5},
	}
}

func TestAssessSuccess(t *testing.T) {
	scorer := scoredMock()
	reasoner := &MockReasoner{
		Compliance: model.ComplianceResult{ComplianceScore: 90},
		Explanation: model.Explanation{
			Decision:           "Approve",
			PrimaryExplanation: "Strong payment history.",
			ConfidenceScore:    85,
		},
	}
	runner := NewRunner(scorer, reasoner, slog.Default())

	record, err := runner.Assess(context.Background(), validEntity("Acme Corp"))
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", record.EntityName)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, 710, record.CreditScore)
	assert.Equal(t, model.RiskMedium, record.RiskLevel)
	assert.Equal(t, "Approve", record.Explanation.Decision)
	assert.Empty(t, record.Error)
	assert.False(t, record.Timestamp.IsZero())
	assert.NotNil(t, record.Compliance.Violations, "list fields must be normalized")
	assert.NotNil(t, record.Explanation.DetailedFactors, "list fields must be normalized")
}

func TestAssessValidationListsAllMissingFields(t *testing.T) {
	runner := NewRunner(scoredMock(), &MockReasoner{}, slog.Default())

	_, err := runner.Assess(context.Background(), model.EntityRecord{})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "entity_name")
	assert.Contains(t, err.Error(), "credit_data")
	assert.Contains(t, err.Error(), "financial_data")
}

func TestAssessScoringFailureIsFatal(t *testing.T) {
	scorer := &MockScorer{Err: common.ErrScoringUnavailable}
	reasoner := &MockReasoner{}
	runner := NewRunner(scorer, reasoner, slog.Default())

	_, err := runner.Assess(context.Background(), validEntity("Acme Corp"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrScoringUnavailable)
	assert.Nil(t, reasoner.LastViolations(), "reasoning must not run when scoring fails")
}

func TestAssessDegradedReasoningStillCompletes(t *testing.T) {
	scorer := scoredMock()
	reasoner := &MockReasoner{
		Compliance:    model.ComplianceResult{Violations: []string{"Compliance Check Error: timeout"}},
		ComplianceDeg: &llm.Degradation{Stage: "compliance", Err: errors.New("timeout")},
		Explanation:   model.Explanation{Decision: "Manual Review", ConfidenceScore: 50},
	}
	runner := NewRunner(scorer, reasoner, slog.Default())

	record, err := runner.Assess(context.Background(), validEntity("Acme Corp"))
	require.NoError(t, err, "degraded reasoning must not abort the workflow")

	assert.Equal(t, model.RiskMedium, record.RiskLevel, "scoring output must survive degradation")
	assert.Len(t, record.Compliance.Violations, 1)
}

func TestAssessEndToEndWithLocalScoring(t *testing.T) {
	reasoner := &MockReasoner{
		Compliance:  model.ComplianceResult{ComplianceScore: 85},
		Explanation: model.Explanation{Decision: "Manual Review", ConfidenceScore: 70},
	}
	runner := NewRunner(scoring.NewPipeline(slog.Default()), reasoner, slog.Default())

	entity := model.EntityRecord{
		EntityName: "Acme",
		CreditData: &model.CreditData{
			PaymentHistoryScore: 0.9,
			CreditUtilization:   0.3,
			CreditHistoryMonths: 24,
			CreditTypes:         3,
			RecentInquiries:     1,
		},
		FinancialData: &model.FinancialData{
			AnnualIncome:       100000,
			TotalDebt:          20000,
			CurrentAssets:      5000,
			CurrentLiabilities: 2000,
			TotalAssets:        50000,
			TotalEquity:        30000,
			NetIncome:          10000,
			InterestExpense:    500,
		},
	}

	record, err := runner.Assess(context.Background(), entity)
	require.NoError(t, err)

	// 650 neutral base + (0.9-0.8)*100 - 0.3*50 = 645
	assert.Equal(t, 645, record.CreditScore)
	assert.Equal(t, model.RiskHigh, record.RiskLevel)
	assert.Equal(t, 0.2, record.FinancialRatios["debt_to_income"])
	assert.Equal(t, 2.5, record.FinancialRatios["current_ratio"])
	assert.Equal(t, "Manual Review", record.Explanation.Decision)
}

func TestAssessForwardsViolationsToExplanation(t *testing.T) {
	scorer := scoredMock()
	reasoner := &MockReasoner{
		Compliance: model.ComplianceResult{
			ComplianceScore: 40,
			Violations:      []string{"debt_to_income above 0.43"},
		},
		Explanation: model.Explanation{Decision: "Deny"},
	}
	runner := NewRunner(scorer, reasoner, slog.Default())

	_, err := runner.Assess(context.Background(), validEntity("Acme Corp"))
	require.NoError(t, err)

	assert.Equal(t, []string{"debt_to_income above 0.43"}, reasoner.LastViolations())
}
