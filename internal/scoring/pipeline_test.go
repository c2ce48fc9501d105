package scoring

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelworks/riskflow/internal/model"
)

func intPtr(v int) *int { return &v }

func TestCalculateRatios(t *testing.T) {
	p := NewPipeline(slog.Default())

	tests := []struct {
		name        string
		fin         model.FinancialData
		wantDTI     float64
		wantCurrent float64
	}{
		{
			name: "normal inputs",
			fin: model.FinancialData{
				AnnualIncome:       100000,
				TotalDebt:          20000,
				CurrentAssets:      5000,
				CurrentLiabilities: 2000,
			},
			wantDTI:     0.2,
			wantCurrent: 2.5,
		},
		{
			name: "zero income floors the denominator",
			fin: model.FinancialData{
				AnnualIncome:       0,
				TotalDebt:          5000,
				CurrentAssets:      1000,
				CurrentLiabilities: 500,
			},
			wantDTI:     5000,
			wantCurrent: 2,
		},
		{
			name: "zero liabilities floors the denominator",
			fin: model.FinancialData{
				AnnualIncome:       50000,
				TotalDebt:          1000,
				CurrentAssets:      750,
				CurrentLiabilities: 0,
			},
			wantDTI:     0.02,
			wantCurrent: 750,
		},
		{
			name:        "all zero",
			fin:         model.FinancialData{},
			wantDTI:     0,
			wantCurrent: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratios := p.CalculateRatios(tt.fin)
			assert.Equal(t, tt.wantDTI, ratios["debt_to_income"])
			assert.Equal(t, tt.wantCurrent, ratios["current_ratio"])
		})
	}
}

func TestScore(t *testing.T) {
	p := NewPipeline(slog.Default())

	tests := []struct {
		name      string
		credit    model.CreditData
		wantScore int
		wantLevel model.RiskLevel
		wantColor string
	}{
		{
			name: "no bureau score uses neutral base",
			credit: model.CreditData{
				PaymentHistoryScore: 0.9,
				CreditUtilization:   0.3,
			},
			// 650 + (0.9-0.8)*100 - 0.3*50 = 645
			wantScore: 645,
			wantLevel: model.RiskHigh,
			wantColor: model.ColorHigh,
		},
		{
			name: "strong applicant lands in low risk",
			credit: model.CreditData{
				CibilScore:          intPtr(780),
				PaymentHistoryScore: 0.95,
				CreditUtilization:   0.1,
			},
			// 780 + 15 - 5 = 790
			wantScore: 790,
			wantLevel: model.RiskLow,
			wantColor: model.ColorLow,
		},
		{
			name: "clamped at the lower bound",
			credit: model.CreditData{
				CibilScore:          intPtr(300),
				PaymentHistoryScore: 0.0,
				CreditUtilization:   1.0,
			},
			wantScore: 300,
			wantLevel: model.RiskVeryHigh,
			wantColor: model.ColorVeryHigh,
		},
		{
			name: "clamped at the upper bound",
			credit: model.CreditData{
				CibilScore:          intPtr(850),
				PaymentHistoryScore: 1.0,
				CreditUtilization:   0.0,
			},
			wantScore: 850,
			wantLevel: model.RiskLow,
			wantColor: model.ColorLow,
		},
		{
			name: "medium tier boundary",
			credit: model.CreditData{
				CibilScore:          intPtr(650),
				PaymentHistoryScore: 0.8,
				CreditUtilization:   0.0,
			},
			wantScore: 650,
			wantLevel: model.RiskMedium,
			wantColor: model.ColorMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.Score(tt.credit, model.FinancialData{})
			assert.Equal(t, tt.wantScore, result.CreditScore)
			assert.Equal(t, tt.wantLevel, result.RiskLevel)
			assert.Equal(t, tt.wantColor, result.RiskColor)
		})
	}
}

func TestScoreDeterministic(t *testing.T) {
	p := NewPipeline(slog.Default())
	credit := model.CreditData{
		CibilScore:          intPtr(710),
		PaymentHistoryScore: 0.85,
		CreditUtilization:   0.4,
	}

	first := p.Score(credit, model.FinancialData{})
	for i := 0; i < 10; i++ {
		require.Equal(t, first, p.Score(credit, model.FinancialData{}))
	}
}

func TestRiskLevelPartition(t *testing.T) {
	// Every integer score in [300,850] must map to exactly one tier.
	for score := MinScore; score <= MaxScore; score++ {
		level, color := riskLevel(score)

		var want model.RiskLevel
		switch {
		case score >= 750:
			want = model.RiskLow
		case score >= 650:
			want = model.RiskMedium
		case score >= 550:
			want = model.RiskHigh
		default:
			want = model.RiskVeryHigh
		}

		require.Equal(t, want, level, "score %d", score)
		require.NotEmpty(t, color, "score %d", score)
	}
}

type failingModel struct{}

func (failingModel) Predict(_ model.CreditData, _ model.FinancialData) (int, error) {
	return 0, errors.New("model unavailable")
}

type fixedModel struct{ score int }

func (m fixedModel) Predict(_ model.CreditData, _ model.FinancialData) (int, error) {
	return m.score, nil
}

func TestScoreWithExternalModel(t *testing.T) {
	credit := model.CreditData{
		CibilScore:          intPtr(600),
		PaymentHistoryScore: 0.8,
		CreditUtilization:   0.0,
	}

	t.Run("model score replaces the base", func(t *testing.T) {
		p := NewPipelineWithModel(fixedModel{score: 800}, slog.Default())
		assert.Equal(t, 800, p.Score(credit, model.FinancialData{}).CreditScore)
	})

	t.Run("failing model falls back to rules", func(t *testing.T) {
		p := NewPipelineWithModel(failingModel{}, slog.Default())
		assert.Equal(t, 600, p.Score(credit, model.FinancialData{}).CreditScore)
	})
}
