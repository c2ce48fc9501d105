package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		entity EntityRecord
		want   []string
	}{
		{
			name: "complete record",
			entity: EntityRecord{
				EntityName:    "Acme Corp",
				CreditData:    &CreditData{},
				FinancialData: &FinancialData{},
			},
			want: nil,
		},
		{
			name:   "everything missing",
			entity: EntityRecord{},
			want:   []string{"entity_name", "credit_data", "financial_data"},
		},
		{
			name: "only financial data missing",
			entity: EntityRecord{
				EntityName: "Acme Corp",
				CreditData: &CreditData{},
			},
			want: []string{"financial_data"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entity.MissingFields())
		})
	}
}

func TestMissingFieldsDetectsAbsentJSONKeys(t *testing.T) {
	var entity EntityRecord
	require.NoError(t, json.Unmarshal([]byte(`{"entity_name": "Acme Corp", "credit_data": {}}`), &entity))
	assert.Equal(t, []string{"financial_data"}, entity.MissingFields())
}

func TestValidationMessage(t *testing.T) {
	got := ValidationMessage([]string{"entity_name", "financial_data"})
	assert.Equal(t, "missing required fields: entity_name, financial_data", got)
}

func TestOptionalCibilScore(t *testing.T) {
	var credit CreditData
	require.NoError(t, json.Unmarshal([]byte(`{"payment_history_score": 0.9}`), &credit))
	assert.Nil(t, credit.CibilScore, "absent key must stay nil")

	require.NoError(t, json.Unmarshal([]byte(`{"cibil_score": 720}`), &credit))
	require.NotNil(t, credit.CibilScore)
	assert.Equal(t, 720, *credit.CibilScore)
}

func TestNormalizeFillsLists(t *testing.T) {
	var c ComplianceResult
	c.Normalize()
	assert.NotNil(t, c.Violations)
	assert.NotNil(t, c.Recommendations)

	var e Explanation
	e.Normalize()
	assert.NotNil(t, e.DetailedFactors)
	assert.NotNil(t, e.SuggestionsForImprovement)
}

func TestAssessmentRecordErrorOmitted(t *testing.T) {
	payload, err := json.Marshal(AssessmentRecord{ID: "abc"})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.NotContains(t, decoded, "error", "error key must be omitted from successful records")
	assert.Contains(t, decoded, "compliance_result")
}
