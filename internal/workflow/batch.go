package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kestrelworks/riskflow/internal/model"
)

// ProgressFunc is called after each entity completes, with the
// 1-based index of the finished entity and the batch size.
type ProgressFunc func(done, total int)

// AssessBatch applies the workflow to each entity in order,
// sequentially. Every submitted entity yields exactly one record:
// a failure for one entity produces an error-tagged record without
// aborting the rest. Cancellation stops work before the next entity
// starts; the remaining entities still get error records so the
// output length always matches the input.
func (r *Runner) AssessBatch(ctx context.Context, entities []model.EntityRecord, progress ProgressFunc) []model.AssessmentRecord {
	records := make([]model.AssessmentRecord, 0, len(entities))

	for i, entity := range entities {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("batch canceled",
				"processed", i,
				"remaining", len(entities)-i)
			for _, rest := range entities[i:] {
				records = append(records, errorRecord(rest, fmt.Errorf("batch canceled: %w", err)))
			}
			return records
		}

		record, err := r.Assess(ctx, entity)
		if err != nil {
			r.logger.Error("workflow failed for entity",
				"entity", entity.EntityName,
				"error", err)
			record = errorRecord(entity, err)
		}
		records = append(records, record)

		if progress != nil {
			progress(i+1, len(entities))
		}
	}

	return records
}

// errorRecord builds the fully populated fallback record for an
// entity whose workflow failed outright. Every field the success path
// fills is present here too; degraded output is distinguishable by
// values, never by missing fields.
func errorRecord(entity model.EntityRecord, cause error) model.AssessmentRecord {
	return model.AssessmentRecord{
		ID:              uuid.NewString(),
		EntityName:      entity.EntityName,
		CreditScore:     0,
		RiskLevel:       model.RiskError,
		RiskColor:       model.ColorError,
		FinancialRatios: model.FinancialRatios{},
		Compliance: model.ComplianceResult{
			ComplianceScore: 0,
			Violations:      []string{"Workflow error"},
			Recommendations: []string{},
		},
		Explanation: model.Explanation{
			Decision:                  "Error",
			PrimaryExplanation:        cause.Error(),
			DetailedFactors:           []string{},
			SuggestionsForImprovement: []string{},
			ConfidenceScore:           0,
		},
		CreditData:    entity.CreditData,
		FinancialData: entity.FinancialData,
		Timestamp:     time.Now().UTC(),
		Error:         fmt.Sprintf("Workflow Error: %v", cause),
	}
}
