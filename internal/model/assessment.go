package model

import "time"

// RiskLevel is the discrete risk tier derived from a credit score.
type RiskLevel string

// Risk tiers. RiskError marks records whose workflow failed outright.
const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskVeryHigh RiskLevel = "VERY HIGH"
	RiskError    RiskLevel = "ERROR"
)

// Display color tags, paired 1:1 with risk tiers.
const (
	ColorLow      = "#28a745"
	ColorMedium   = "#ffc107"
	ColorHigh     = "#fd7e14"
	ColorVeryHigh = "#dc3545"
	ColorError    = "#dc3545"
)

// RiskResult is the output of the scoring pipeline.
type RiskResult struct {
	CreditScore int       `json:"credit_score"`
	RiskLevel   RiskLevel `json:"risk_level"`
	RiskColor   string    `json:"risk_color"`
}

// FinancialRatios maps ratio names to values. The set is extensible;
// debt_to_income and current_ratio are always present.
type FinancialRatios map[string]float64

// ComplianceResult is the verdict from the compliance check.
type ComplianceResult struct {
	ComplianceScore int      `json:"compliance_score"`
	Violations      []string `json:"violations"`
	Recommendations []string `json:"recommendations"`
}

// Normalize guarantees the list fields are present (non-nil) so the
// serialized form always carries them, even when empty.
func (c *ComplianceResult) Normalize() {
	if c.Violations == nil {
		c.Violations = []string{}
	}
	if c.Recommendations == nil {
		c.Recommendations = []string{}
	}
}

// Explanation is the advisory decision narrative for an assessment.
type Explanation struct {
	Decision                  string   `json:"decision"`
	PrimaryExplanation        string   `json:"primary_explanation"`
	DetailedFactors           []string `json:"detailed_factors"`
	SuggestionsForImprovement []string `json:"suggestions_for_improvement"`
	ConfidenceScore           float64  `json:"confidence_score"`
}

// Normalize guarantees the factor and suggestion lists are non-nil.
func (e *Explanation) Normalize() {
	if e.DetailedFactors == nil {
		e.DetailedFactors = []string{}
	}
	if e.SuggestionsForImprovement == nil {
		e.SuggestionsForImprovement = []string{}
	}
}

// AssessmentRecord is the terminal artifact of the workflow. One is
// produced for every submitted entity, never dropped; a failed
// workflow yields a record with RiskLevel ERROR and Error set.
type AssessmentRecord struct {
	ID              string           `json:"id"`
	EntityName      string           `json:"entity_name"`
	CreditScore     int              `json:"credit_score"`
	RiskLevel       RiskLevel        `json:"risk_level"`
	RiskColor       string           `json:"risk_color"`
	FinancialRatios FinancialRatios  `json:"financial_ratios"`
	Compliance      ComplianceResult `json:"compliance_result"`
	Explanation     Explanation      `json:"explanation"`
	CreditData      *CreditData      `json:"credit_data"`
	FinancialData   *FinancialData   `json:"financial_data"`
	Timestamp       time.Time        `json:"timestamp"`
	Error           string           `json:"error,omitempty"`
}
