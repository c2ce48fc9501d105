// Package model defines the core data types for risk assessment.
package model

import "strings"

// CreditData holds the credit-bureau inputs for an applicant.
// CibilScore is optional; applicants with no credit history have none.
type CreditData struct {
	CibilScore          *int    `json:"cibil_score,omitempty"`
	PaymentHistoryScore float64 `json:"payment_history_score"`
	CreditUtilization   float64 `json:"credit_utilization"`
	CreditHistoryMonths int     `json:"credit_history_months"`
	CreditTypes         int     `json:"credit_types"`
	RecentInquiries     int     `json:"recent_inquiries"`
}

// FinancialData holds the financial-statement inputs for an applicant.
type FinancialData struct {
	AnnualIncome       float64  `json:"annual_income"`
	TotalDebt          float64  `json:"total_debt"`
	CurrentAssets      float64  `json:"current_assets"`
	CurrentLiabilities float64  `json:"current_liabilities"`
	TotalAssets        float64  `json:"total_assets"`
	TotalEquity        float64  `json:"total_equity"`
	NetIncome          float64  `json:"net_income"`
	EBIT               *float64 `json:"ebit,omitempty"`
	InterestExpense    float64  `json:"interest_expense"`
	Inventory          *float64 `json:"inventory,omitempty"`
}

// EntityRecord is the immutable input unit: one loan applicant.
// The credit and financial sections are pointers so that a missing
// top-level key in the submitted JSON is detectable by validation.
type EntityRecord struct {
	EntityName    string         `json:"entity_name"`
	CreditData    *CreditData    `json:"credit_data"`
	FinancialData *FinancialData `json:"financial_data"`
}

// MissingFields returns the names of required top-level fields that
// are absent from the record, in a fixed order.
func (e *EntityRecord) MissingFields() []string {
	var missing []string
	if e.EntityName == "" {
		missing = append(missing, "entity_name")
	}
	if e.CreditData == nil {
		missing = append(missing, "credit_data")
	}
	if e.FinancialData == nil {
		missing = append(missing, "financial_data")
	}
	return missing
}

// ValidationMessage formats a comma-joined message listing every
// missing field, not just the first.
func ValidationMessage(missing []string) string {
	return "missing required fields: " + strings.Join(missing, ", ")
}
