package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RetirementStatus is the state of a retirement summary.
type RetirementStatus string

const (
	RetirementDraft     RetirementStatus = "DRAFT"
	RetirementSubmitted RetirementStatus = "SUBMITTED"
	RetirementVerified  RetirementStatus = "VERIFIED"
	RetirementSettled   RetirementStatus = "SETTLED"
)

// RetirementSummary is the reconciliation record for one advance's retirement.
// At most one of RefundDueToCompany and TopupDueToEmployee is nonzero.
type RetirementSummary struct {
	RetirementID       string           `json:"id"`
	AdvanceID          string           `json:"advanceId"`
	SubmittedBy        string           `json:"submittedBy"`
	SubmittedAt        time.Time        `json:"submittedAt"`
	TotalSpent         decimal.Decimal  `json:"totalSpent"`
	RefundDueToCompany decimal.Decimal  `json:"refundDueToCompany"`
	TopupDueToEmployee decimal.Decimal  `json:"topupDueToEmployee"`
	Status             RetirementStatus `json:"status"`
	FinanceNotes       string           `json:"financeNotes,omitempty"`
	OverrideReason     string           `json:"overrideReason,omitempty"`
}

// RetirementDetail is the result of a retirement operation: the advance, its
// summary and the retirement line items now on record.
type RetirementDetail struct {
	Advance Advance           `json:"advance"`
	Summary RetirementSummary `json:"summary"`
	Items   []AdvanceItem     `json:"items"`
}
