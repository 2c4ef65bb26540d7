package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RetirementSummary is a row of retirement_summaries, unique per advance.
type RetirementSummary struct {
	RetirementID       string          `db:"retirement_id"`
	AdvanceID          string          `db:"advance_id"`
	SubmittedBy        string          `db:"submitted_by"`
	SubmittedAt        time.Time       `db:"submitted_at"`
	TotalSpent         decimal.Decimal `db:"total_spent"`
	RefundDueToCompany decimal.Decimal `db:"refund_due_to_company"`
	TopupDueToEmployee decimal.Decimal `db:"topup_due_to_employee"`
	Status             string          `db:"status"`
	FinanceNotes       string          `db:"finance_notes"`
	OverrideReason     string          `db:"override_reason"`
}
