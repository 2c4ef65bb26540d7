package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Advance is a row of the advances table.
type Advance struct {
	AdvanceID         string          `db:"advance_id"`
	EmployeeID        string          `db:"employee_id"`
	Purpose           string          `db:"purpose"`
	Project           string          `db:"project"`
	CostCenterID      string          `db:"cost_center_id"`
	GLCodeID          string          `db:"gl_code_id"`
	AmountRequested   decimal.Decimal `db:"amount_requested"`
	Currency          string          `db:"currency"`
	Status            string          `db:"status"`
	ExpectedStartDate *time.Time      `db:"expected_start_date"` // Nullable DATE
	ExpectedEndDate   *time.Time      `db:"expected_end_date"`   // Nullable DATE
	DisbursedAt       *time.Time      `db:"disbursed_at"`
	DisbursementRef   string          `db:"disbursement_ref"`
	AuditFields
}

// ApprovalStep is a row of approval_steps. Position keeps the MANAGER, FINANCE order.
type ApprovalStep struct {
	AdvanceID string     `db:"advance_id"`
	Position  int        `db:"position"`
	Role      string     `db:"role"`
	Status    string     `db:"status"`
	ActorID   string     `db:"actor_id"`
	ActedAt   *time.Time `db:"acted_at"`
	Comment   string     `db:"comment"`
}
