package models

import "github.com/shopspring/decimal"

// Policy is a row of policies.
type Policy struct {
	PolicyID                  string              `db:"policy_id"`
	Name                      string              `db:"name"`
	RetirementDeadlineDays    int                 `db:"retirement_deadline_days"`
	ReceiptRequiredOverAmount decimal.NullDecimal `db:"receipt_required_over_amount"`
	IsActive                  bool                `db:"is_active"`
}

// PolicyCategory is a row of policy_categories.
type PolicyCategory struct {
	PolicyID                  string              `db:"policy_id"`
	Position                  int                 `db:"position"`
	Category                  string              `db:"category"`
	PerDiem                   decimal.NullDecimal `db:"per_diem"`
	ReceiptRequiredOverAmount decimal.NullDecimal `db:"receipt_required_over_amount"`
}
