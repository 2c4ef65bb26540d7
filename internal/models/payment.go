package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a row of the append-only payments table.
type Payment struct {
	PaymentID   string          `db:"payment_id"`
	AdvanceID   string          `db:"advance_id"`
	Direction   string          `db:"direction"`
	Method      string          `db:"method"`
	Amount      decimal.Decimal `db:"amount"`
	Ref         string          `db:"ref"`
	PaymentDate time.Time       `db:"payment_date"`
	CreatedBy   string          `db:"created_by"`
}
