package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentDirection is OUT (company to employee) or IN (employee to company).
type PaymentDirection string

const (
	PaymentOut PaymentDirection = "OUT"
	PaymentIn  PaymentDirection = "IN"
)

// PaymentMethod is how funds moved.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "CASH"
	MethodTransfer PaymentMethod = "TRANSFER"
)

// Payment records a movement of funds against an advance.
type Payment struct {
	PaymentID string           `json:"id"`
	AdvanceID string           `json:"advanceId"`
	Direction PaymentDirection `json:"direction"`
	Method    PaymentMethod    `json:"method"`
	Amount    decimal.Decimal  `json:"amount"`
	Ref       string           `json:"ref"`
	Date      time.Time        `json:"date"`
	CreatedBy string           `json:"createdBy"`
}
