package dto

import (
	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest appends an ad-hoc payment to an advance.
type RecordPaymentRequest struct {
	Direction domain.PaymentDirection `json:"direction" binding:"required,oneof=IN OUT"`
	Method    domain.PaymentMethod    `json:"method" binding:"required,oneof=CASH TRANSFER"`
	Amount    decimal.Decimal         `json:"amount"`
	Ref       string                  `json:"ref" binding:"max=128"`
	Date      string                  `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// ListPaymentsResponse wraps the payments of one advance.
type ListPaymentsResponse struct {
	Payments []domain.Payment `json:"payments"`
}

// ListAuditLogsResponse wraps audit entries touching one advance.
type ListAuditLogsResponse struct {
	Entries []domain.AuditLogEntry `json:"entries"`
}
