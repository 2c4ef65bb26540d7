package mapping

import (
	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	"github.com/SscSPs/cash_advance_app/internal/models"
)

// ToModelRetirement converts a domain RetirementSummary to a model RetirementSummary
func ToModelRetirement(d domain.RetirementSummary) models.RetirementSummary {
	return models.RetirementSummary{
		RetirementID:       d.RetirementID,
		AdvanceID:          d.AdvanceID,
		SubmittedBy:        d.SubmittedBy,
		SubmittedAt:        d.SubmittedAt,
		TotalSpent:         d.TotalSpent,
		RefundDueToCompany: d.RefundDueToCompany,
		TopupDueToEmployee: d.TopupDueToEmployee,
		Status:             string(d.Status),
		FinanceNotes:       d.FinanceNotes,
		OverrideReason:     d.OverrideReason,
	}
}

// ToDomainRetirement converts a model RetirementSummary to a domain RetirementSummary
func ToDomainRetirement(m models.RetirementSummary) domain.RetirementSummary {
	return domain.RetirementSummary{
		RetirementID:       m.RetirementID,
		AdvanceID:          m.AdvanceID,
		SubmittedBy:        m.SubmittedBy,
		SubmittedAt:        m.SubmittedAt,
		TotalSpent:         m.TotalSpent,
		RefundDueToCompany: m.RefundDueToCompany,
		TopupDueToEmployee: m.TopupDueToEmployee,
		Status:             domain.RetirementStatus(m.Status),
		FinanceNotes:       m.FinanceNotes,
		OverrideReason:     m.OverrideReason,
	}
}

// ToModelPayment converts a domain Payment to a model Payment
func ToModelPayment(d domain.Payment) models.Payment {
	return models.Payment{
		PaymentID:   d.PaymentID,
		AdvanceID:   d.AdvanceID,
		Direction:   string(d.Direction),
		Method:      string(d.Method),
		Amount:      d.Amount,
		Ref:         d.Ref,
		PaymentDate: d.Date,
		CreatedBy:   d.CreatedBy,
	}
}

// ToDomainPayment converts a model Payment to a domain Payment
func ToDomainPayment(m models.Payment) domain.Payment {
	return domain.Payment{
		PaymentID: m.PaymentID,
		AdvanceID: m.AdvanceID,
		Direction: domain.PaymentDirection(m.Direction),
		Method:    domain.PaymentMethod(m.Method),
		Amount:    m.Amount,
		Ref:       m.Ref,
		Date:      m.PaymentDate,
		CreatedBy: m.CreatedBy,
	}
}

// ToModelAuditLog converts a domain AuditLogEntry to a model AuditLog
func ToModelAuditLog(d domain.AuditLogEntry) models.AuditLog {
	return models.AuditLog{
		AuditID:    d.AuditID,
		ActorID:    d.ActorID,
		Action:     d.Action,
		EntityType: string(d.EntityType),
		EntityID:   d.EntityID,
		Before:     d.Before,
		After:      d.After,
		At:         d.At,
		Comment:    d.Comment,
	}
}

// ToDomainAuditLog converts a model AuditLog to a domain AuditLogEntry
func ToDomainAuditLog(m models.AuditLog) domain.AuditLogEntry {
	return domain.AuditLogEntry{
		AuditID:    m.AuditID,
		ActorID:    m.ActorID,
		Action:     m.Action,
		EntityType: domain.EntityType(m.EntityType),
		EntityID:   m.EntityID,
		Before:     m.Before,
		After:      m.After,
		At:         m.At,
		Comment:    m.Comment,
	}
}
