package mapping

import (
	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	"github.com/SscSPs/cash_advance_app/internal/models"
)

// ToModelAdvance converts a domain Advance to its row and approval step rows.
func ToModelAdvance(d domain.Advance) (models.Advance, []models.ApprovalStep) {
	m := models.Advance{
		AdvanceID:         d.AdvanceID,
		EmployeeID:        d.EmployeeID,
		Purpose:           d.Purpose,
		Project:           d.Project,
		CostCenterID:      d.CostCenterID,
		GLCodeID:          d.GLCodeID,
		AmountRequested:   d.AmountRequested,
		Currency:          d.Currency,
		Status:            string(d.Status),
		ExpectedStartDate: d.ExpectedStartDate,
		ExpectedEndDate:   d.ExpectedEndDate,
		DisbursedAt:       d.DisbursedAt,
		DisbursementRef:   d.DisbursementRef,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
	steps := make([]models.ApprovalStep, len(d.Approvals))
	for i, s := range d.Approvals {
		steps[i] = models.ApprovalStep{
			AdvanceID: d.AdvanceID,
			Position:  i,
			Role:      string(s.Role),
			Status:    string(s.Status),
			ActorID:   s.ActorID,
			ActedAt:   s.ActedAt,
			Comment:   s.Comment,
		}
	}
	return m, steps
}

// ToDomainAdvance converts an advance row and its ordered step rows to a domain Advance.
func ToDomainAdvance(m models.Advance, steps []models.ApprovalStep) domain.Advance {
	d := domain.Advance{
		AdvanceID:         m.AdvanceID,
		EmployeeID:        m.EmployeeID,
		Purpose:           m.Purpose,
		Project:           m.Project,
		CostCenterID:      m.CostCenterID,
		GLCodeID:          m.GLCodeID,
		AmountRequested:   m.AmountRequested,
		Currency:          m.Currency,
		Status:            domain.AdvanceStatus(m.Status),
		ExpectedStartDate: m.ExpectedStartDate,
		ExpectedEndDate:   m.ExpectedEndDate,
		DisbursedAt:       m.DisbursedAt,
		DisbursementRef:   m.DisbursementRef,
		Approvals:         make([]domain.ApprovalStep, 0, len(steps)),
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
	for _, s := range steps {
		d.Approvals = append(d.Approvals, domain.ApprovalStep{
			Role:    domain.Role(s.Role),
			Status:  domain.StepStatus(s.Status),
			ActorID: s.ActorID,
			ActedAt: s.ActedAt,
			Comment: s.Comment,
		})
	}
	return d
}

// ToModelAdvanceItems converts items, numbering them in slice order.
func ToModelAdvanceItems(items []domain.AdvanceItem) []models.AdvanceItem {
	out := make([]models.AdvanceItem, len(items))
	for i, it := range items {
		flags := make([]models.PolicyFlag, len(it.PolicyFlags))
		for j, f := range it.PolicyFlags {
			flags[j] = models.PolicyFlag{Code: string(f.Code), Message: f.Message, Severity: string(f.Severity)}
		}
		out[i] = models.AdvanceItem{
			ItemID:        it.ItemID,
			AdvanceID:     it.AdvanceID,
			ItemType:      string(it.Type),
			Position:      i,
			Category:      it.Category,
			Description:   it.Description,
			Amount:        it.Amount,
			Currency:      it.Currency,
			ItemDate:      it.Date,
			AttachmentURL: it.AttachmentURL,
			OCRText:       it.OCRText,
			PolicyFlags:   flags,
		}
	}
	return out
}

// ToDomainAdvanceItem converts an advance_items row.
func ToDomainAdvanceItem(m models.AdvanceItem) domain.AdvanceItem {
	flags := make([]domain.PolicyFlag, len(m.PolicyFlags))
	for i, f := range m.PolicyFlags {
		flags[i] = domain.PolicyFlag{Code: domain.FlagCode(f.Code), Message: f.Message, Severity: domain.Severity(f.Severity)}
	}
	return domain.AdvanceItem{
		ItemID:        m.ItemID,
		AdvanceID:     m.AdvanceID,
		Type:          domain.ItemType(m.ItemType),
		Category:      m.Category,
		Description:   m.Description,
		Amount:        m.Amount,
		Currency:      m.Currency,
		Date:          m.ItemDate,
		AttachmentURL: m.AttachmentURL,
		OCRText:       m.OCRText,
		PolicyFlags:   flags,
	}
}
