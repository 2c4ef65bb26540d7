package mapping

import (
	"github.com/shopspring/decimal"

	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	"github.com/SscSPs/cash_advance_app/internal/models"
)

// ToDomainPolicy assembles a domain Policy from its row and ordered category rows.
func ToDomainPolicy(m models.Policy, categories []models.PolicyCategory) domain.Policy {
	p := domain.Policy{
		PolicyID:                  m.PolicyID,
		Name:                      m.Name,
		RetirementDeadlineDays:    m.RetirementDeadlineDays,
		ReceiptRequiredOverAmount: fromNull(m.ReceiptRequiredOverAmount),
		Categories:                make([]domain.PolicyCategoryRule, 0, len(categories)),
	}
	for _, c := range categories {
		p.Categories = append(p.Categories, domain.PolicyCategoryRule{
			Category:                  c.Category,
			PerDiem:                   fromNull(c.PerDiem),
			ReceiptRequiredOverAmount: fromNull(c.ReceiptRequiredOverAmount),
		})
	}
	return p
}

// ToModelPolicy splits a domain Policy into its row and category rows.
func ToModelPolicy(d domain.Policy) (models.Policy, []models.PolicyCategory) {
	m := models.Policy{
		PolicyID:                  d.PolicyID,
		Name:                      d.Name,
		RetirementDeadlineDays:    d.RetirementDeadlineDays,
		ReceiptRequiredOverAmount: toNull(d.ReceiptRequiredOverAmount),
		IsActive:                  true,
	}
	cats := make([]models.PolicyCategory, len(d.Categories))
	for i, c := range d.Categories {
		cats[i] = models.PolicyCategory{
			PolicyID:                  d.PolicyID,
			Position:                  i,
			Category:                  c.Category,
			PerDiem:                   toNull(c.PerDiem),
			ReceiptRequiredOverAmount: toNull(c.ReceiptRequiredOverAmount),
		}
	}
	return m, cats
}

func fromNull(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	v := n.Decimal
	return &v
}

func toNull(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
