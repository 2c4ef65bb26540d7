package domain

import "github.com/shopspring/decimal"

// PolicyCategoryRule overrides the policy defaults for one spend category.
type PolicyCategoryRule struct {
	Category                  string           `json:"category"`
	PerDiem                   *decimal.Decimal `json:"perDiem,omitempty"`
	ReceiptRequiredOverAmount *decimal.Decimal `json:"receiptRequiredOverAmount,omitempty"`
}

// Policy is the spending rule set applied during retirement.
type Policy struct {
	PolicyID                  string               `json:"id"`
	Name                      string               `json:"name"`
	RetirementDeadlineDays    int                  `json:"retirementDeadlineDays"`
	ReceiptRequiredOverAmount *decimal.Decimal     `json:"receiptRequiredOverAmount,omitempty"`
	Categories                []PolicyCategoryRule `json:"categories"`
}

// RuleFor returns the category rule, if any.
func (p *Policy) RuleFor(category string) *PolicyCategoryRule {
	for i := range p.Categories {
		if p.Categories[i].Category == category {
			return &p.Categories[i]
		}
	}
	return nil
}

// ReceiptThresholdFor returns the effective receipt threshold for a category:
// the category override when present, else the policy default. Nil means no threshold.
func (p *Policy) ReceiptThresholdFor(category string) *decimal.Decimal {
	if rule := p.RuleFor(category); rule != nil && rule.ReceiptRequiredOverAmount != nil {
		return rule.ReceiptRequiredOverAmount
	}
	return p.ReceiptRequiredOverAmount
}
