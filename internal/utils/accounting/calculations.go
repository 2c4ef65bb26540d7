package accounting

import (
	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReconciliationResult nets an advance against the spend submitted for it.
type ReconciliationResult struct {
	TotalSpent         decimal.Decimal `json:"totalSpent"`
	RefundDueToCompany decimal.Decimal `json:"refundDueToCompany"`
	TopupDueToEmployee decimal.Decimal `json:"topupDueToEmployee"`
}

// Reconcile sums RETIREMENT items and splits the balance against amountRequested.
// At most one of the two due amounts is nonzero.
func Reconcile(amountRequested decimal.Decimal, items []domain.AdvanceItem) ReconciliationResult {
	total := SumItems(items, domain.ItemTypeRetirement)
	balance := amountRequested.Sub(total)

	res := ReconciliationResult{
		TotalSpent:         total,
		RefundDueToCompany: decimal.Zero,
		TopupDueToEmployee: decimal.Zero,
	}
	if balance.IsPositive() {
		res.RefundDueToCompany = balance
	} else if balance.IsNegative() {
		res.TopupDueToEmployee = balance.Neg()
	}
	return res
}

// SumItems adds the amounts of items of the given type.
func SumItems(items []domain.AdvanceItem, itemType domain.ItemType) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		if it.Type == itemType {
			sum = sum.Add(it.Amount)
		}
	}
	return sum
}
