package memory

import (
	"context"
	"time"

	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

func amount(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// DemoPolicy is the default travel policy.
func DemoPolicy() domain.Policy {
	return domain.Policy{
		PolicyID:                  "policy-1",
		Name:                      "Global Travel Policy",
		RetirementDeadlineDays:    7,
		ReceiptRequiredOverAmount: amount(25),
		Categories: []domain.PolicyCategoryRule{
			{Category: "MEALS", PerDiem: amount(80), ReceiptRequiredOverAmount: amount(20)},
			{Category: "TRANSPORT", PerDiem: amount(150), ReceiptRequiredOverAmount: amount(30)},
			{Category: "LODGING", PerDiem: amount(200), ReceiptRequiredOverAmount: amount(50)},
		},
	}
}

// SeedDemoData loads the demo policy and one settled advance with its history.
func (s *Store) SeedDemoData(ctx context.Context, now time.Time) error {
	return s.write(ctx, func(r *txRepo) error {
		r.st.savePolicy(DemoPolicy())

		acted := now
		advance := domain.Advance{
			AdvanceID:       "adv-1001",
			EmployeeID:      "employee-1",
			Purpose:         "Kenya field activation",
			Project:         "East Africa Launch",
			CostCenterID:    "cc-100",
			GLCodeID:        "gl-6000",
			AmountRequested: decimal.NewFromInt(1200),
			Currency:        "USD",
			Status:          domain.StatusSettled,
			Approvals: []domain.ApprovalStep{
				{Role: domain.RoleManager, Status: domain.StepApproved, ActorID: "manager-1", ActedAt: &acted, Comment: "Approved"},
				{Role: domain.RoleFinance, Status: domain.StepApproved, ActorID: "finance-1", ActedAt: &acted, Comment: "Disburse"},
			},
			ExpectedStartDate: &acted,
			ExpectedEndDate:   &acted,
			DisbursedAt:       &acted,
			DisbursementRef:   "TRX-12345",
			AuditFields: domain.AuditFields{
				CreatedAt: now, CreatedBy: "employee-1",
				UpdatedAt: now, UpdatedBy: "finance-1",
			},
		}
		if err := r.SaveAdvance(ctx, advance); err != nil {
			return err
		}

		if err := r.ReplaceItems(ctx, advance.AdvanceID, domain.ItemTypeRequest, []domain.AdvanceItem{
			{ItemID: "item-1", Category: "MEALS", Description: "Meal per diem estimate", Amount: decimal.NewFromInt(400), Currency: "USD", Date: now},
		}); err != nil {
			return err
		}
		if err := r.ReplaceItems(ctx, advance.AdvanceID, domain.ItemTypeRetirement, []domain.AdvanceItem{
			{ItemID: "item-2", Category: "TRANSPORT", Description: "Airport taxi", Amount: decimal.NewFromInt(80), Currency: "USD", Date: now, AttachmentURL: "https://placehold.co/400x300"},
			{ItemID: "item-3", Category: "LODGING", Description: "Hotel, 5 nights", Amount: decimal.NewFromInt(1000), Currency: "USD", Date: now, AttachmentURL: "https://placehold.co/400x300"},
			{ItemID: "item-4", Category: "MEALS", Description: "Team dinner", Amount: decimal.NewFromInt(100), Currency: "USD", Date: now, AttachmentURL: "https://placehold.co/400x300"},
		}); err != nil {
			return err
		}

		if err := r.SaveRetirement(ctx, domain.RetirementSummary{
			RetirementID:       "ret-adv-1001",
			AdvanceID:          advance.AdvanceID,
			SubmittedBy:        "employee-1",
			SubmittedAt:        now,
			TotalSpent:         decimal.NewFromInt(1180),
			RefundDueToCompany: decimal.NewFromInt(20),
			TopupDueToEmployee: decimal.Zero,
			Status:             domain.RetirementSettled,
			FinanceNotes:       "Verified receipts",
		}); err != nil {
			return err
		}

		return r.AppendPayment(ctx, domain.Payment{
			PaymentID: "pay-1",
			AdvanceID: advance.AdvanceID,
			Direction: domain.PaymentOut,
			Method:    domain.MethodTransfer,
			Amount:    decimal.NewFromInt(1200),
			Ref:       "TRX-12345",
			Date:      now,
			CreatedBy: "finance-1",
		})
	})
}
