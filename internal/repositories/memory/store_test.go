package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/cash_advance_app/internal/apperrors"
	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/cash_advance_app/internal/core/ports/repositories"
	"github.com/SscSPs/cash_advance_app/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *memory.Store
	now   time.Time
}

func (suite *StoreTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = memory.NewStore()
	suite.now = time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)
}

func (suite *StoreTestSuite) newAdvance(id, employee, purpose string, createdAt time.Time) domain.Advance {
	return domain.Advance{
		AdvanceID:       id,
		EmployeeID:      employee,
		Purpose:         purpose,
		Project:         "Project " + id,
		AmountRequested: decimal.NewFromInt(100),
		Currency:        "USD",
		Status:          domain.StatusDraft,
		Approvals: []domain.ApprovalStep{
			{Role: domain.RoleManager, Status: domain.StepPending},
			{Role: domain.RoleFinance, Status: domain.StepPending},
		},
		AuditFields: domain.AuditFields{CreatedAt: createdAt, UpdatedAt: createdAt},
	}
}

func (suite *StoreTestSuite) TestFindAdvance_NotFound() {
	_, err := suite.store.FindAdvanceByID(suite.ctx, "missing")
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *StoreTestSuite) TestSaveAdvance_ReturnsCopies() {
	a := suite.newAdvance("a1", "employee-1", "Trip", suite.now)
	suite.Require().NoError(suite.store.SaveAdvance(suite.ctx, a))

	got, err := suite.store.FindAdvanceByID(suite.ctx, "a1")
	suite.Require().NoError(err)
	got.Approvals[0].Status = domain.StepApproved
	got.Status = domain.StatusApproved

	again, err := suite.store.FindAdvanceByID(suite.ctx, "a1")
	suite.Require().NoError(err)
	suite.Equal(domain.StatusDraft, again.Status)
	suite.Equal(domain.StepPending, again.Approvals[0].Status)
}

func (suite *StoreTestSuite) TestListAdvances_FilterAndOrder() {
	suite.Require().NoError(suite.store.SaveAdvance(suite.ctx, suite.newAdvance("a1", "employee-1", "Nairobi offsite", suite.now)))
	suite.Require().NoError(suite.store.SaveAdvance(suite.ctx, suite.newAdvance("a2", "employee-2", "Lagos trade fair", suite.now.Add(time.Hour))))
	a3 := suite.newAdvance("a3", "employee-1", "Accra visit", suite.now.Add(2*time.Hour))
	a3.Status = domain.StatusDisbursed
	suite.Require().NoError(suite.store.SaveAdvance(suite.ctx, a3))

	all, err := suite.store.ListAdvances(suite.ctx, domain.AdvanceFilter{})
	suite.Require().NoError(err)
	suite.Require().Len(all, 3)
	suite.Equal([]string{"a3", "a2", "a1"}, []string{all[0].AdvanceID, all[1].AdvanceID, all[2].AdvanceID})

	mine, err := suite.store.ListAdvances(suite.ctx, domain.AdvanceFilter{EmployeeID: "employee-1"})
	suite.Require().NoError(err)
	suite.Len(mine, 2)

	byStatus, err := suite.store.ListAdvances(suite.ctx, domain.AdvanceFilter{Status: domain.StatusDisbursed})
	suite.Require().NoError(err)
	suite.Require().Len(byStatus, 1)
	suite.Equal("a3", byStatus[0].AdvanceID)

	search, err := suite.store.ListAdvances(suite.ctx, domain.AdvanceFilter{Search: "LAGOS"})
	suite.Require().NoError(err)
	suite.Require().Len(search, 1)
	suite.Equal("a2", search[0].AdvanceID)

	byProject, err := suite.store.ListAdvances(suite.ctx, domain.AdvanceFilter{Search: "project a1"})
	suite.Require().NoError(err)
	suite.Len(byProject, 1)

	page, err := suite.store.ListAdvances(suite.ctx, domain.AdvanceFilter{Limit: 1, Offset: 1})
	suite.Require().NoError(err)
	suite.Require().Len(page, 1)
	suite.Equal("a2", page[0].AdvanceID)

	empty, err := suite.store.ListAdvances(suite.ctx, domain.AdvanceFilter{Offset: 10})
	suite.Require().NoError(err)
	suite.Empty(empty)
}

func (suite *StoreTestSuite) TestListAdvances_KeysetPaging() {
	// b1 and b2 share a timestamp; ties break on id, descending
	suite.Require().NoError(suite.store.SaveAdvance(suite.ctx, suite.newAdvance("b1", "employee-1", "Trip one", suite.now)))
	suite.Require().NoError(suite.store.SaveAdvance(suite.ctx, suite.newAdvance("b2", "employee-1", "Trip two", suite.now)))
	suite.Require().NoError(suite.store.SaveAdvance(suite.ctx, suite.newAdvance("b3", "employee-1", "Trip three", suite.now.Add(time.Minute))))

	first, err := suite.store.ListAdvances(suite.ctx, domain.AdvanceFilter{Limit: 2})
	suite.Require().NoError(err)
	suite.Require().Len(first, 2)
	suite.Equal("b3", first[0].AdvanceID)
	suite.Equal("b2", first[1].AdvanceID)

	last := first[1]
	second, err := suite.store.ListAdvances(suite.ctx, domain.AdvanceFilter{
		Limit: 2,
		After: &domain.AdvanceCursor{CreatedAt: last.CreatedAt, AdvanceID: last.AdvanceID},
	})
	suite.Require().NoError(err)
	suite.Require().Len(second, 1)
	suite.Equal("b1", second[0].AdvanceID)
}

func (suite *StoreTestSuite) TestReplaceItems_KeepsOtherType() {
	suite.Require().NoError(suite.store.ReplaceItems(suite.ctx, "a1", domain.ItemTypeRequest, []domain.AdvanceItem{
		{Category: "MEALS", Description: "estimate", Amount: decimal.NewFromInt(50)},
	}))
	retirement := []domain.AdvanceItem{
		{Category: "MEALS", Description: "lunch", Amount: decimal.NewFromInt(20)},
		{Category: "TRANSPORT", Description: "taxi", Amount: decimal.NewFromInt(30)},
	}
	suite.Require().NoError(suite.store.ReplaceItems(suite.ctx, "a1", domain.ItemTypeRetirement, retirement))
	suite.Require().NoError(suite.store.ReplaceItems(suite.ctx, "a1", domain.ItemTypeRetirement, retirement))

	items, err := suite.store.ListItems(suite.ctx, "a1")
	suite.Require().NoError(err)
	suite.Require().Len(items, 3)
	suite.Equal(domain.ItemTypeRequest, items[0].Type)
	suite.Equal("estimate", items[0].Description)
	suite.Len(domain.FilterItems(items, domain.ItemTypeRetirement), 2)
	for _, it := range items {
		suite.NotEmpty(it.ItemID)
		suite.Equal("a1", it.AdvanceID)
	}
}

func (suite *StoreTestSuite) TestRunInTx_RollsBackOnError() {
	suite.Require().NoError(suite.store.SaveAdvance(suite.ctx, suite.newAdvance("a1", "employee-1", "Trip", suite.now)))
	boom := errors.New("boom")

	err := suite.store.RunInTx(suite.ctx, func(ctx context.Context, repo portsrepo.AdvanceRepositoryFacade) error {
		a, err := repo.FindAdvanceByIDForUpdate(ctx, "a1")
		suite.Require().NoError(err)
		a.Status = domain.StatusPendingManager
		suite.Require().NoError(repo.SaveAdvance(ctx, *a))
		suite.Require().NoError(repo.AppendAudit(ctx, domain.AuditLogEntry{AuditID: "x", EntityID: "a1"}))

		inside, err := repo.FindAdvanceByID(ctx, "a1")
		suite.Require().NoError(err)
		suite.Equal(domain.StatusPendingManager, inside.Status)
		return boom
	})
	suite.ErrorIs(err, boom)

	a, err := suite.store.FindAdvanceByID(suite.ctx, "a1")
	suite.Require().NoError(err)
	suite.Equal(domain.StatusDraft, a.Status)

	logs, err := suite.store.ListAuditLogs(suite.ctx, "a1", "")
	suite.Require().NoError(err)
	suite.Empty(logs)
}

func (suite *StoreTestSuite) TestRunInTx_CancelledContext() {
	ctx, cancel := context.WithCancel(suite.ctx)
	cancel()
	called := false
	err := suite.store.RunInTx(ctx, func(context.Context, portsrepo.AdvanceRepositoryFacade) error {
		called = true
		return nil
	})
	suite.ErrorIs(err, context.Canceled)
	suite.False(called)
}

func (suite *StoreTestSuite) TestRetirementAndPayments() {
	_, err := suite.store.FindRetirementByAdvanceID(suite.ctx, "a1")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	suite.Require().NoError(suite.store.SaveRetirement(suite.ctx, domain.RetirementSummary{RetirementID: "r1", AdvanceID: "a1", Status: domain.RetirementSubmitted}))
	suite.Require().NoError(suite.store.SaveRetirement(suite.ctx, domain.RetirementSummary{RetirementID: "r1", AdvanceID: "a1", Status: domain.RetirementVerified}))
	ret, err := suite.store.FindRetirementByAdvanceID(suite.ctx, "a1")
	suite.Require().NoError(err)
	suite.Equal(domain.RetirementVerified, ret.Status)

	suite.Require().NoError(suite.store.AppendPayment(suite.ctx, domain.Payment{PaymentID: "p1", AdvanceID: "a1", Direction: domain.PaymentOut}))
	suite.Require().NoError(suite.store.AppendPayment(suite.ctx, domain.Payment{PaymentID: "p2", AdvanceID: "a1", Direction: domain.PaymentIn}))
	payments, err := suite.store.ListPayments(suite.ctx, "a1")
	suite.Require().NoError(err)
	suite.Len(payments, 2)
	suite.Equal("p1", payments[0].PaymentID)
}

func (suite *StoreTestSuite) TestAuditLogFiltering() {
	suite.Require().NoError(suite.store.AppendAudit(suite.ctx, domain.AuditLogEntry{AuditID: "1", EntityID: "a1", EntityType: domain.EntityAdvance, Before: map[string]any{"status": "DRAFT"}}))
	suite.Require().NoError(suite.store.AppendAudit(suite.ctx, domain.AuditLogEntry{AuditID: "2", EntityID: "a1", EntityType: domain.EntityRetirement}))
	suite.Require().NoError(suite.store.AppendAudit(suite.ctx, domain.AuditLogEntry{AuditID: "3", EntityID: "other", EntityType: domain.EntityAdvance}))

	logs, err := suite.store.ListAuditLogs(suite.ctx, "a1", "")
	suite.Require().NoError(err)
	suite.Require().Len(logs, 2)
	suite.Equal("1", logs[0].AuditID)
	logs[0].Before["status"] = "HACKED"

	retirementOnly, err := suite.store.ListAuditLogs(suite.ctx, "a1", domain.EntityRetirement)
	suite.Require().NoError(err)
	suite.Require().Len(retirementOnly, 1)
	suite.Equal("2", retirementOnly[0].AuditID)

	again, err := suite.store.ListAuditLogs(suite.ctx, "a1", domain.EntityAdvance)
	suite.Require().NoError(err)
	suite.Equal("DRAFT", again[0].Before["status"])
}

func (suite *StoreTestSuite) TestPolicy() {
	_, err := suite.store.GetActivePolicy(suite.ctx)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	suite.Require().NoError(suite.store.SavePolicy(suite.ctx, memory.DemoPolicy()))
	p, err := suite.store.GetActivePolicy(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal("Global Travel Policy", p.Name)
	suite.Equal(7, p.RetirementDeadlineDays)
	suite.True(decimal.NewFromInt(20).Equal(*p.ReceiptThresholdFor("MEALS")))
	suite.True(decimal.NewFromInt(25).Equal(*p.ReceiptThresholdFor("OTHER")))
}

func (suite *StoreTestSuite) TestSeedDemoData() {
	suite.Require().NoError(suite.store.SeedDemoData(suite.ctx, suite.now))

	a, err := suite.store.FindAdvanceByID(suite.ctx, "adv-1001")
	suite.Require().NoError(err)
	suite.Equal(domain.StatusSettled, a.Status)

	ret, err := suite.store.FindRetirementByAdvanceID(suite.ctx, "adv-1001")
	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(20).Equal(ret.RefundDueToCompany))

	items, err := suite.store.ListItems(suite.ctx, "adv-1001")
	suite.Require().NoError(err)
	var spent decimal.Decimal
	for _, it := range domain.FilterItems(items, domain.ItemTypeRetirement) {
		spent = spent.Add(it.Amount)
	}
	suite.True(ret.TotalSpent.Equal(spent))

	outstanding, err := suite.store.ListOutstandingAdvances(suite.ctx)
	suite.Require().NoError(err)
	suite.Empty(outstanding)
}

func TestStore(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
