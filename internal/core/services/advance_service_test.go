package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/cash_advance_app/internal/apperrors"
	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/cash_advance_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/cash_advance_app/internal/core/ports/services"
	"github.com/SscSPs/cash_advance_app/internal/core/services"
	"github.com/SscSPs/cash_advance_app/internal/core/workflow"
	"github.com/SscSPs/cash_advance_app/internal/dto"
	"github.com/SscSPs/cash_advance_app/internal/repositories/memory"
)

var (
	employee      = domain.Actor{UserID: "employee-1", Role: domain.RoleEmployee}
	otherEmployee = domain.Actor{UserID: "employee-2", Role: domain.RoleEmployee}
	manager       = domain.Actor{UserID: "manager-1", Role: domain.RoleManager}
	finance       = domain.Actor{UserID: "finance-1", Role: domain.RoleFinance}
	admin         = domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}

	fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
)

func boolPtr(b bool) *bool { return &b }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type recordingObserver struct {
	mu          sync.Mutex
	transitions [][2]domain.AdvanceStatus
	rejections  []string
}

func (o *recordingObserver) ObserveTransition(from, to domain.AdvanceStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transitions = append(o.transitions, [2]domain.AdvanceStatus{from, to})
}

func (o *recordingObserver) ObserveRejection(operation, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejections = append(o.rejections, operation+":"+reason)
}

type AdvanceServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.Store
	observer *recordingObserver
	service  portssvc.AdvanceSvcFacade
}

func (suite *AdvanceServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = memory.NewStore()
	suite.Require().NoError(suite.store.SavePolicy(suite.ctx, memory.DemoPolicy()))
	suite.observer = &recordingObserver{}
	suite.service = suite.newService()
}

func (suite *AdvanceServiceTestSuite) newService(opts ...services.AdvanceServiceOption) portssvc.AdvanceSvcFacade {
	base := []services.AdvanceServiceOption{
		services.WithClock(func() time.Time { return fixedNow }),
		services.WithTransitionObserver(suite.observer),
		services.WithMaxAdvanceAmount(dec("5000")),
	}
	return services.NewAdvanceService(suite.store, append(base, opts...)...)
}

func createRequest(amount string) dto.CreateAdvanceRequest {
	return dto.CreateAdvanceRequest{
		Purpose:           "Regional sales summit",
		Project:           "Q1 Summit",
		CostCenterID:      "cc-100",
		GLCodeID:          "gl-6000",
		AmountRequested:   dec(amount),
		Currency:          "usd",
		ExpectedStartDate: "2024-03-01",
		ExpectedEndDate:   "2024-03-05",
		Items: []dto.AdvanceItemRequest{
			{Category: "LODGING", Description: "Hotel estimate", Amount: dec("900"), Date: "2024-03-01"},
		},
	}
}

func retirementItems() []dto.AdvanceItemRequest {
	return []dto.AdvanceItemRequest{
		{Category: "LODGING", Description: "Hotel, 4 nights", Amount: dec("1000"), Date: "2024-03-04", AttachmentURL: "https://files.example/hotel.pdf"},
		{Category: "TRANSPORT", Description: "Flights", Amount: dec("400"), Date: "2024-03-01", AttachmentURL: "https://files.example/flight.pdf"},
		{Category: "MEALS", Description: "Team dinner", Amount: dec("100"), Date: "2024-03-03", AttachmentURL: "https://files.example/dinner.jpg"},
	}
}

// --- helpers driving an advance to a given status ---

func (suite *AdvanceServiceTestSuite) create(amount string) string {
	created, err := suite.service.CreateAdvance(suite.ctx, employee, createRequest(amount))
	suite.Require().NoError(err)
	return created.AdvanceID
}

func (suite *AdvanceServiceTestSuite) approved(amount string) string {
	id := suite.create(amount)
	_, err := suite.service.SubmitForApproval(suite.ctx, employee, id)
	suite.Require().NoError(err)
	_, err = suite.service.RecordApproval(suite.ctx, manager, id, dto.ApprovalDecisionRequest{Approve: boolPtr(true)})
	suite.Require().NoError(err)
	_, err = suite.service.RecordApproval(suite.ctx, finance, id, dto.ApprovalDecisionRequest{Approve: boolPtr(true)})
	suite.Require().NoError(err)
	return id
}

func (suite *AdvanceServiceTestSuite) disbursed(amount string) string {
	id := suite.approved(amount)
	_, err := suite.service.RecordDisbursement(suite.ctx, finance, id, dto.DisbursementRequest{Ref: "PAY-1"})
	suite.Require().NoError(err)
	return id
}

func (suite *AdvanceServiceTestSuite) underReview(amount string) string {
	id := suite.disbursed(amount)
	_, err := suite.service.SubmitRetirement(suite.ctx, employee, id, dto.SubmitRetirementRequest{Items: retirementItems()})
	suite.Require().NoError(err)
	return id
}

func (suite *AdvanceServiceTestSuite) status(id string) domain.AdvanceStatus {
	a, err := suite.store.FindAdvanceByID(suite.ctx, id)
	suite.Require().NoError(err)
	return a.Status
}

// --- CreateAdvance ---

func (suite *AdvanceServiceTestSuite) TestCreateAdvance_Success() {
	created, err := suite.service.CreateAdvance(suite.ctx, employee, createRequest("1500"))

	suite.Require().NoError(err)
	suite.NotEmpty(created.AdvanceID)
	suite.Equal(domain.StatusDraft, created.Status)
	suite.Equal("employee-1", created.EmployeeID)
	suite.Equal("USD", created.Currency)
	suite.True(dec("1500").Equal(created.AmountRequested))
	suite.Equal(fixedNow, created.CreatedAt)
	suite.Equal(fixedNow, created.UpdatedAt)
	suite.Require().Len(created.Approvals, 2)
	suite.Equal(domain.RoleManager, created.Approvals[0].Role)
	suite.Equal(domain.RoleFinance, created.Approvals[1].Role)
	for _, step := range created.Approvals {
		suite.Equal(domain.StepPending, step.Status)
	}
	suite.Require().Len(created.Items, 1)
	suite.Equal(domain.ItemTypeRequest, created.Items[0].Type)

	stored, err := suite.store.ListItems(suite.ctx, created.AdvanceID)
	suite.Require().NoError(err)
	suite.Len(stored, 1)

	logs, err := suite.store.ListAuditLogs(suite.ctx, created.AdvanceID, "")
	suite.Require().NoError(err)
	suite.Require().Len(logs, 1)
	suite.Equal(domain.ActionAdvanceCreated, logs[0].Action)
	suite.Equal(domain.EntityAdvance, logs[0].EntityType)
}

func (suite *AdvanceServiceTestSuite) TestCreateAdvance_ValidationErrors() {
	testCases := []struct {
		name   string
		mutate func(*dto.CreateAdvanceRequest)
		field  string
	}{
		{"zero amount", func(r *dto.CreateAdvanceRequest) { r.AmountRequested = decimal.Zero }, "amountRequested"},
		{"negative amount", func(r *dto.CreateAdvanceRequest) { r.AmountRequested = dec("-5") }, "amountRequested"},
		{"over cap", func(r *dto.CreateAdvanceRequest) { r.AmountRequested = dec("5000.01") }, "amountRequested"},
		{"short purpose", func(r *dto.CreateAdvanceRequest) { r.Purpose = "ab" }, "purpose"},
		{"missing cost center", func(r *dto.CreateAdvanceRequest) { r.CostCenterID = "" }, "costCenterId"},
		{"bad currency", func(r *dto.CreateAdvanceRequest) { r.Currency = "US" }, "currency"},
		{"end before start", func(r *dto.CreateAdvanceRequest) { r.ExpectedEndDate = "2024-02-28" }, "expectedEndDate"},
		{"bad item amount", func(r *dto.CreateAdvanceRequest) { r.Items[0].Amount = decimal.Zero }, "items[0].amount"},
		{"bad item date", func(r *dto.CreateAdvanceRequest) { r.Items[0].Date = "03/01/2024" }, "items[0].date"},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			req := createRequest("1500")
			tc.mutate(&req)

			created, err := suite.service.CreateAdvance(suite.ctx, employee, req)

			suite.Nil(created)
			suite.Require().ErrorIs(err, apperrors.ErrValidation)
			suite.Contains(apperrors.FieldErrors(err), tc.field)
		})
	}

	all, err := suite.store.ListAdvances(suite.ctx, domain.AdvanceFilter{})
	suite.Require().NoError(err)
	suite.Empty(all)
}

func (suite *AdvanceServiceTestSuite) TestCreateAdvance_OnBehalfOf() {
	req := createRequest("300")
	req.EmployeeID = "employee-9"

	_, err := suite.service.CreateAdvance(suite.ctx, employee, req)
	suite.ErrorIs(err, apperrors.ErrForbidden)

	created, err := suite.service.CreateAdvance(suite.ctx, admin, req)
	suite.Require().NoError(err)
	suite.Equal("employee-9", created.EmployeeID)
	suite.Equal("admin-1", created.CreatedBy)
}

func (suite *AdvanceServiceTestSuite) TestCreateAdvance_RequiresActor() {
	_, err := suite.service.CreateAdvance(suite.ctx, domain.Actor{}, createRequest("100"))
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

// --- End-to-end and rejection scenarios ---

func (suite *AdvanceServiceTestSuite) TestEndToEnd_SettledWithoutBalance() {
	id := suite.create("1500")

	a, err := suite.service.SubmitForApproval(suite.ctx, employee, id)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPendingManager, a.Status)

	a, err = suite.service.RecordApproval(suite.ctx, manager, id, dto.ApprovalDecisionRequest{Approve: boolPtr(true), Comment: "ok"})
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPendingFinance, a.Status)
	suite.Equal(domain.StepApproved, a.Approvals[0].Status)
	suite.Equal("manager-1", a.Approvals[0].ActorID)
	suite.Equal("ok", a.Approvals[0].Comment)

	a, err = suite.service.RecordApproval(suite.ctx, finance, id, dto.ApprovalDecisionRequest{Approve: boolPtr(true)})
	suite.Require().NoError(err)
	suite.Equal(domain.StatusApproved, a.Status)

	a, err = suite.service.RecordDisbursement(suite.ctx, finance, id, dto.DisbursementRequest{Ref: "PAY-1"})
	suite.Require().NoError(err)
	suite.Equal(domain.StatusDisbursed, a.Status)
	suite.Equal("PAY-1", a.DisbursementRef)
	suite.Require().NotNil(a.DisbursedAt)

	payments, err := suite.service.ListPayments(suite.ctx, finance, id)
	suite.Require().NoError(err)
	suite.Require().Len(payments, 1)
	suite.Equal(domain.PaymentOut, payments[0].Direction)
	suite.Equal(domain.MethodTransfer, payments[0].Method)
	suite.True(dec("1500").Equal(payments[0].Amount))

	detail, err := suite.service.SubmitRetirement(suite.ctx, employee, id, dto.SubmitRetirementRequest{Items: retirementItems(), Notes: "all receipts attached"})
	suite.Require().NoError(err)
	suite.Equal(domain.StatusUnderReview, detail.Advance.Status)
	suite.Equal(domain.RetirementSubmitted, detail.Summary.Status)
	suite.True(dec("1500").Equal(detail.Summary.TotalSpent))
	suite.True(detail.Summary.RefundDueToCompany.IsZero())
	suite.True(detail.Summary.TopupDueToEmployee.IsZero())
	suite.Equal("all receipts attached", detail.Summary.FinanceNotes)
	suite.Len(detail.Items, 3)

	detail, err = suite.service.VerifyRetirement(suite.ctx, finance, id, dto.VerifyRetirementRequest{Approve: boolPtr(true), Notes: "verified"})
	suite.Require().NoError(err)
	suite.Equal(domain.StatusSettled, detail.Advance.Status)
	suite.Equal(domain.RetirementVerified, detail.Summary.Status)
	suite.Equal("verified", detail.Summary.FinanceNotes)
	suite.Equal(domain.StatusSettled, suite.status(id))

	logs, err := suite.service.ListAuditLogs(suite.ctx, finance, id, "")
	suite.Require().NoError(err)
	actions := make([]string, 0, len(logs))
	for _, entry := range logs {
		suite.Equal(id, entry.EntityID)
		actions = append(actions, entry.Action)
	}
	suite.Equal([]string{
		domain.ActionAdvanceCreated,
		domain.ActionSubmitted,
		domain.ActionApprovalUpdated,
		domain.ActionApprovalUpdated,
		domain.ActionDisbursed,
		domain.ActionRetirementSubmitted,
		domain.ActionRetirementVerified,
	}, actions)
	suite.Equal(map[string]any{"status": "PENDING_MANAGER"}, logs[2].Before)

	suite.Len(suite.observer.transitions, 6)
	suite.Equal([2]domain.AdvanceStatus{domain.StatusUnderReview, domain.StatusSettled}, suite.observer.transitions[5])
}

func (suite *AdvanceServiceTestSuite) TestRetirementBalances() {
	testCases := []struct {
		requested string
		refund    string
		topup     string
	}{
		{"1000", "0", "500"},
		{"1800", "300", "0"},
	}
	for _, tc := range testCases {
		suite.Run(tc.requested, func() {
			id := suite.disbursed(tc.requested)
			detail, err := suite.service.SubmitRetirement(suite.ctx, employee, id, dto.SubmitRetirementRequest{Items: retirementItems()})
			suite.Require().NoError(err)
			suite.True(dec("1500").Equal(detail.Summary.TotalSpent))
			suite.True(dec(tc.refund).Equal(detail.Summary.RefundDueToCompany), detail.Summary.RefundDueToCompany.String())
			suite.True(dec(tc.topup).Equal(detail.Summary.TopupDueToEmployee), detail.Summary.TopupDueToEmployee.String())
		})
	}
}

func (suite *AdvanceServiceTestSuite) TestManagerRejection_IsTerminal() {
	id := suite.create("800")
	_, err := suite.service.SubmitForApproval(suite.ctx, employee, id)
	suite.Require().NoError(err)

	a, err := suite.service.RecordApproval(suite.ctx, manager, id, dto.ApprovalDecisionRequest{Approve: boolPtr(false), Comment: "no budget"})
	suite.Require().NoError(err)
	suite.Equal(domain.StatusRejected, a.Status)
	suite.Equal(domain.StepRejected, a.Approvals[0].Status)

	for _, actor := range []domain.Actor{employee, manager, finance, admin} {
		_, err = suite.service.SubmitForApproval(suite.ctx, actor, id)
		suite.ErrorIs(err, apperrors.ErrIllegalTransition, actor.Role)

		_, err = suite.service.MarkOverdue(suite.ctx, actor, id, "")
		suite.ErrorIs(err, apperrors.ErrIllegalTransition, actor.Role)

		_, err = suite.service.RecordDisbursement(suite.ctx, actor, id, dto.DisbursementRequest{Ref: "X"})
		suite.Error(err, actor.Role)

		_, err = suite.service.RequestRetirement(suite.ctx, actor, id, "")
		suite.Error(err, actor.Role)
	}

	_, err = suite.service.RecordApproval(suite.ctx, finance, id, dto.ApprovalDecisionRequest{Approve: boolPtr(true)})
	suite.ErrorIs(err, apperrors.ErrIllegalTransition)

	_, err = suite.service.RecordApproval(suite.ctx, manager, id, dto.ApprovalDecisionRequest{Approve: boolPtr(true)})
	suite.ErrorIs(err, apperrors.ErrStepNotFound)

	suite.Equal(domain.StatusRejected, suite.status(id))
	transitions, err := suite.service.AvailableTransitions(suite.ctx, admin, id)
	suite.Require().NoError(err)
	suite.Empty(transitions)
}

func (suite *AdvanceServiceTestSuite) TestFinanceRejection() {
	id := suite.create("800")
	_, err := suite.service.SubmitForApproval(suite.ctx, employee, id)
	suite.Require().NoError(err)
	_, err = suite.service.RecordApproval(suite.ctx, manager, id, dto.ApprovalDecisionRequest{Approve: boolPtr(true)})
	suite.Require().NoError(err)

	a, err := suite.service.RecordApproval(suite.ctx, finance, id, dto.ApprovalDecisionRequest{Approve: boolPtr(false)})
	suite.Require().NoError(err)
	suite.Equal(domain.StatusRejected, a.Status)
}

// --- RecordApproval ---

func (suite *AdvanceServiceTestSuite) TestRecordApproval_RoleChecks() {
	id := suite.create("800")
	_, err := suite.service.SubmitForApproval(suite.ctx, employee, id)
	suite.Require().NoError(err)

	_, err = suite.service.RecordApproval(suite.ctx, finance, id, dto.ApprovalDecisionRequest{Role: domain.RoleManager, Approve: boolPtr(true)})
	suite.ErrorIs(err, apperrors.ErrForbidden)

	_, err = suite.service.RecordApproval(suite.ctx, employee, id, dto.ApprovalDecisionRequest{Approve: boolPtr(true)})
	suite.ErrorIs(err, apperrors.ErrForbidden)

	// finance deciding its own step out of order
	_, err = suite.service.RecordApproval(suite.ctx, finance, id, dto.ApprovalDecisionRequest{Approve: boolPtr(true)})
	var illegal *apperrors.IllegalTransitionError
	suite.Require().ErrorAs(err, &illegal)
	suite.Equal("PENDING_MANAGER", illegal.From)
	suite.Equal("APPROVED", illegal.To)
	suite.Equal("FINANCE", illegal.Role)

	suite.Equal(domain.StatusPendingManager, suite.status(id))
}

func (suite *AdvanceServiceTestSuite) TestRecordApproval_AdminDerivesStep() {
	id := suite.create("800")
	_, err := suite.service.SubmitForApproval(suite.ctx, admin, id)
	suite.Require().NoError(err)

	a, err := suite.service.RecordApproval(suite.ctx, admin, id, dto.ApprovalDecisionRequest{Approve: boolPtr(true)})
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPendingFinance, a.Status)
	suite.Equal("admin-1", a.Approvals[0].ActorID)

	a, err = suite.service.RecordApproval(suite.ctx, admin, id, dto.ApprovalDecisionRequest{Approve: boolPtr(true)})
	suite.Require().NoError(err)
	suite.Equal(domain.StatusApproved, a.Status)
}

func (suite *AdvanceServiceTestSuite) TestRecordApproval_MissingDecision() {
	id := suite.create("800")
	_, err := suite.service.RecordApproval(suite.ctx, manager, id, dto.ApprovalDecisionRequest{})
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(apperrors.FieldErrors(err), "approve")
}

func (suite *AdvanceServiceTestSuite) TestRecordApproval_DraftIsIllegal() {
	id := suite.create("800")
	_, err := suite.service.RecordApproval(suite.ctx, manager, id, dto.ApprovalDecisionRequest{Approve: boolPtr(true)})
	suite.ErrorIs(err, apperrors.ErrIllegalTransition)

	a, err := suite.store.FindAdvanceByID(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Equal(domain.StepPending, a.Approvals[0].Status)
}

func (suite *AdvanceServiceTestSuite) TestRecordApproval_ExplicitRoleMustMatchPendingStep() {
	id := suite.create("800")
	_, err := suite.service.SubmitForApproval(suite.ctx, employee, id)
	suite.Require().NoError(err)

	_, err = suite.service.RecordApproval(suite.ctx, admin, id, dto.ApprovalDecisionRequest{Role: domain.RoleFinance, Approve: boolPtr(false), Comment: "no"})
	suite.ErrorIs(err, apperrors.ErrStepNotFound)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	a, err := suite.store.FindAdvanceByID(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPendingManager, a.Status)
	for _, step := range a.Approvals {
		suite.Equal(domain.StepPending, step.Status, step.Role)
	}

	a2, err := suite.service.RecordApproval(suite.ctx, admin, id, dto.ApprovalDecisionRequest{Role: domain.RoleManager, Approve: boolPtr(true)})
	suite.Require().NoError(err)
	suite.Equal(domain.StatusPendingFinance, a2.Status)
}

// --- RecordDisbursement ---

func (suite *AdvanceServiceTestSuite) TestRecordDisbursement_ConcurrentCallsPayOnce() {
	id := suite.approved("800")

	const callers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		others    []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.service.RecordDisbursement(suite.ctx, finance, id, dto.DisbursementRequest{Ref: "PAY-1"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			others = append(others, err)
		}()
	}
	wg.Wait()

	suite.Equal(1, successes)
	suite.Len(others, callers-1)
	for _, err := range others {
		suite.ErrorIs(err, apperrors.ErrInvalidState)
	}

	payments, err := suite.store.ListPayments(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Len(payments, 1)
	suite.Equal(domain.StatusDisbursed, suite.status(id))
}

func (suite *AdvanceServiceTestSuite) TestRecordDisbursement_RequiresApproved() {
	id := suite.create("800")
	_, err := suite.service.SubmitForApproval(suite.ctx, employee, id)
	suite.Require().NoError(err)

	_, err = suite.service.RecordDisbursement(suite.ctx, finance, id, dto.DisbursementRequest{Ref: "PAY-1"})
	suite.ErrorIs(err, apperrors.ErrInvalidState)

	payments, err := suite.store.ListPayments(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Empty(payments)
}

func (suite *AdvanceServiceTestSuite) TestRecordDisbursement_WrongRole() {
	id := suite.approved("800")
	_, err := suite.service.RecordDisbursement(suite.ctx, manager, id, dto.DisbursementRequest{Ref: "PAY-1"})
	suite.ErrorIs(err, apperrors.ErrIllegalTransition)
	suite.Equal(domain.StatusApproved, suite.status(id))
}

func (suite *AdvanceServiceTestSuite) TestRecordDisbursement_ExplicitPayload() {
	id := suite.approved("800")
	a, err := suite.service.RecordDisbursement(suite.ctx, admin, id, dto.DisbursementRequest{
		Ref:    "CASH-7",
		Method: domain.MethodCash,
		Amount: dec("750"),
		Date:   "2024-03-08",
	})
	suite.Require().NoError(err)
	suite.Equal(time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), *a.DisbursedAt)

	payments, err := suite.store.ListPayments(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Require().Len(payments, 1)
	suite.Equal(domain.MethodCash, payments[0].Method)
	suite.True(dec("750").Equal(payments[0].Amount))
}

// --- SubmitRetirement ---

func (suite *AdvanceServiceTestSuite) TestSubmitRetirement_ResubmissionReplacesItems() {
	id := suite.disbursed("1500")

	first, err := suite.service.SubmitRetirement(suite.ctx, employee, id, dto.SubmitRetirementRequest{Items: retirementItems()})
	suite.Require().NoError(err)
	second, err := suite.service.SubmitRetirement(suite.ctx, employee, id, dto.SubmitRetirementRequest{Items: retirementItems()})
	suite.Require().NoError(err)

	suite.Equal(first.Summary.RetirementID, second.Summary.RetirementID)

	items, err := suite.service.ListItems(suite.ctx, employee, id)
	suite.Require().NoError(err)
	suite.Len(domain.FilterItems(items, domain.ItemTypeRetirement), 3)
	request := domain.FilterItems(items, domain.ItemTypeRequest)
	suite.Require().Len(request, 1)
	suite.Equal("Hotel estimate", request[0].Description)
	suite.True(dec("900").Equal(request[0].Amount))
}

func (suite *AdvanceServiceTestSuite) TestSubmitRetirement_AttachesPolicyFlags() {
	id := suite.disbursed("1500")
	items := []dto.AdvanceItemRequest{
		{Category: "MEALS", Description: "Dinner", Amount: dec("90"), Date: "2024-03-15", AttachmentURL: "https://files.example/r.jpg"},
	}

	detail, err := suite.service.SubmitRetirement(suite.ctx, employee, id, dto.SubmitRetirementRequest{Items: items})
	suite.Require().NoError(err)
	suite.Require().Len(detail.Items, 1)

	flags := detail.Items[0].PolicyFlags
	suite.Require().Len(flags, 2)
	suite.Equal(domain.FlagOverPerDiem, flags[0].Code)
	suite.Equal(domain.SeverityError, flags[0].Severity)
	suite.Equal(domain.FlagPastDeadline, flags[1].Code)
	suite.Equal(domain.SeverityWarn, flags[1].Severity)
}

func (suite *AdvanceServiceTestSuite) TestSubmitRetirement_MissingReceiptNeedsOverride() {
	id := suite.disbursed("1500")
	items := []dto.AdvanceItemRequest{
		{Category: "MEALS", Description: "Lunch", Amount: dec("30"), Date: "2024-03-02"},
	}

	_, err := suite.service.SubmitRetirement(suite.ctx, employee, id, dto.SubmitRetirementRequest{Items: items})
	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(apperrors.FieldErrors(err), "overrideReason")
	suite.Equal(domain.StatusDisbursed, suite.status(id))
	_, err = suite.store.FindRetirementByAdvanceID(suite.ctx, id)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	detail, err := suite.service.SubmitRetirement(suite.ctx, employee, id, dto.SubmitRetirementRequest{Items: items, OverrideReason: "receipt lost"})
	suite.Require().NoError(err)
	suite.Equal("receipt lost", detail.Summary.OverrideReason)
	suite.True(detail.Items[0].HasFlag(domain.FlagMissingReceipt))
}

func (suite *AdvanceServiceTestSuite) TestSubmitRetirement_OverrideOptional() {
	svc := suite.newService(services.WithReceiptOverrideRequired(false))
	id := suite.disbursed("1500")
	items := []dto.AdvanceItemRequest{
		{Category: "MEALS", Description: "Lunch", Amount: dec("30"), Date: "2024-03-02"},
	}

	detail, err := svc.SubmitRetirement(suite.ctx, employee, id, dto.SubmitRetirementRequest{Items: items})
	suite.Require().NoError(err)
	suite.True(detail.Items[0].HasFlag(domain.FlagMissingReceipt))
}

func (suite *AdvanceServiceTestSuite) TestSubmitRetirement_WithoutPolicyFailsOpen() {
	suite.store = memory.NewStore()
	suite.service = suite.newService()
	id := suite.disbursed("1500")
	items := []dto.AdvanceItemRequest{
		{Category: "MEALS", Description: "Lunch", Amount: dec("300"), Date: "2024-04-30"},
	}

	detail, err := suite.service.SubmitRetirement(suite.ctx, employee, id, dto.SubmitRetirementRequest{Items: items})
	suite.Require().NoError(err)
	suite.Empty(detail.Items[0].PolicyFlags)
}

func (suite *AdvanceServiceTestSuite) TestSubmitRetirement_RequiresItems() {
	id := suite.disbursed("1500")
	_, err := suite.service.SubmitRetirement(suite.ctx, employee, id, dto.SubmitRetirementRequest{})
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(apperrors.FieldErrors(err), "items")
}

func (suite *AdvanceServiceTestSuite) TestSubmitRetirement_LenientEligibility() {
	approvedID := suite.approved("1500")
	_, err := suite.service.SubmitRetirement(suite.ctx, employee, approvedID, dto.SubmitRetirementRequest{Items: retirementItems()})
	suite.ErrorIs(err, apperrors.ErrInvalidState)

	disbursedID := suite.disbursed("1500")
	_, err = suite.service.SubmitRetirement(suite.ctx, finance, disbursedID, dto.SubmitRetirementRequest{Items: retirementItems()})
	suite.ErrorIs(err, apperrors.ErrIllegalTransition)

	_, err = suite.service.SubmitRetirement(suite.ctx, otherEmployee, disbursedID, dto.SubmitRetirementRequest{Items: retirementItems()})
	suite.ErrorIs(err, apperrors.ErrForbidden)

	_, err = suite.service.SubmitRetirement(suite.ctx, employee, disbursedID, dto.SubmitRetirementRequest{Items: retirementItems()})
	suite.NoError(err)
}

func (suite *AdvanceServiceTestSuite) TestSubmitRetirement_StrictEligibility() {
	strict := suite.newService(services.WithStrictRetirementTransitions(true))
	id := suite.disbursed("1500")

	_, err := strict.SubmitRetirement(suite.ctx, employee, id, dto.SubmitRetirementRequest{Items: retirementItems()})
	suite.Require().ErrorIs(err, apperrors.ErrIllegalTransition)
	suite.Equal(domain.StatusDisbursed, suite.status(id))

	_, err = strict.RequestRetirement(suite.ctx, finance, id, "please retire")
	suite.Require().NoError(err)

	detail, err := strict.SubmitRetirement(suite.ctx, employee, id, dto.SubmitRetirementRequest{Items: retirementItems()})
	suite.Require().NoError(err)
	suite.Equal(domain.StatusUnderReview, detail.Advance.Status)

	_, err = strict.SubmitRetirement(suite.ctx, employee, id, dto.SubmitRetirementRequest{Items: retirementItems()})
	suite.ErrorIs(err, apperrors.ErrIllegalTransition)
}

// --- VerifyRetirement / RequestChanges ---

func (suite *AdvanceServiceTestSuite) TestVerifyRetirement_Reject() {
	id := suite.underReview("1500")

	detail, err := suite.service.VerifyRetirement(suite.ctx, finance, id, dto.VerifyRetirementRequest{Approve: boolPtr(false), Notes: "missing hotel folio"})
	suite.Require().NoError(err)
	suite.Equal(domain.StatusUnderReview, detail.Advance.Status)
	suite.Equal(domain.RetirementDraft, detail.Summary.Status)
	suite.Equal("missing hotel folio", detail.Summary.FinanceNotes)
	suite.Len(detail.Items, 3)

	retirementLogs, err := suite.service.ListAuditLogs(suite.ctx, finance, id, domain.EntityRetirement)
	suite.Require().NoError(err)
	suite.Len(retirementLogs, 2)
}

func (suite *AdvanceServiceTestSuite) TestVerifyRetirement_ApproveNeedsResubmission() {
	id := suite.underReview("1500")

	_, err := suite.service.VerifyRetirement(suite.ctx, finance, id, dto.VerifyRetirementRequest{Approve: boolPtr(false), Notes: "missing hotel folio"})
	suite.Require().NoError(err)

	_, err = suite.service.VerifyRetirement(suite.ctx, finance, id, dto.VerifyRetirementRequest{Approve: boolPtr(true)})
	suite.ErrorIs(err, apperrors.ErrInvalidState)
	suite.Equal(domain.StatusUnderReview, suite.status(id))

	summary, err := suite.store.FindRetirementByAdvanceID(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Equal(domain.RetirementDraft, summary.Status)
}

func (suite *AdvanceServiceTestSuite) TestVerifyRetirement_Guards() {
	id := suite.disbursed("1500")
	_, err := suite.service.VerifyRetirement(suite.ctx, finance, id, dto.VerifyRetirementRequest{Approve: boolPtr(true)})
	suite.ErrorIs(err, apperrors.ErrInvalidState)

	id = suite.underReview("1500")
	_, err = suite.service.VerifyRetirement(suite.ctx, employee, id, dto.VerifyRetirementRequest{Approve: boolPtr(true)})
	suite.ErrorIs(err, apperrors.ErrIllegalTransition)
	_, err = suite.service.VerifyRetirement(suite.ctx, employee, id, dto.VerifyRetirementRequest{Approve: boolPtr(false)})
	suite.ErrorIs(err, apperrors.ErrIllegalTransition)
	suite.Equal(domain.StatusUnderReview, suite.status(id))
}

func (suite *AdvanceServiceTestSuite) TestRequestChanges_ThenResubmit() {
	id := suite.underReview("1500")

	detail, err := suite.service.RequestChanges(suite.ctx, finance, id, "split the hotel bill")
	suite.Require().NoError(err)
	suite.Equal(domain.StatusAwaitingRetirement, detail.Advance.Status)
	suite.Equal(domain.RetirementDraft, detail.Summary.Status)
	suite.Equal("split the hotel bill", detail.Summary.FinanceNotes)

	again, err := suite.service.SubmitRetirement(suite.ctx, employee, id, dto.SubmitRetirementRequest{Items: retirementItems()})
	suite.Require().NoError(err)
	suite.Equal(domain.StatusUnderReview, again.Advance.Status)
	suite.Equal(domain.RetirementSubmitted, again.Summary.Status)

	_, err = suite.service.RequestChanges(suite.ctx, employee, id, "")
	suite.ErrorIs(err, apperrors.ErrIllegalTransition)
}

// --- MarkOverdue / RequestRetirement ---

func (suite *AdvanceServiceTestSuite) TestMarkOverdue() {
	id := suite.disbursed("1500")

	_, err := suite.service.MarkOverdue(suite.ctx, employee, id, "")
	suite.ErrorIs(err, apperrors.ErrIllegalTransition)

	a, err := suite.service.MarkOverdue(suite.ctx, finance, id, "no retirement after 30 days")
	suite.Require().NoError(err)
	suite.Equal(domain.StatusOverdue, a.Status)

	logs, err := suite.store.ListAuditLogs(suite.ctx, id, domain.EntityAdvance)
	suite.Require().NoError(err)
	last := logs[len(logs)-1]
	suite.Equal(domain.ActionMarkedOverdue, last.Action)
	suite.Equal("no retirement after 30 days", last.Comment)
	suite.Equal(map[string]any{"status": "DISBURSED"}, last.Before)
}

func (suite *AdvanceServiceTestSuite) TestRequestRetirement_RequiresDisbursed() {
	id := suite.underReview("1500")
	_, err := suite.service.RequestRetirement(suite.ctx, finance, id, "")
	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

// --- RecordPayment ---

func (suite *AdvanceServiceTestSuite) TestRecordPayment() {
	id := suite.disbursed("1200")
	_, err := suite.service.SubmitRetirement(suite.ctx, employee, id, dto.SubmitRetirementRequest{Items: retirementItems()[:1]})
	suite.Require().NoError(err)

	p, err := suite.service.RecordPayment(suite.ctx, finance, id, dto.RecordPaymentRequest{
		Direction: domain.PaymentIn,
		Method:    domain.MethodCash,
		Amount:    dec("200"),
		Ref:       "REFUND-1",
	})
	suite.Require().NoError(err)
	suite.Equal(domain.PaymentIn, p.Direction)
	suite.Equal(fixedNow, p.Date)

	payments, err := suite.store.ListPayments(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Len(payments, 2)

	paymentLogs, err := suite.service.ListAuditLogs(suite.ctx, finance, id, domain.EntityPayment)
	suite.Require().NoError(err)
	suite.Require().Len(paymentLogs, 1)
	suite.Equal(domain.ActionPaymentRecorded, paymentLogs[0].Action)
	suite.Equal(id, paymentLogs[0].EntityID)
}

func (suite *AdvanceServiceTestSuite) TestRecordPayment_Rejections() {
	id := suite.disbursed("1200")

	_, err := suite.service.RecordPayment(suite.ctx, finance, id, dto.RecordPaymentRequest{Direction: domain.PaymentIn, Method: domain.MethodCash})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.RecordPayment(suite.ctx, employee, id, dto.RecordPaymentRequest{Direction: domain.PaymentIn, Method: domain.MethodCash, Amount: dec("5")})
	suite.ErrorIs(err, apperrors.ErrForbidden)

	_, err = suite.service.RecordPayment(suite.ctx, finance, "missing", dto.RecordPaymentRequest{Direction: domain.PaymentIn, Method: domain.MethodCash, Amount: dec("5")})
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

// --- Reads ---

func (suite *AdvanceServiceTestSuite) TestReads_EmployeeScope() {
	id := suite.create("100")
	other, err := suite.service.CreateAdvance(suite.ctx, otherEmployee, createRequest("200"))
	suite.Require().NoError(err)

	got, err := suite.service.GetAdvance(suite.ctx, employee, id)
	suite.Require().NoError(err)
	suite.Len(got.Items, 1)

	_, err = suite.service.GetAdvance(suite.ctx, employee, other.AdvanceID)
	suite.ErrorIs(err, apperrors.ErrForbidden)

	list, err := suite.service.ListAdvances(suite.ctx, employee, domain.AdvanceFilter{EmployeeID: "employee-2"})
	suite.Require().NoError(err)
	suite.Require().Len(list, 1)
	suite.Equal(id, list[0].AdvanceID)

	list, err = suite.service.ListAdvances(suite.ctx, finance, domain.AdvanceFilter{})
	suite.Require().NoError(err)
	suite.Len(list, 2)

	_, err = suite.service.GetAdvance(suite.ctx, finance, "missing")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.service.GetRetirement(suite.ctx, employee, id)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *AdvanceServiceTestSuite) TestAvailableTransitions() {
	id := suite.disbursed("100")

	forFinance, err := suite.service.AvailableTransitions(suite.ctx, finance, id)
	suite.Require().NoError(err)
	actions := []workflow.Action{}
	for _, t := range forFinance {
		actions = append(actions, t.Action)
	}
	suite.Equal([]workflow.Action{workflow.ActionRequestRetirement, workflow.ActionMarkOverdue}, actions)

	forEmployee, err := suite.service.AvailableTransitions(suite.ctx, employee, id)
	suite.Require().NoError(err)
	suite.Empty(forEmployee)
}

func (suite *AdvanceServiceTestSuite) TestGetPolicy() {
	p, err := suite.service.GetPolicy(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal("Global Travel Policy", p.Name)
}

func (suite *AdvanceServiceTestSuite) TestRejectionsAreObserved() {
	id := suite.create("100")
	_, err := suite.service.MarkOverdue(suite.ctx, finance, id, "")
	suite.Require().Error(err)
	suite.Contains(suite.observer.rejections, "mark_overdue:illegal_transition")
}

// --- Atomicity ---

var errAuditDown = errors.New("audit store unavailable")

// auditFailingRepo fails every audit append inside a transaction.
type auditFailingRepo struct {
	portsrepo.AdvanceRepositoryFacade
}

func (auditFailingRepo) AppendAudit(context.Context, domain.AuditLogEntry) error {
	return errAuditDown
}

type auditFailingStore struct {
	*memory.Store
}

func (s auditFailingStore) RunInTx(ctx context.Context, fn portsrepo.TxFunc) error {
	return s.Store.RunInTx(ctx, func(ctx context.Context, repo portsrepo.AdvanceRepositoryFacade) error {
		return fn(ctx, auditFailingRepo{repo})
	})
}

func (suite *AdvanceServiceTestSuite) TestFailedAuditRollsBackEverything() {
	id := suite.disbursed("1500")
	before, err := suite.store.ListItems(suite.ctx, id)
	suite.Require().NoError(err)

	svc := services.NewAdvanceService(auditFailingStore{suite.store}, services.WithClock(func() time.Time { return fixedNow }))

	_, err = svc.SubmitRetirement(suite.ctx, employee, id, dto.SubmitRetirementRequest{Items: retirementItems()})
	suite.Require().ErrorIs(err, errAuditDown)

	suite.Equal(domain.StatusDisbursed, suite.status(id))
	after, err := suite.store.ListItems(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Equal(before, after)
	_, err = suite.store.FindRetirementByAdvanceID(suite.ctx, id)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = svc.RecordPayment(suite.ctx, finance, id, dto.RecordPaymentRequest{Direction: domain.PaymentIn, Method: domain.MethodCash, Amount: dec("1")})
	suite.Require().ErrorIs(err, errAuditDown)
	payments, err := suite.store.ListPayments(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Len(payments, 1)
}

func TestAdvanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AdvanceServiceTestSuite))
}
