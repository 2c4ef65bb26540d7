package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/cash_advance_app/internal/apperrors"
	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	"github.com/SscSPs/cash_advance_app/internal/core/policy"
	portsrepo "github.com/SscSPs/cash_advance_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/cash_advance_app/internal/core/ports/services"
	"github.com/SscSPs/cash_advance_app/internal/core/workflow"
	"github.com/SscSPs/cash_advance_app/internal/dto"
	"github.com/SscSPs/cash_advance_app/internal/utils/accounting"
)

// TransitionObserver is notified after a status change commits and whenever an
// operation is rejected. metrics.Collector satisfies it.
type TransitionObserver interface {
	ObserveTransition(from, to domain.AdvanceStatus)
	ObserveRejection(operation, reason string)
}

type noopObserver struct{}

func (noopObserver) ObserveTransition(domain.AdvanceStatus, domain.AdvanceStatus) {}
func (noopObserver) ObserveRejection(string, string)                            {}

// advanceService implements the advance lifecycle on top of the persistence port.
type advanceService struct {
	BaseService
	repo                   portsrepo.AdvanceRepositoryWithTx
	strictRetirement       bool
	requireReceiptOverride bool
	maxAdvanceAmount       decimal.Decimal
	observer               TransitionObserver
}

// AdvanceServiceOption configures the advance service.
type AdvanceServiceOption func(*advanceService)

// WithStrictRetirementTransitions limits retirement submission to AWAITING_RETIREMENT.
func WithStrictRetirementTransitions(strict bool) AdvanceServiceOption {
	return func(s *advanceService) {
		s.strictRetirement = strict
	}
}

// WithReceiptOverrideRequired makes MISSING_RECEIPT flags demand an override reason.
func WithReceiptOverrideRequired(required bool) AdvanceServiceOption {
	return func(s *advanceService) {
		s.requireReceiptOverride = required
	}
}

// WithMaxAdvanceAmount caps amountRequested. Zero disables the cap.
func WithMaxAdvanceAmount(max decimal.Decimal) AdvanceServiceOption {
	return func(s *advanceService) {
		s.maxAdvanceAmount = max
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) AdvanceServiceOption {
	return func(s *advanceService) {
		s.now = now
	}
}

// WithTransitionObserver sets the observer for committed transitions and rejections.
func WithTransitionObserver(o TransitionObserver) AdvanceServiceOption {
	return func(s *advanceService) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewAdvanceService creates a new advance lifecycle service with the given options.
func NewAdvanceService(repo portsrepo.AdvanceRepositoryWithTx, opts ...AdvanceServiceOption) portssvc.AdvanceSvcFacade {
	s := &advanceService{
		repo:                   repo,
		requireReceiptOverride: true,
		maxAdvanceAmount:       decimal.Zero,
		observer:               noopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ensure advanceService implements the portssvc.AdvanceSvcFacade interface
var _ portssvc.AdvanceSvcFacade = (*advanceService)(nil)

// CreateAdvance creates a DRAFT advance with pending MANAGER and FINANCE steps.
func (s *advanceService) CreateAdvance(ctx context.Context, actor domain.Actor, req dto.CreateAdvanceRequest) (*domain.AdvanceWithItems, error) {
	const op = "create_advance"
	if err := checkActor(actor); err != nil {
		return nil, s.fail(ctx, op, "", err)
	}
	if err := validateInput(req); err != nil {
		return nil, s.fail(ctx, op, "", err)
	}

	employeeID := actor.UserID
	if req.EmployeeID != "" && req.EmployeeID != actor.UserID {
		if actor.Role != domain.RoleAdmin {
			return nil, s.fail(ctx, op, "", apperrors.NewForbiddenError("only ADMIN may create advances for another employee"))
		}
		employeeID = req.EmployeeID
	}

	var errs apperrors.ValidationErrors
	if !req.AmountRequested.IsPositive() {
		errs = append(errs, &apperrors.ValidationError{Field: "amountRequested", Message: "must be greater than zero"})
	} else if s.maxAdvanceAmount.IsPositive() && req.AmountRequested.GreaterThan(s.maxAdvanceAmount) {
		errs = append(errs, &apperrors.ValidationError{Field: "amountRequested", Message: "must not exceed " + s.maxAdvanceAmount.String()})
	}
	start, err := parseDate("expectedStartDate", req.ExpectedStartDate)
	if err != nil {
		errs = append(errs, asFieldErrors(err)...)
	}
	end, err := parseDate("expectedEndDate", req.ExpectedEndDate)
	if err != nil {
		errs = append(errs, asFieldErrors(err)...)
	}
	if start != nil && end != nil && end.Before(*start) {
		errs = append(errs, &apperrors.ValidationError{Field: "expectedEndDate", Message: "must not be before expectedStartDate"})
	}

	advanceID := uuid.NewString()
	currency := strings.ToUpper(req.Currency)
	items, itemErrs := buildItems(req.Items, advanceID, domain.ItemTypeRequest, currency)
	errs = append(errs, itemErrs...)
	if len(errs) > 0 {
		return nil, s.fail(ctx, op, "", errs)
	}

	now := s.Now()
	advance := domain.Advance{
		AdvanceID:         advanceID,
		EmployeeID:        employeeID,
		Purpose:           strings.TrimSpace(req.Purpose),
		Project:           strings.TrimSpace(req.Project),
		CostCenterID:      req.CostCenterID,
		GLCodeID:          req.GLCodeID,
		AmountRequested:   req.AmountRequested,
		Currency:          currency,
		Status:            domain.StatusDraft,
		Approvals:         newApprovalSteps(),
		ExpectedStartDate: start,
		ExpectedEndDate:   end,
		AuditFields: domain.AuditFields{
			CreatedAt: now,
			CreatedBy: actor.UserID,
			UpdatedAt: now,
			UpdatedBy: actor.UserID,
		},
	}

	err = s.repo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.AdvanceRepositoryFacade) error {
		if err := tx.SaveAdvance(ctx, advance); err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.ReplaceItems(ctx, advanceID, domain.ItemTypeRequest, items); err != nil {
				return err
			}
		}
		return s.appendAudit(ctx, tx, actor, domain.ActionAdvanceCreated, domain.EntityAdvance, advanceID,
			nil, map[string]any{"status": string(advance.Status), "amountRequested": advance.AmountRequested.String()}, "")
	})
	if err != nil {
		return nil, s.fail(ctx, op, advanceID, err)
	}

	s.LogInfo(ctx, "Advance created",
		slog.String("advance_id", advanceID),
		slog.String("employee_id", employeeID),
		slog.String("amount", advance.AmountRequested.String()))
	return &domain.AdvanceWithItems{Advance: advance, Items: items}, nil
}

// SubmitForApproval moves a DRAFT advance to PENDING_MANAGER.
func (s *advanceService) SubmitForApproval(ctx context.Context, actor domain.Actor, advanceID string) (*domain.Advance, error) {
	return s.transition(ctx, "submit_for_approval", actor, advanceID, "", domain.StatusPendingManager, domain.ActionSubmitted, "")
}

// RequestRetirement asks the employee to account for a DISBURSED advance.
func (s *advanceService) RequestRetirement(ctx context.Context, actor domain.Actor, advanceID string, comment string) (*domain.Advance, error) {
	return s.transition(ctx, "request_retirement", actor, advanceID, domain.StatusDisbursed, domain.StatusAwaitingRetirement, domain.ActionRetirementRequested, comment)
}

// MarkOverdue flags a DISBURSED advance as OVERDUE.
func (s *advanceService) MarkOverdue(ctx context.Context, actor domain.Actor, advanceID string, comment string) (*domain.Advance, error) {
	return s.transition(ctx, "mark_overdue", actor, advanceID, "", domain.StatusOverdue, domain.ActionMarkedOverdue, comment)
}

// transition applies one table edge that changes nothing but the status.
// A non-empty from must match the current status, otherwise ErrInvalidState.
func (s *advanceService) transition(ctx context.Context, op string, actor domain.Actor, advanceID string,
	from, to domain.AdvanceStatus, action, comment string) (*domain.Advance, error) {
	var out domain.Advance
	var prev domain.AdvanceStatus
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.AdvanceRepositoryFacade) error {
		a, err := s.lockAdvance(ctx, tx, actor, advanceID)
		if err != nil {
			return err
		}
		if from != "" && a.Status != from {
			return apperrors.NewInvalidStateError("advance %s is %s, expected %s", advanceID, a.Status, from)
		}
		if err := workflow.AssertTransition(a.Status, to, actor.Role); err != nil {
			return err
		}
		prev = a.Status
		a.Status = to
		a.Touch(s.Now(), actor.UserID)
		if err := tx.SaveAdvance(ctx, *a); err != nil {
			return err
		}
		out = *a
		return s.appendAudit(ctx, tx, actor, action, domain.EntityAdvance, advanceID,
			statusSnapshot(prev), statusSnapshot(to), comment)
	})
	if err != nil {
		return nil, s.fail(ctx, op, advanceID, err)
	}
	s.committed(ctx, op, advanceID, prev, to)
	return &out, nil
}

// RecordApproval decides one pending approval step and derives the next status.
func (s *advanceService) RecordApproval(ctx context.Context, actor domain.Actor, advanceID string, req dto.ApprovalDecisionRequest) (*domain.Advance, error) {
	const op = "record_approval"
	if err := validateInput(req); err != nil {
		return nil, s.fail(ctx, op, advanceID, err)
	}
	approve := *req.Approve

	var out domain.Advance
	var prev domain.AdvanceStatus
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.AdvanceRepositoryFacade) error {
		a, err := s.lockAdvance(ctx, tx, actor, advanceID)
		if err != nil {
			return err
		}
		role, err := approvalRole(actor, req.Role, a.Status)
		if err != nil {
			return err
		}
		if actor.Role != role && actor.Role != domain.RoleAdmin {
			return apperrors.NewForbiddenError("role %s cannot decide the %s step", actor.Role, role)
		}

		idx := a.ApprovalStepIndex(role)
		if idx < 0 || a.Approvals[idx].IsDecided() {
			return fmt.Errorf("%w: %s step on advance %s is absent or already decided", apperrors.ErrStepNotFound, role, advanceID)
		}

		next := nextAfterApproval(role, approve)
		if err := workflow.AssertTransition(a.Status, next, actor.Role); err != nil {
			return err
		}

		now := s.Now()
		step := &a.Approvals[idx]
		step.Status = domain.StepRejected
		if approve {
			step.Status = domain.StepApproved
		}
		step.ActorID = actor.UserID
		step.ActedAt = &now
		step.Comment = req.Comment

		prev = a.Status
		a.Status = next
		a.Touch(now, actor.UserID)
		if err := tx.SaveAdvance(ctx, *a); err != nil {
			return err
		}
		out = *a
		return s.appendAudit(ctx, tx, actor, domain.ActionApprovalUpdated, domain.EntityAdvance, advanceID,
			statusSnapshot(prev),
			map[string]any{"status": string(next), "role": string(role), "stepStatus": string(step.Status)},
			req.Comment)
	})
	if err != nil {
		return nil, s.fail(ctx, op, advanceID, err)
	}
	s.committed(ctx, op, advanceID, prev, out.Status)
	return &out, nil
}

// RecordDisbursement pays out an APPROVED advance and logs the outbound payment.
func (s *advanceService) RecordDisbursement(ctx context.Context, actor domain.Actor, advanceID string, req dto.DisbursementRequest) (*domain.Advance, error) {
	const op = "record_disbursement"
	if err := validateInput(req); err != nil {
		return nil, s.fail(ctx, op, advanceID, err)
	}
	if req.Amount.IsNegative() {
		return nil, s.fail(ctx, op, advanceID, apperrors.NewFieldValidationError("amount", "must be greater than zero"))
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, s.fail(ctx, op, advanceID, err)
	}

	var out domain.Advance
	var prev domain.AdvanceStatus
	err = s.repo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.AdvanceRepositoryFacade) error {
		a, err := s.lockAdvance(ctx, tx, actor, advanceID)
		if err != nil {
			return err
		}
		if a.Status != domain.StatusApproved {
			return apperrors.NewInvalidStateError("advance %s must be %s before disbursement, is %s", advanceID, domain.StatusApproved, a.Status)
		}
		if err := workflow.AssertTransition(a.Status, domain.StatusDisbursed, actor.Role); err != nil {
			return err
		}

		now := s.Now()
		paidAt := now
		if date != nil {
			paidAt = *date
		}
		amount := req.Amount
		if amount.IsZero() {
			amount = a.AmountRequested
		}
		method := req.Method
		if method == "" {
			method = domain.MethodTransfer
		}

		prev = a.Status
		a.Status = domain.StatusDisbursed
		a.DisbursedAt = &paidAt
		a.DisbursementRef = req.Ref
		a.Touch(now, actor.UserID)
		if err := tx.SaveAdvance(ctx, *a); err != nil {
			return err
		}
		payment := domain.Payment{
			PaymentID: uuid.NewString(),
			AdvanceID: advanceID,
			Direction: domain.PaymentOut,
			Method:    method,
			Amount:    amount,
			Ref:       req.Ref,
			Date:      paidAt,
			CreatedBy: actor.UserID,
		}
		if err := tx.AppendPayment(ctx, payment); err != nil {
			return err
		}
		out = *a
		return s.appendAudit(ctx, tx, actor, domain.ActionDisbursed, domain.EntityAdvance, advanceID,
			statusSnapshot(prev),
			map[string]any{"status": string(a.Status), "disbursementRef": req.Ref, "amount": amount.String()},
			"")
	})
	if err != nil {
		return nil, s.fail(ctx, op, advanceID, err)
	}
	s.committed(ctx, op, advanceID, prev, out.Status)
	return &out, nil
}

// SubmitRetirement evaluates and reconciles the actual spend, replacing any
// earlier retirement items, and moves the advance to UNDER_REVIEW.
func (s *advanceService) SubmitRetirement(ctx context.Context, actor domain.Actor, advanceID string, req dto.SubmitRetirementRequest) (*domain.RetirementDetail, error) {
	const op = "submit_retirement"
	if err := validateInput(req); err != nil {
		return nil, s.fail(ctx, op, advanceID, err)
	}

	var out domain.RetirementDetail
	var prev domain.AdvanceStatus
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.AdvanceRepositoryFacade) error {
		a, err := s.lockAdvance(ctx, tx, actor, advanceID)
		if err != nil {
			return err
		}
		if err := s.checkRetirementEligible(a, actor.Role); err != nil {
			return err
		}

		items, errs := buildItems(req.Items, advanceID, domain.ItemTypeRetirement, a.Currency)
		if len(errs) > 0 {
			return errs
		}

		pol, err := tx.GetActivePolicy(ctx)
		if err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			pol = nil
		}
		items = policy.EvaluateAll(items, *a, pol)
		if s.requireReceiptOverride && strings.TrimSpace(req.OverrideReason) == "" && anyFlag(items, domain.FlagMissingReceipt) {
			return apperrors.NewFieldValidationError("overrideReason", "is required when an item is missing its receipt")
		}

		rec := accounting.Reconcile(a.AmountRequested, items)
		now := s.Now()

		retirementID := uuid.NewString()
		existing, err := tx.FindRetirementByAdvanceID(ctx, advanceID)
		switch {
		case err == nil:
			retirementID = existing.RetirementID
		case !errors.Is(err, apperrors.ErrNotFound):
			return err
		}
		summary := domain.RetirementSummary{
			RetirementID:       retirementID,
			AdvanceID:          advanceID,
			SubmittedBy:        actor.UserID,
			SubmittedAt:        now,
			TotalSpent:         rec.TotalSpent,
			RefundDueToCompany: rec.RefundDueToCompany,
			TopupDueToEmployee: rec.TopupDueToEmployee,
			Status:             domain.RetirementSubmitted,
			FinanceNotes:       req.Notes,
			OverrideReason:     strings.TrimSpace(req.OverrideReason),
		}

		if err := tx.ReplaceItems(ctx, advanceID, domain.ItemTypeRetirement, items); err != nil {
			return err
		}
		if err := tx.SaveRetirement(ctx, summary); err != nil {
			return err
		}
		prev = a.Status
		a.Status = domain.StatusUnderReview
		a.Touch(now, actor.UserID)
		if err := tx.SaveAdvance(ctx, *a); err != nil {
			return err
		}

		out = domain.RetirementDetail{Advance: *a, Summary: summary, Items: items}
		return s.appendAudit(ctx, tx, actor, domain.ActionRetirementSubmitted, domain.EntityRetirement, advanceID,
			statusSnapshot(prev),
			map[string]any{
				"status":             string(a.Status),
				"retirementStatus":   string(summary.Status),
				"totalSpent":         summary.TotalSpent.String(),
				"refundDueToCompany": summary.RefundDueToCompany.String(),
				"topupDueToEmployee": summary.TopupDueToEmployee.String(),
			},
			req.Notes)
	})
	if err != nil {
		return nil, s.fail(ctx, op, advanceID, err)
	}
	s.committed(ctx, op, advanceID, prev, out.Advance.Status)
	return &out, nil
}

// checkRetirementEligible enforces either the strict table edge or the wider
// DISBURSED/AWAITING_RETIREMENT/UNDER_REVIEW window.
func (s *advanceService) checkRetirementEligible(a *domain.Advance, role domain.Role) error {
	if s.strictRetirement {
		return workflow.AssertTransition(a.Status, domain.StatusUnderReview, role)
	}
	switch a.Status {
	case domain.StatusDisbursed, domain.StatusAwaitingRetirement, domain.StatusUnderReview:
	default:
		return apperrors.NewInvalidStateError("advance %s is %s and not eligible for retirement", a.AdvanceID, a.Status)
	}
	if !workflow.CanPerform(workflow.ActionSubmitRetirement, role) {
		return apperrors.NewIllegalTransition(string(a.Status), string(domain.StatusUnderReview), string(role))
	}
	return nil
}

// VerifyRetirement settles the advance on approval, or returns the summary to
// DRAFT while the advance stays UNDER_REVIEW.
func (s *advanceService) VerifyRetirement(ctx context.Context, actor domain.Actor, advanceID string, req dto.VerifyRetirementRequest) (*domain.RetirementDetail, error) {
	const op = "verify_retirement"
	if err := validateInput(req); err != nil {
		return nil, s.fail(ctx, op, advanceID, err)
	}
	approve := *req.Approve

	var out domain.RetirementDetail
	var prev domain.AdvanceStatus
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.AdvanceRepositoryFacade) error {
		a, err := s.lockAdvance(ctx, tx, actor, advanceID)
		if err != nil {
			return err
		}
		if a.Status != domain.StatusUnderReview {
			return apperrors.NewInvalidStateError("advance %s is %s, expected %s", advanceID, a.Status, domain.StatusUnderReview)
		}
		summary, err := tx.FindRetirementByAdvanceID(ctx, advanceID)
		if err != nil {
			return err
		}

		prevSummary := summary.Status
		prev = a.Status
		if approve {
			if err := workflow.AssertTransition(a.Status, domain.StatusSettled, actor.Role); err != nil {
				return err
			}
			if summary.Status != domain.RetirementSubmitted {
				return apperrors.NewInvalidStateError("retirement for advance %s is %s, expected %s", advanceID, summary.Status, domain.RetirementSubmitted)
			}
			a.Status = domain.StatusSettled
			summary.Status = domain.RetirementVerified
		} else {
			if !workflow.CanPerform(workflow.ActionSettle, actor.Role) {
				return apperrors.NewIllegalTransition(string(a.Status), string(a.Status), string(actor.Role))
			}
			summary.Status = domain.RetirementDraft
		}
		summary.FinanceNotes = req.Notes

		a.Touch(s.Now(), actor.UserID)
		if err := tx.SaveRetirement(ctx, *summary); err != nil {
			return err
		}
		if err := tx.SaveAdvance(ctx, *a); err != nil {
			return err
		}
		items, err := tx.ListItems(ctx, advanceID)
		if err != nil {
			return err
		}

		out = domain.RetirementDetail{Advance: *a, Summary: *summary, Items: domain.FilterItems(items, domain.ItemTypeRetirement)}
		return s.appendAudit(ctx, tx, actor, domain.ActionRetirementVerified, domain.EntityRetirement, advanceID,
			map[string]any{"status": string(prev), "retirementStatus": string(prevSummary)},
			map[string]any{"status": string(a.Status), "retirementStatus": string(summary.Status)},
			req.Notes)
	})
	if err != nil {
		return nil, s.fail(ctx, op, advanceID, err)
	}
	s.committed(ctx, op, advanceID, prev, out.Advance.Status)
	return &out, nil
}

// RequestChanges sends an UNDER_REVIEW retirement back to the employee.
func (s *advanceService) RequestChanges(ctx context.Context, actor domain.Actor, advanceID string, notes string) (*domain.RetirementDetail, error) {
	const op = "request_changes"

	var out domain.RetirementDetail
	var prev domain.AdvanceStatus
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.AdvanceRepositoryFacade) error {
		a, err := s.lockAdvance(ctx, tx, actor, advanceID)
		if err != nil {
			return err
		}
		if a.Status != domain.StatusUnderReview {
			return apperrors.NewInvalidStateError("advance %s is %s, expected %s", advanceID, a.Status, domain.StatusUnderReview)
		}
		if err := workflow.AssertTransition(a.Status, domain.StatusAwaitingRetirement, actor.Role); err != nil {
			return err
		}
		summary, err := tx.FindRetirementByAdvanceID(ctx, advanceID)
		if err != nil {
			return err
		}

		prev = a.Status
		a.Status = domain.StatusAwaitingRetirement
		a.Touch(s.Now(), actor.UserID)
		summary.Status = domain.RetirementDraft
		if notes != "" {
			summary.FinanceNotes = notes
		}
		if err := tx.SaveRetirement(ctx, *summary); err != nil {
			return err
		}
		if err := tx.SaveAdvance(ctx, *a); err != nil {
			return err
		}
		items, err := tx.ListItems(ctx, advanceID)
		if err != nil {
			return err
		}

		out = domain.RetirementDetail{Advance: *a, Summary: *summary, Items: domain.FilterItems(items, domain.ItemTypeRetirement)}
		return s.appendAudit(ctx, tx, actor, domain.ActionChangesRequested, domain.EntityRetirement, advanceID,
			statusSnapshot(prev),
			map[string]any{"status": string(a.Status), "retirementStatus": string(summary.Status)},
			notes)
	})
	if err != nil {
		return nil, s.fail(ctx, op, advanceID, err)
	}
	s.committed(ctx, op, advanceID, prev, out.Advance.Status)
	return &out, nil
}

// RecordPayment appends an ad-hoc payment regardless of advance status.
func (s *advanceService) RecordPayment(ctx context.Context, actor domain.Actor, advanceID string, req dto.RecordPaymentRequest) (*domain.Payment, error) {
	const op = "record_payment"
	if err := validateInput(req); err != nil {
		return nil, s.fail(ctx, op, advanceID, err)
	}
	if !req.Amount.IsPositive() {
		return nil, s.fail(ctx, op, advanceID, apperrors.NewFieldValidationError("amount", "must be greater than zero"))
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, s.fail(ctx, op, advanceID, err)
	}
	if actor.Role != domain.RoleFinance && actor.Role != domain.RoleAdmin {
		return nil, s.fail(ctx, op, advanceID, apperrors.NewForbiddenError("role %s cannot record payments", actor.Role))
	}

	var out domain.Payment
	err = s.repo.RunInTx(ctx, func(ctx context.Context, tx portsrepo.AdvanceRepositoryFacade) error {
		if _, err := s.lockAdvance(ctx, tx, actor, advanceID); err != nil {
			return err
		}
		paidAt := s.Now()
		if date != nil {
			paidAt = *date
		}
		out = domain.Payment{
			PaymentID: uuid.NewString(),
			AdvanceID: advanceID,
			Direction: req.Direction,
			Method:    req.Method,
			Amount:    req.Amount,
			Ref:       req.Ref,
			Date:      paidAt,
			CreatedBy: actor.UserID,
		}
		if err := tx.AppendPayment(ctx, out); err != nil {
			return err
		}
		return s.appendAudit(ctx, tx, actor, domain.ActionPaymentRecorded, domain.EntityPayment, advanceID,
			nil,
			map[string]any{"paymentId": out.PaymentID, "direction": string(out.Direction), "amount": out.Amount.String()},
			"")
	})
	if err != nil {
		return nil, s.fail(ctx, op, advanceID, err)
	}
	s.LogInfo(ctx, "Payment recorded",
		slog.String("advance_id", advanceID),
		slog.String("payment_id", out.PaymentID),
		slog.String("direction", string(out.Direction)))
	return &out, nil
}

// lockAdvance loads the advance for update and checks the actor may touch it.
func (s *advanceService) lockAdvance(ctx context.Context, tx portsrepo.AdvanceRepositoryFacade, actor domain.Actor, advanceID string) (*domain.Advance, error) {
	if err := checkActor(actor); err != nil {
		return nil, err
	}
	a, err := tx.FindAdvanceByIDForUpdate(ctx, advanceID)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(actor, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *advanceService) appendAudit(ctx context.Context, tx portsrepo.AdvanceRepositoryFacade, actor domain.Actor,
	action string, entityType domain.EntityType, advanceID string, before, after map[string]any, comment string) error {
	return tx.AppendAudit(ctx, domain.AuditLogEntry{
		AuditID:    uuid.NewString(),
		ActorID:    actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   advanceID,
		Before:     before,
		After:      after,
		At:         s.Now(),
		Comment:    comment,
	})
}

// committed logs and records a status change after its transaction commits.
func (s *advanceService) committed(ctx context.Context, op, advanceID string, from, to domain.AdvanceStatus) {
	if from != to {
		s.observer.ObserveTransition(from, to)
	}
	s.LogInfo(ctx, "Advance transition committed",
		slog.String("operation", op),
		slog.String("advance_id", advanceID),
		slog.String("from", string(from)),
		slog.String("to", string(to)))
}

// fail logs err and records business-rule rejections. It returns err unchanged
// for rejections and wraps infrastructure failures.
func (s *advanceService) fail(ctx context.Context, op, advanceID string, err error) error {
	reason, rejected := rejectionReason(err)
	s.observer.ObserveRejection(op, reason)
	if rejected {
		s.LogWarn(ctx, err, "Advance operation rejected",
			slog.String("operation", op),
			slog.String("advance_id", advanceID),
			slog.String("reason", reason))
		return err
	}
	s.LogError(ctx, err, "Advance operation failed",
		slog.String("operation", op),
		slog.String("advance_id", advanceID))
	return fmt.Errorf("failed to %s: %w", strings.ReplaceAll(op, "_", " "), err)
}

func rejectionReason(err error) (string, bool) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return "validation", true
	case errors.Is(err, apperrors.ErrIllegalTransition):
		return "illegal_transition", true
	case errors.Is(err, apperrors.ErrInvalidState):
		return "invalid_state", true
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found", true
	case errors.Is(err, apperrors.ErrForbidden):
		return "forbidden", true
	case errors.Is(err, apperrors.ErrUnauthorized):
		return "unauthorized", true
	}
	return "internal", false
}

func checkActor(actor domain.Actor) error {
	if actor.UserID == "" || !actor.Role.IsValid() {
		return fmt.Errorf("%w: actor identity or role missing", apperrors.ErrUnauthorized)
	}
	return nil
}

// checkOwnership keeps employees on their own advances.
func checkOwnership(actor domain.Actor, a *domain.Advance) error {
	if actor.Role == domain.RoleEmployee && a.EmployeeID != actor.UserID {
		return apperrors.NewForbiddenError("advance %s belongs to another employee", a.AdvanceID)
	}
	return nil
}

func newApprovalSteps() []domain.ApprovalStep {
	steps := make([]domain.ApprovalStep, 0, len(domain.RequiredApprovalRoles))
	for _, role := range domain.RequiredApprovalRoles {
		steps = append(steps, domain.ApprovalStep{Role: role, Status: domain.StepPending})
	}
	return steps
}

// approvalRole picks the step being decided: explicit, the actor's own role, or
// for anyone else the step the current status waits on.
// An explicit role must name the step the status waits on.
func approvalRole(actor domain.Actor, requested domain.Role, status domain.AdvanceStatus) (domain.Role, error) {
	pending, ok := pendingApprovalRole(status)
	if requested != "" {
		if ok && requested != pending {
			return "", fmt.Errorf("%w: advance is %s, waiting on the %s step, not %s", apperrors.ErrStepNotFound, status, pending, requested)
		}
		return requested, nil
	}
	if actor.Role == domain.RoleManager || actor.Role == domain.RoleFinance {
		return actor.Role, nil
	}
	if ok {
		return pending, nil
	}
	return "", apperrors.NewInvalidStateError("no approval step is pending while advance is %s", status)
}

func pendingApprovalRole(status domain.AdvanceStatus) (domain.Role, bool) {
	switch status {
	case domain.StatusPendingManager:
		return domain.RoleManager, true
	case domain.StatusPendingFinance:
		return domain.RoleFinance, true
	}
	return "", false
}

func nextAfterApproval(role domain.Role, approve bool) domain.AdvanceStatus {
	switch {
	case !approve:
		return domain.StatusRejected
	case role == domain.RoleManager:
		return domain.StatusPendingFinance
	default:
		return domain.StatusApproved
	}
}

// buildItems converts request lines, collecting per-field errors.
func buildItems(reqs []dto.AdvanceItemRequest, advanceID string, itemType domain.ItemType, currency string) ([]domain.AdvanceItem, apperrors.ValidationErrors) {
	items := make([]domain.AdvanceItem, 0, len(reqs))
	var errs apperrors.ValidationErrors
	for i, r := range reqs {
		prefix := fmt.Sprintf("items[%d].", i)
		if !r.Amount.IsPositive() {
			errs = append(errs, &apperrors.ValidationError{Field: prefix + "amount", Message: "must be greater than zero"})
		}
		date, err := parseDate(prefix+"date", r.Date)
		if err != nil {
			errs = append(errs, asFieldErrors(err)...)
			continue
		}
		item := domain.AdvanceItem{
			ItemID:        uuid.NewString(),
			AdvanceID:     advanceID,
			Type:          itemType,
			Category:      strings.ToUpper(strings.TrimSpace(r.Category)),
			Description:   strings.TrimSpace(r.Description),
			Amount:        r.Amount,
			Currency:      currency,
			AttachmentURL: r.AttachmentURL,
			OCRText:       r.OCRText,
			PolicyFlags:   []domain.PolicyFlag{},
		}
		if r.Currency != "" {
			item.Currency = strings.ToUpper(r.Currency)
		}
		if date != nil {
			item.Date = *date
		}
		items = append(items, item)
	}
	return items, errs
}

func asFieldErrors(err error) apperrors.ValidationErrors {
	var one *apperrors.ValidationError
	if errors.As(err, &one) {
		return apperrors.ValidationErrors{one}
	}
	return apperrors.ValidationErrors{{Message: err.Error()}}
}

func anyFlag(items []domain.AdvanceItem, code domain.FlagCode) bool {
	for _, it := range items {
		if it.HasFlag(code) {
			return true
		}
	}
	return false
}

func statusSnapshot(status domain.AdvanceStatus) map[string]any {
	return map[string]any{"status": string(status)}
}
