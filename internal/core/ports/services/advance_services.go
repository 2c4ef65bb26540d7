package services

import (
	"context"

	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	"github.com/SscSPs/cash_advance_app/internal/core/workflow"
	"github.com/SscSPs/cash_advance_app/internal/dto"
)

// AdvanceReaderSvc defines read operations for advance data
type AdvanceReaderSvc interface {
	// GetAdvance returns an advance with its items. Employees only see their own.
	GetAdvance(ctx context.Context, actor domain.Actor, advanceID string) (*domain.AdvanceWithItems, error)

	// ListAdvances lists advances. Employees are always scoped to themselves.
	ListAdvances(ctx context.Context, actor domain.Actor, filter domain.AdvanceFilter) ([]domain.Advance, error)

	ListItems(ctx context.Context, actor domain.Actor, advanceID string) ([]domain.AdvanceItem, error)

	// GetRetirement returns apperrors.ErrNotFound when nothing has been submitted.
	GetRetirement(ctx context.Context, actor domain.Actor, advanceID string) (*domain.RetirementSummary, error)

	ListPayments(ctx context.Context, actor domain.Actor, advanceID string) ([]domain.Payment, error)

	// ListAuditLogs returns the advance's audit trail. An empty entityType returns every kind.
	ListAuditLogs(ctx context.Context, actor domain.Actor, advanceID string, entityType domain.EntityType) ([]domain.AuditLogEntry, error)

	// GetPolicy returns the active policy or apperrors.ErrNotFound.
	GetPolicy(ctx context.Context) (*domain.Policy, error)

	// AvailableTransitions lists what actor may do next with the advance.
	AvailableTransitions(ctx context.Context, actor domain.Actor, advanceID string) ([]workflow.Transition, error)
}

// AdvanceLifecycleSvc drives advances through the workflow. Every operation is
// all-or-nothing.
type AdvanceLifecycleSvc interface {
	CreateAdvance(ctx context.Context, actor domain.Actor, req dto.CreateAdvanceRequest) (*domain.AdvanceWithItems, error)
	SubmitForApproval(ctx context.Context, actor domain.Actor, advanceID string) (*domain.Advance, error)
	RecordApproval(ctx context.Context, actor domain.Actor, advanceID string, req dto.ApprovalDecisionRequest) (*domain.Advance, error)
	RecordDisbursement(ctx context.Context, actor domain.Actor, advanceID string, req dto.DisbursementRequest) (*domain.Advance, error)
	RequestRetirement(ctx context.Context, actor domain.Actor, advanceID string, comment string) (*domain.Advance, error)
	SubmitRetirement(ctx context.Context, actor domain.Actor, advanceID string, req dto.SubmitRetirementRequest) (*domain.RetirementDetail, error)
	VerifyRetirement(ctx context.Context, actor domain.Actor, advanceID string, req dto.VerifyRetirementRequest) (*domain.RetirementDetail, error)
	RequestChanges(ctx context.Context, actor domain.Actor, advanceID string, notes string) (*domain.RetirementDetail, error)
	MarkOverdue(ctx context.Context, actor domain.Actor, advanceID string, comment string) (*domain.Advance, error)
	RecordPayment(ctx context.Context, actor domain.Actor, advanceID string, req dto.RecordPaymentRequest) (*domain.Payment, error)
}

// AdvanceSvcFacade combines all advance-related service interfaces
// This is a facade for clients that need access to all operations
type AdvanceSvcFacade interface {
	AdvanceReaderSvc
	AdvanceLifecycleSvc
}
