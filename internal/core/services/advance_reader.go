package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	"github.com/SscSPs/cash_advance_app/internal/core/workflow"
)

// GetAdvance retrieves an advance with its line items.
func (s *advanceService) GetAdvance(ctx context.Context, actor domain.Actor, advanceID string) (*domain.AdvanceWithItems, error) {
	a, err := s.readAdvance(ctx, actor, advanceID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, advanceID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list advance items", slog.String("advance_id", advanceID))
		return nil, err
	}
	return &domain.AdvanceWithItems{Advance: *a, Items: items}, nil
}

// ListAdvances lists advances matching filter. Employees only ever see their own.
func (s *advanceService) ListAdvances(ctx context.Context, actor domain.Actor, filter domain.AdvanceFilter) ([]domain.Advance, error) {
	if err := checkActor(actor); err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleEmployee {
		filter.EmployeeID = actor.UserID
	}
	advances, err := s.repo.ListAdvances(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list advances")
		return nil, err
	}
	s.LogDebug(ctx, "Listed advances", slog.Int("count", len(advances)))
	return advances, nil
}

// ListItems lists every item of an advance, REQUEST items first.
func (s *advanceService) ListItems(ctx context.Context, actor domain.Actor, advanceID string) ([]domain.AdvanceItem, error) {
	if _, err := s.readAdvance(ctx, actor, advanceID); err != nil {
		return nil, err
	}
	return s.repo.ListItems(ctx, advanceID)
}

// GetRetirement returns the advance's retirement summary.
func (s *advanceService) GetRetirement(ctx context.Context, actor domain.Actor, advanceID string) (*domain.RetirementSummary, error) {
	if _, err := s.readAdvance(ctx, actor, advanceID); err != nil {
		return nil, err
	}
	return s.repo.FindRetirementByAdvanceID(ctx, advanceID)
}

// ListPayments lists the payments recorded against an advance.
func (s *advanceService) ListPayments(ctx context.Context, actor domain.Actor, advanceID string) ([]domain.Payment, error) {
	if _, err := s.readAdvance(ctx, actor, advanceID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, advanceID)
}

// ListAuditLogs lists the audit trail of an advance, optionally for one entity type.
func (s *advanceService) ListAuditLogs(ctx context.Context, actor domain.Actor, advanceID string, entityType domain.EntityType) ([]domain.AuditLogEntry, error) {
	if _, err := s.readAdvance(ctx, actor, advanceID); err != nil {
		return nil, err
	}
	return s.repo.ListAuditLogs(ctx, advanceID, entityType)
}

// GetPolicy returns the active spending policy.
func (s *advanceService) GetPolicy(ctx context.Context) (*domain.Policy, error) {
	return s.repo.GetActivePolicy(ctx)
}

// AvailableTransitions lists the workflow rows the actor may take from the advance's status.
func (s *advanceService) AvailableTransitions(ctx context.Context, actor domain.Actor, advanceID string) ([]workflow.Transition, error) {
	a, err := s.readAdvance(ctx, actor, advanceID)
	if err != nil {
		return nil, err
	}
	return workflow.AvailableTransitions(a.Status, actor.Role), nil
}

func (s *advanceService) readAdvance(ctx context.Context, actor domain.Actor, advanceID string) (*domain.Advance, error) {
	if err := checkActor(actor); err != nil {
		return nil, err
	}
	a, err := s.repo.FindAdvanceByID(ctx, advanceID)
	if err != nil {
		s.LogDebug(ctx, "Advance lookup failed", slog.String("advance_id", advanceID), slog.String("error", err.Error()))
		return nil, err
	}
	if err := checkOwnership(actor, a); err != nil {
		return nil, err
	}
	return a, nil
}
