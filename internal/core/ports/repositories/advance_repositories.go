package repositories

import (
	"context"

	"github.com/SscSPs/cash_advance_app/internal/core/domain"
)

// AdvanceReader defines read operations for advance data
type AdvanceReader interface {
	// FindAdvanceByID retrieves an advance with its approval steps. Returns apperrors.ErrNotFound if absent.
	FindAdvanceByID(ctx context.Context, advanceID string) (*domain.Advance, error)

	// ListAdvances retrieves advances matching the filter, newest first.
	ListAdvances(ctx context.Context, filter domain.AdvanceFilter) ([]domain.Advance, error)
}

// AdvanceWriter defines write operations for advance data
type AdvanceWriter interface {
	// SaveAdvance inserts or replaces an advance and its approval steps.
	SaveAdvance(ctx context.Context, advance domain.Advance) error
}

// AdvanceLocker serializes writers on one advance.
type AdvanceLocker interface {
	// FindAdvanceByIDForUpdate reads an advance and holds it until the enclosing unit of work ends.
	FindAdvanceByIDForUpdate(ctx context.Context, advanceID string) (*domain.Advance, error)
}

// ItemReader defines read operations for advance line items
type ItemReader interface {
	// ListItems returns every item of an advance, REQUEST items first.
	ListItems(ctx context.Context, advanceID string) ([]domain.AdvanceItem, error)
}

// ItemWriter defines write operations for advance line items
type ItemWriter interface {
	// ReplaceItems deletes the advance's items of itemType and stores items in their place.
	ReplaceItems(ctx context.Context, advanceID string, itemType domain.ItemType, items []domain.AdvanceItem) error
}

// RetirementRepository persists retirement summaries, one per advance.
type RetirementRepository interface {
	// FindRetirementByAdvanceID returns apperrors.ErrNotFound when no retirement exists.
	FindRetirementByAdvanceID(ctx context.Context, advanceID string) (*domain.RetirementSummary, error)

	// SaveRetirement inserts or replaces the advance's retirement summary.
	SaveRetirement(ctx context.Context, summary domain.RetirementSummary) error
}

// PaymentRepository is append-only.
type PaymentRepository interface {
	AppendPayment(ctx context.Context, payment domain.Payment) error
	ListPayments(ctx context.Context, advanceID string) ([]domain.Payment, error)
}

// AuditRepository is append-only.
type AuditRepository interface {
	AppendAudit(ctx context.Context, entry domain.AuditLogEntry) error

	// ListAuditLogs returns entries for one entity, oldest first. An empty entityType matches all.
	ListAuditLogs(ctx context.Context, entityID string, entityType domain.EntityType) ([]domain.AuditLogEntry, error)
}

// PolicyReader exposes the active spending policy.
type PolicyReader interface {
	// GetActivePolicy returns the first active policy, or apperrors.ErrNotFound.
	GetActivePolicy(ctx context.Context) (*domain.Policy, error)
}

// AdvanceRepositoryFacade combines all advance-related repository interfaces
// This is a facade for clients that need access to all operations
type AdvanceRepositoryFacade interface {
	AdvanceReader
	AdvanceWriter
	AdvanceLocker
	ItemReader
	ItemWriter
	RetirementRepository
	PaymentRepository
	AuditRepository
	PolicyReader
}

// AdvanceRepositoryWithTx extends AdvanceRepositoryFacade with transaction capabilities
type AdvanceRepositoryWithTx interface {
	AdvanceRepositoryFacade
	TransactionManager
}
