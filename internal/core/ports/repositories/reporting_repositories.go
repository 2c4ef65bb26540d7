package repositories

import (
	"context"

	"github.com/SscSPs/cash_advance_app/internal/core/domain"
)

// ReportingRepository defines operations for retrieving exposure data
type ReportingRepository interface {
	// ListOutstandingAdvances returns advances whose funds are not yet reconciled.
	ListOutstandingAdvances(ctx context.Context) ([]domain.Advance, error)
}
