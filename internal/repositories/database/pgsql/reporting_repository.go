package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/cash_advance_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	advances *PgxAdvanceRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{advances: newPgxAdvanceRepository(db)}
}

// ListOutstandingAdvances retrieves advances whose funds have left the company but are not settled.
func (r *reportingRepository) ListOutstandingAdvances(ctx context.Context) ([]domain.Advance, error) {
	statuses := make([]string, len(domain.OutstandingStatuses))
	for i, s := range domain.OutstandingStatuses {
		statuses[i] = string(s)
	}

	query := `SELECT ` + advanceColumns + `
		FROM advances
		WHERE status = ANY($1)
		ORDER BY disbursed_at NULLS LAST, advance_id`

	advances, err := r.advances.queryAdvances(ctx, query, statuses)
	if err != nil {
		return nil, fmt.Errorf("error querying outstanding advances: %w", err)
	}
	if advances == nil {
		// Return empty slice instead of nil
		return []domain.Advance{}, nil
	}
	return advances, nil
}
