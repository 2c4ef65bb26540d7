package pgsql

import (
	portsrepo "github.com/SscSPs/cash_advance_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	advanceRepo := newPgxAdvanceRepository(dbPool)
	reportingRepo := newReportingRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AdvanceRepo:   advanceRepo,
		ReportingRepo: reportingRepo,
	}
}
