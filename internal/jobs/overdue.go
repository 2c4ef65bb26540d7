// Package jobs holds scheduled background work.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/cash_advance_app/internal/apperrors"
	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	"github.com/SscSPs/cash_advance_app/internal/middleware"
	"github.com/SscSPs/cash_advance_app/internal/utils/accounting"
	"github.com/robfig/cron/v3"
)

// OverdueScanJob is the job name reported to the RunRecorder.
const OverdueScanJob = "overdue_scan"

// SystemActor is the identity the scheduler acts as.
var SystemActor = domain.Actor{UserID: "system:overdue-scan", Role: domain.RoleFinance}

// AdvanceService is the part of the advance service the scan uses.
type AdvanceService interface {
	ListAdvances(ctx context.Context, actor domain.Actor, filter domain.AdvanceFilter) ([]domain.Advance, error)
	MarkOverdue(ctx context.Context, actor domain.Actor, advanceID string, comment string) (*domain.Advance, error)
}

// RunRecorder receives one observation per scan.
type RunRecorder interface {
	RecordJobRun(job string, duration time.Duration, success bool)
}

// OverdueScanner marks DISBURSED advances OVERDUE once they have been out for
// afterDays calendar days. It only requests the transition; the service still
// validates it.
type OverdueScanner struct {
	service   AdvanceService
	afterDays int
	recorder  RunRecorder
	logger    *slog.Logger
	now       func() time.Time
}

// OverdueOption configures an OverdueScanner.
type OverdueOption func(*OverdueScanner)

// WithRunRecorder reports every run to r.
func WithRunRecorder(r RunRecorder) OverdueOption {
	return func(s *OverdueScanner) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithScanClock overrides the scanner's clock.
func WithScanClock(now func() time.Time) OverdueOption {
	return func(s *OverdueScanner) { s.now = now }
}

// NewOverdueScanner creates a scanner. afterDays must be positive.
func NewOverdueScanner(service AdvanceService, afterDays int, logger *slog.Logger, opts ...OverdueOption) *OverdueScanner {
	if logger == nil {
		logger = slog.Default()
	}
	s := &OverdueScanner{
		service:   service,
		afterDays: afterDays,
		logger:    logger.With(slog.String("job", OverdueScanJob)),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run performs one scan and returns how many advances were marked.
// Advances that changed status since the listing are skipped.
func (s *OverdueScanner) Run(ctx context.Context) (int, error) {
	start := time.Now()
	ctx = middleware.WithLogger(ctx, s.logger)
	now := s.now().UTC()

	marked, err := s.scan(ctx, now)
	if s.recorder != nil {
		s.recorder.RecordJobRun(OverdueScanJob, time.Since(start), err == nil)
	}
	if err != nil {
		s.logger.Error("Overdue scan finished with errors", slog.Int("marked", marked), slog.String("error", err.Error()))
		return marked, err
	}
	s.logger.Info("Overdue scan finished", slog.Int("marked", marked))
	return marked, nil
}

func (s *OverdueScanner) scan(ctx context.Context, now time.Time) (int, error) {
	disbursed, err := s.service.ListAdvances(ctx, SystemActor, domain.AdvanceFilter{Status: domain.StatusDisbursed})
	if err != nil {
		return 0, err
	}

	var errs []error
	marked := 0
	for _, a := range disbursed {
		days := accounting.DaysOutstanding(a, now)
		if days < s.afterDays {
			continue
		}
		_, err := s.service.MarkOverdue(ctx, SystemActor, a.AdvanceID, "Not retired within the allowed period")
		switch {
		case err == nil:
			marked++
			s.logger.Info("Advance marked overdue", slog.String("advance_id", a.AdvanceID), slog.Int("days_outstanding", days))
		case errors.Is(err, apperrors.ErrIllegalTransition), errors.Is(err, apperrors.ErrInvalidState), errors.Is(err, apperrors.ErrNotFound):
			s.logger.Warn("Skipping advance", slog.String("advance_id", a.AdvanceID), slog.String("reason", err.Error()))
		default:
			errs = append(errs, err)
		}
	}
	return marked, errors.Join(errs...)
}

// Schedule registers the scan on c under the given cron spec.
func (s *OverdueScanner) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		_, _ = s.Run(ctx)
	})
}
