package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/cash_advance_app/internal/apperrors"
	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	portsrepo "github.com/SscSPs/cash_advance_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/cash_advance_app/internal/core/ports/services"
	"github.com/SscSPs/cash_advance_app/internal/utils/accounting"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingClock overrides time.Now for the reporting service.
func WithReportingClock(now func() time.Time) ReportingServiceOption {
	return func(s *reportingService) {
		s.now = now
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repo portsrepo.ReportingRepository, options ...ReportingServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		reportingRepo: repo,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// Exposure totals outstanding advances, ages them and groups them by cost
// center and employee. A zero now means the service clock.
func (s *reportingService) Exposure(ctx context.Context, actor domain.Actor, now time.Time) (*domain.ExposureSummary, error) {
	if err := checkActor(actor); err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleEmployee {
		err := apperrors.NewForbiddenError("role %s cannot view exposure", actor.Role)
		s.LogWarn(ctx, err, "Exposure report denied", slog.String("user_id", actor.UserID))
		return nil, err
	}
	if now.IsZero() {
		now = s.Now()
	}

	advances, err := s.reportingRepo.ListOutstandingAdvances(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve outstanding advances")
		return nil, fmt.Errorf("failed to retrieve outstanding advances: %w", err)
	}

	summary := &domain.ExposureSummary{
		Outstanding:  decimal.Zero,
		Overdue:      decimal.Zero,
		Aging:        accounting.AgeAdvances(advances, now),
		ByCostCenter: []domain.GroupTotal{},
		ByEmployee:   []domain.GroupTotal{},
	}
	byCostCenter := map[string]*domain.GroupTotal{}
	byEmployee := map[string]*domain.GroupTotal{}
	for _, a := range advances {
		if !a.Status.IsOutstanding() {
			continue
		}
		summary.Outstanding = summary.Outstanding.Add(a.AmountRequested)
		if a.Status == domain.StatusOverdue {
			summary.Overdue = summary.Overdue.Add(a.AmountRequested)
		}
		addToGroup(byCostCenter, a.CostCenterID, a.AmountRequested)
		addToGroup(byEmployee, a.EmployeeID, a.AmountRequested)
	}
	summary.ByCostCenter = sortedGroups(byCostCenter)
	summary.ByEmployee = sortedGroups(byEmployee)

	s.LogInfo(ctx, "Exposure report generated",
		slog.String("outstanding", summary.Outstanding.String()),
		slog.Int("advance_count", len(advances)))
	return summary, nil
}

func addToGroup(groups map[string]*domain.GroupTotal, key string, amount decimal.Decimal) {
	g, ok := groups[key]
	if !ok {
		g = &domain.GroupTotal{Key: key, Total: decimal.Zero}
		groups[key] = g
	}
	g.Total = g.Total.Add(amount)
	g.Count++
}

// sortedGroups orders by total descending, then key.
func sortedGroups(groups map[string]*domain.GroupTotal) []domain.GroupTotal {
	out := make([]domain.GroupTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Key < out[j].Key
	})
	return out
}
