package services

import (
	"context"
	"time"

	"github.com/SscSPs/cash_advance_app/internal/core/domain"
)

// ReportingService defines finance monitoring operations
type ReportingService interface {
	// Exposure aggregates outstanding advance funds as of now.
	Exposure(ctx context.Context, actor domain.Actor, now time.Time) (*domain.ExposureSummary, error)
}
