package services

import (
	portsrepo "github.com/SscSPs/cash_advance_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/cash_advance_app/internal/core/ports/services"
	"github.com/SscSPs/cash_advance_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// observer may be nil.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, observer TransitionObserver) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Advance = NewAdvanceService(
		repos.AdvanceRepo,
		WithStrictRetirementTransitions(cfg.StrictRetirementTransitions),
		WithReceiptOverrideRequired(cfg.RequireReceiptOverride),
		WithMaxAdvanceAmount(cfg.MaxAdvanceAmount),
		WithTransitionObserver(observer),
	)
	container.Reporting = NewReportingService(repos.ReportingRepo)
	container.TokenService = NewTokenService(cfg)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AdvanceSvcFacade = (*advanceService)(nil)
	_ portssvc.ReportingService = (*reportingService)(nil)
	_ portssvc.TokenSvcFacade   = (*tokenService)(nil)
)
