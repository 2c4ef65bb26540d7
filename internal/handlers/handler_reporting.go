package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/cash_advance_app/internal/core/ports/services"
	"github.com/SscSPs/cash_advance_app/internal/dto"
	"github.com/SscSPs/cash_advance_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles finance monitoring and policy lookups.
type reportingHandler struct {
	reportingService portssvc.ReportingService
	advanceService   portssvc.AdvanceReaderSvc
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService, as portssvc.AdvanceReaderSvc) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
		advanceService:   as,
	}
}

// registerReportingRoutes registers report and policy routes.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService, advanceService portssvc.AdvanceReaderSvc) {
	h := newReportingHandler(reportingService, advanceService)

	rg.GET("/policy", h.getPolicy)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/exposure", h.getExposure)
	}
}

// getExposure godoc
// @Summary Outstanding advance exposure
// @Description Aggregates outstanding advance funds by aging bucket, cost center and employee
// @Tags reports
// @Produce json
// @Param asOf query string false "Report date (YYYY-MM-DD)" default(current date)
// @Success 200 {object} domain.ExposureSummary
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/exposure [get]
func (h *reportingHandler) getExposure(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	// zero asOf lets the service use its own clock
	var asOf time.Time
	if asOfStr := c.Query("asOf"); asOfStr != "" {
		parsed, err := time.Parse(dto.DateLayout, asOfStr)
		if err != nil {
			logger.Warn("Invalid asOf date format", slog.String("asOf", asOfStr), slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid date format. Use YYYY-MM-DD"})
			return
		}
		asOf = parsed
	}

	summary, err := h.reportingService.Exposure(c.Request.Context(), actor, asOf)
	if err != nil {
		respondWithError(c, err, "Failed to generate exposure report")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// getPolicy godoc
// @Summary Active spending policy
// @Tags policy
// @Produce json
// @Success 200 {object} domain.Policy
// @Failure 404 {object} dto.ErrorResponse "No active policy"
// @Security BearerAuth
// @Router /policy [get]
func (h *reportingHandler) getPolicy(c *gin.Context) {
	policy, err := h.advanceService.GetPolicy(c.Request.Context())
	if err != nil {
		respondWithError(c, err, "Failed to retrieve policy")
		return
	}
	c.JSON(http.StatusOK, policy)
}
