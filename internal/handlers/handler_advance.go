package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/cash_advance_app/internal/core/ports/services"
	"github.com/SscSPs/cash_advance_app/internal/dto"
	"github.com/SscSPs/cash_advance_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// advanceHandler handles HTTP requests for advances and their lifecycle.
type advanceHandler struct {
	advanceService portssvc.AdvanceSvcFacade
}

// newAdvanceHandler creates a new advanceHandler.
func newAdvanceHandler(as portssvc.AdvanceSvcFacade) *advanceHandler {
	return &advanceHandler{
		advanceService: as,
	}
}

// registerAdvanceRoutes registers routes related to advances.
func registerAdvanceRoutes(rg *gin.RouterGroup, advanceService portssvc.AdvanceSvcFacade) {
	h := newAdvanceHandler(advanceService)

	advances := rg.Group("/advances")
	{
		advances.POST("", h.createAdvance)
		advances.GET("", h.listAdvances)
		advances.GET("/:advanceID", h.getAdvance)
		advances.GET("/:advanceID/transitions", h.listTransitions)

		advances.POST("/:advanceID/submit", h.submitForApproval)
		advances.POST("/:advanceID/approvals", h.recordApproval)
		advances.POST("/:advanceID/disbursement", h.recordDisbursement)
		advances.POST("/:advanceID/request-retirement", h.requestRetirement)
		advances.POST("/:advanceID/overdue", h.markOverdue)

		advances.GET("/:advanceID/retirement", h.getRetirement)
		advances.POST("/:advanceID/retirement", h.submitRetirement)
		advances.POST("/:advanceID/retirement/verify", h.verifyRetirement)
		advances.POST("/:advanceID/retirement/request-changes", h.requestChanges)

		advances.GET("/:advanceID/payments", h.listPayments)
		advances.POST("/:advanceID/payments", h.recordPayment)
		advances.GET("/:advanceID/audit", h.listAuditLogs)
	}
}

// createAdvance godoc
// @Summary Create a new advance
// @Description Creates a DRAFT advance for the caller. ADMIN may set employeeId to file on behalf of someone else.
// @Tags advances
// @Accept  json
// @Produce  json
// @Param   advance body dto.CreateAdvanceRequest true "Advance details"
// @Success 201 {object} dto.AdvanceWithItemsResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Failed to create advance"
// @Security BearerAuth
// @Router /advances [post]
func (h *advanceHandler) createAdvance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAdvanceRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	created, err := h.advanceService.CreateAdvance(c.Request.Context(), actor, req)
	if err != nil {
		respondWithError(c, err, "Failed to create advance")
		return
	}

	logger.Info("Advance created successfully", slog.String("advance_id", created.AdvanceID))
	c.JSON(http.StatusCreated, dto.ToAdvanceWithItemsResponse(created))
}

// listAdvances godoc
// @Summary List advances
// @Description Lists advances, newest first. Employees only ever see their own.
// @Tags advances
// @Produce  json
// @Param   status query string false "Filter by status"
// @Param   employeeId query string false "Filter by employee"
// @Param   q query string false "Search purpose and project"
// @Param   limit query int false "Page size (max 200)"
// @Param   offset query int false "Offset"
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListAdvancesResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Failed to list advances"
// @Security BearerAuth
// @Router /advances [get]
func (h *advanceHandler) listAdvances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAdvancesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid query parameters for ListAdvances", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}
	filter, err := params.ToFilter()
	if err != nil {
		logger.Warn("Invalid nextToken for ListAdvances", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid nextToken"})
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	advances, err := h.advanceService.ListAdvances(c.Request.Context(), actor, filter)
	if err != nil {
		respondWithError(c, err, "Failed to list advances")
		return
	}
	c.JSON(http.StatusOK, dto.ToListAdvancesResponse(advances, filter.Limit))
}

// getAdvance godoc
// @Summary Get an advance by ID
// @Description Retrieves an advance with its approval steps and line items
// @Tags advances
// @Produce  json
// @Param   advanceID path string true "Advance ID"
// @Success 200 {object} dto.AdvanceWithItemsResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Advance not found"
// @Failure 500 {object} dto.ErrorResponse "Failed to retrieve advance"
// @Security BearerAuth
// @Router /advances/{advanceID} [get]
func (h *advanceHandler) getAdvance(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	advance, err := h.advanceService.GetAdvance(c.Request.Context(), actor, c.Param("advanceID"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve advance")
		return
	}
	c.JSON(http.StatusOK, dto.ToAdvanceWithItemsResponse(advance))
}

// listTransitions godoc
// @Summary List available actions
// @Description Lists the transitions the caller's role may take from the advance's current status
// @Tags advances
// @Produce  json
// @Param   advanceID path string true "Advance ID"
// @Success 200 {array} dto.TransitionResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Advance not found"
// @Security BearerAuth
// @Router /advances/{advanceID}/transitions [get]
func (h *advanceHandler) listTransitions(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	transitions, err := h.advanceService.AvailableTransitions(c.Request.Context(), actor, c.Param("advanceID"))
	if err != nil {
		respondWithError(c, err, "Failed to list transitions")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransitionResponses(transitions))
}

// submitForApproval godoc
// @Summary Submit an advance for approval
// @Tags advances
// @Produce  json
// @Param   advanceID path string true "Advance ID"
// @Success 200 {object} dto.AdvanceResponse
// @Failure 403 {object} dto.ErrorResponse "Transition not allowed"
// @Failure 404 {object} dto.ErrorResponse "Advance not found"
// @Security BearerAuth
// @Router /advances/{advanceID}/submit [post]
func (h *advanceHandler) submitForApproval(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	advance, err := h.advanceService.SubmitForApproval(c.Request.Context(), actor, c.Param("advanceID"))
	if err != nil {
		respondWithError(c, err, "Failed to submit advance")
		return
	}
	c.JSON(http.StatusOK, dto.ToAdvanceResponse(advance))
}

// recordApproval godoc
// @Summary Record an approval decision
// @Description Records the MANAGER or FINANCE decision on a pending advance
// @Tags advances
// @Accept  json
// @Produce  json
// @Param   advanceID path string true "Advance ID"
// @Param   decision body dto.ApprovalDecisionRequest true "Decision"
// @Success 200 {object} dto.AdvanceResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 403 {object} dto.ErrorResponse "Transition not allowed"
// @Failure 404 {object} dto.ErrorResponse "Advance or approval step not found"
// @Failure 409 {object} dto.ErrorResponse "Advance is not awaiting a decision"
// @Security BearerAuth
// @Router /advances/{advanceID}/approvals [post]
func (h *advanceHandler) recordApproval(c *gin.Context) {
	var req dto.ApprovalDecisionRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	advance, err := h.advanceService.RecordApproval(c.Request.Context(), actor, c.Param("advanceID"), req)
	if err != nil {
		respondWithError(c, err, "Failed to record approval")
		return
	}
	c.JSON(http.StatusOK, dto.ToAdvanceResponse(advance))
}

// recordDisbursement godoc
// @Summary Record disbursement of an approved advance
// @Tags advances
// @Accept  json
// @Produce  json
// @Param   advanceID path string true "Advance ID"
// @Param   disbursement body dto.DisbursementRequest true "Disbursement details"
// @Success 200 {object} dto.AdvanceResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 403 {object} dto.ErrorResponse "Transition not allowed"
// @Failure 409 {object} dto.ErrorResponse "Advance is not approved"
// @Security BearerAuth
// @Router /advances/{advanceID}/disbursement [post]
func (h *advanceHandler) recordDisbursement(c *gin.Context) {
	var req dto.DisbursementRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	advance, err := h.advanceService.RecordDisbursement(c.Request.Context(), actor, c.Param("advanceID"), req)
	if err != nil {
		respondWithError(c, err, "Failed to record disbursement")
		return
	}
	c.JSON(http.StatusOK, dto.ToAdvanceResponse(advance))
}

// requestRetirement godoc
// @Summary Ask the employee to retire a disbursed advance
// @Tags advances
// @Accept  json
// @Produce  json
// @Param   advanceID path string true "Advance ID"
// @Param   body body dto.TransitionCommentRequest false "Optional comment"
// @Success 200 {object} dto.AdvanceResponse
// @Failure 403 {object} dto.ErrorResponse "Transition not allowed"
// @Security BearerAuth
// @Router /advances/{advanceID}/request-retirement [post]
func (h *advanceHandler) requestRetirement(c *gin.Context) {
	var req dto.TransitionCommentRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	advance, err := h.advanceService.RequestRetirement(c.Request.Context(), actor, c.Param("advanceID"), req.Comment)
	if err != nil {
		respondWithError(c, err, "Failed to request retirement")
		return
	}
	c.JSON(http.StatusOK, dto.ToAdvanceResponse(advance))
}

// markOverdue godoc
// @Summary Mark a disbursed advance overdue
// @Tags advances
// @Accept  json
// @Produce  json
// @Param   advanceID path string true "Advance ID"
// @Param   body body dto.TransitionCommentRequest false "Optional comment"
// @Success 200 {object} dto.AdvanceResponse
// @Failure 403 {object} dto.ErrorResponse "Transition not allowed"
// @Security BearerAuth
// @Router /advances/{advanceID}/overdue [post]
func (h *advanceHandler) markOverdue(c *gin.Context) {
	var req dto.TransitionCommentRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	advance, err := h.advanceService.MarkOverdue(c.Request.Context(), actor, c.Param("advanceID"), req.Comment)
	if err != nil {
		respondWithError(c, err, "Failed to mark advance overdue")
		return
	}
	c.JSON(http.StatusOK, dto.ToAdvanceResponse(advance))
}
