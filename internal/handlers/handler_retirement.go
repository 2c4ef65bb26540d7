package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/cash_advance_app/internal/dto"
	"github.com/SscSPs/cash_advance_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// getRetirement godoc
// @Summary Get the retirement summary of an advance
// @Tags retirement
// @Produce  json
// @Param   advanceID path string true "Advance ID"
// @Success 200 {object} domain.RetirementSummary
// @Failure 404 {object} dto.ErrorResponse "No retirement submitted"
// @Security BearerAuth
// @Router /advances/{advanceID}/retirement [get]
func (h *advanceHandler) getRetirement(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	summary, err := h.advanceService.GetRetirement(c.Request.Context(), actor, c.Param("advanceID"))
	if err != nil {
		respondWithError(c, err, "Failed to retrieve retirement")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// submitRetirement godoc
// @Summary Submit actual spend for a disbursed advance
// @Description Evaluates each item against the active policy, reconciles against the requested amount and moves the advance to UNDER_REVIEW.
// @Tags retirement
// @Accept  json
// @Produce  json
// @Param   advanceID path string true "Advance ID"
// @Param   retirement body dto.SubmitRetirementRequest true "Retirement items"
// @Success 200 {object} dto.RetirementResponse
// @Failure 400 {object} dto.ErrorResponse "Validation error, including a missing override reason"
// @Failure 403 {object} dto.ErrorResponse "Transition not allowed"
// @Failure 404 {object} dto.ErrorResponse "Advance not found"
// @Security BearerAuth
// @Router /advances/{advanceID}/retirement [post]
func (h *advanceHandler) submitRetirement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SubmitRetirementRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	detail, err := h.advanceService.SubmitRetirement(c.Request.Context(), actor, c.Param("advanceID"), req)
	if err != nil {
		respondWithError(c, err, "Failed to submit retirement")
		return
	}
	logger.Info("Retirement submitted",
		slog.String("advance_id", detail.Advance.AdvanceID),
		slog.String("total_spent", detail.Summary.TotalSpent.String()))
	c.JSON(http.StatusOK, dto.ToRetirementResponse(detail))
}

// verifyRetirement godoc
// @Summary Verify or reject a submitted retirement
// @Tags retirement
// @Accept  json
// @Produce  json
// @Param   advanceID path string true "Advance ID"
// @Param   decision body dto.VerifyRetirementRequest true "Finance decision"
// @Success 200 {object} dto.RetirementResponse
// @Failure 403 {object} dto.ErrorResponse "Transition not allowed"
// @Failure 409 {object} dto.ErrorResponse "Advance is not under review"
// @Security BearerAuth
// @Router /advances/{advanceID}/retirement/verify [post]
func (h *advanceHandler) verifyRetirement(c *gin.Context) {
	var req dto.VerifyRetirementRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	detail, err := h.advanceService.VerifyRetirement(c.Request.Context(), actor, c.Param("advanceID"), req)
	if err != nil {
		respondWithError(c, err, "Failed to verify retirement")
		return
	}
	c.JSON(http.StatusOK, dto.ToRetirementResponse(detail))
}

// requestChanges godoc
// @Summary Send a retirement back to the employee
// @Tags retirement
// @Accept  json
// @Produce  json
// @Param   advanceID path string true "Advance ID"
// @Param   body body dto.TransitionCommentRequest false "Notes for the employee"
// @Success 200 {object} dto.RetirementResponse
// @Failure 403 {object} dto.ErrorResponse "Transition not allowed"
// @Failure 409 {object} dto.ErrorResponse "Advance is not under review"
// @Security BearerAuth
// @Router /advances/{advanceID}/retirement/request-changes [post]
func (h *advanceHandler) requestChanges(c *gin.Context) {
	var req dto.TransitionCommentRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	detail, err := h.advanceService.RequestChanges(c.Request.Context(), actor, c.Param("advanceID"), req.Comment)
	if err != nil {
		respondWithError(c, err, "Failed to request changes")
		return
	}
	c.JSON(http.StatusOK, dto.ToRetirementResponse(detail))
}
