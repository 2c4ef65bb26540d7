package handlers

import (
	"net/http"

	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	"github.com/SscSPs/cash_advance_app/internal/dto"
	"github.com/gin-gonic/gin"
)

// listPayments godoc
// @Summary List payments of an advance
// @Tags payments
// @Produce  json
// @Param   advanceID path string true "Advance ID"
// @Success 200 {object} dto.ListPaymentsResponse
// @Failure 404 {object} dto.ErrorResponse "Advance not found"
// @Security BearerAuth
// @Router /advances/{advanceID}/payments [get]
func (h *advanceHandler) listPayments(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	payments, err := h.advanceService.ListPayments(c.Request.Context(), actor, c.Param("advanceID"))
	if err != nil {
		respondWithError(c, err, "Failed to list payments")
		return
	}
	if payments == nil {
		payments = []domain.Payment{}
	}
	c.JSON(http.StatusOK, dto.ListPaymentsResponse{Payments: payments})
}

// recordPayment godoc
// @Summary Record a payment against an advance
// @Description Appends a refund (IN) or top-up (OUT). Finance and admin only.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   advanceID path string true "Advance ID"
// @Param   payment body dto.RecordPaymentRequest true "Payment"
// @Success 201 {object} domain.Payment
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Advance not found"
// @Security BearerAuth
// @Router /advances/{advanceID}/payments [post]
func (h *advanceHandler) recordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	payment, err := h.advanceService.RecordPayment(c.Request.Context(), actor, c.Param("advanceID"), req)
	if err != nil {
		respondWithError(c, err, "Failed to record payment")
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// listAuditLogs godoc
// @Summary List the audit trail of an advance
// @Tags audit
// @Produce  json
// @Param   advanceID path string true "Advance ID"
// @Param   entityType query string false "ADVANCE, RETIREMENT or PAYMENT"
// @Success 200 {object} dto.ListAuditLogsResponse
// @Failure 404 {object} dto.ErrorResponse "Advance not found"
// @Security BearerAuth
// @Router /advances/{advanceID}/audit [get]
func (h *advanceHandler) listAuditLogs(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	entityType := domain.EntityType(c.Query("entityType"))
	entries, err := h.advanceService.ListAuditLogs(c.Request.Context(), actor, c.Param("advanceID"), entityType)
	if err != nil {
		respondWithError(c, err, "Failed to list audit logs")
		return
	}
	if entries == nil {
		entries = []domain.AuditLogEntry{}
	}
	c.JSON(http.StatusOK, dto.ListAuditLogsResponse{Entries: entries})
}
