package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/cash_advance_app/internal/core/ports/services"
	"github.com/SscSPs/cash_advance_app/internal/dto"
	"github.com/SscSPs/cash_advance_app/internal/middleware"
	"github.com/SscSPs/cash_advance_app/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// AuthHandler issues development bearer tokens.
type AuthHandler struct {
	tokenService portssvc.TokenSvcFacade
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(ts portssvc.TokenSvcFacade) *AuthHandler {
	return &AuthHandler{tokenService: ts}
}

// registerAuthRoutes sets up the token route. It is never mounted in production.
func registerAuthRoutes(r *gin.Engine, cfg *config.Config, tokenService portssvc.TokenSvcFacade) error {
	if cfg.IsProduction {
		return nil
	}
	h := NewAuthHandler(tokenService)

	ipLimiter, err := middleware.NewIPRateLimiter(cfg.TokenRateLimit)
	if err != nil {
		return err
	}

	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/token", middleware.RateLimit(ipLimiter), h.IssueToken)
	}
	return nil
}

// IssueToken godoc
// @Summary Issue a development token
// @Description Returns a bearer token for the given user id and role. Available outside production only; it asserts identity, it does not verify it.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.IssueTokenRequest true "User and role"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/token [post]
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req dto.IssueTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	token, expiresAt, err := h.tokenService.GenerateAccessToken(c.Request.Context(), req.UserID, req.Role)
	if err != nil {
		respondWithError(c, err, "Failed to generate token")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Issued development token",
		slog.String("user_id", req.UserID), slog.String("role", string(req.Role)))
	c.JSON(http.StatusOK, dto.TokenResponse{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt})
}
