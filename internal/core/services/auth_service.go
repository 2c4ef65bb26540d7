package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/cash_advance_app/internal/apperrors"
	"github.com/SscSPs/cash_advance_app/internal/core/domain"
	portssvc "github.com/SscSPs/cash_advance_app/internal/core/ports/services"
	"github.com/SscSPs/cash_advance_app/internal/platform/config"
	"github.com/SscSPs/cash_advance_app/internal/utils"
)

// tokenService implements the TokenSvcFacade for issuing bearer tokens.
type tokenService struct {
	BaseService
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg}
}

var _ portssvc.TokenSvcFacade = (*tokenService)(nil)

// GenerateAccessToken creates a new JWT access token for the given user and role.
func (s *tokenService) GenerateAccessToken(ctx context.Context, userID string, role domain.Role) (string, time.Time, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", time.Time{}, apperrors.NewFieldValidationError("userId", "is required")
	}
	if !role.IsValid() {
		return "", time.Time{}, apperrors.NewFieldValidationError("role", "must be one of [EMPLOYEE MANAGER FINANCE ADMIN]")
	}

	token, expiresAt, err := utils.GenerateJWT(userID, role, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate access token", slog.String("user_id", userID))
		return "", time.Time{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	s.LogInfo(ctx, "Access token issued", slog.String("user_id", userID), slog.String("role", string(role)))
	return token, expiresAt, nil
}
