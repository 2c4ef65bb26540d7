package services

import (
	"context"
	"time"

	"github.com/SscSPs/cash_advance_app/internal/core/domain"
)

// TokenSvcFacade issues bearer tokens. It asserts identity, it does not verify it.
type TokenSvcFacade interface {
	GenerateAccessToken(ctx context.Context, userID string, role domain.Role) (string, time.Time, error)
}
