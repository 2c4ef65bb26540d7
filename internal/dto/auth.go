package dto

import (
	"time"

	"github.com/SscSPs/cash_advance_app/internal/core/domain"
)

// IssueTokenRequest asks the development token endpoint for a bearer token.
type IssueTokenRequest struct {
	UserID string      `json:"userId" binding:"required,max=128"`
	Role   domain.Role `json:"role" binding:"required,oneof=EMPLOYEE MANAGER FINANCE ADMIN"`
}

// TokenResponse is returned by the token endpoint.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
