package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidState indicates that an operation's preconditions on the current status are not met.
var ErrInvalidState = errors.New("invalid state")

// ErrIllegalTransition indicates a status change that the workflow table does not permit.
var ErrIllegalTransition = errors.New("illegal transition")

// ErrStepNotFound indicates the approval step is absent or has already been decided.
var ErrStepNotFound = fmt.Errorf("approval step %w", ErrNotFound)

// ErrForbidden indicates the actor may not perform the operation.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// AppError wraps an infrastructure failure with a status hint and message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// IllegalTransitionError carries the rejected (from, to, role) triple.
type IllegalTransitionError struct {
	From string
	To   string
	Role string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("transition from %s to %s is not allowed for role %s", e.From, e.To, e.Role)
}

// Is lets errors.Is match ErrIllegalTransition.
func (e *IllegalTransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

// NewIllegalTransition builds an IllegalTransitionError.
func NewIllegalTransition(from, to, role string) error {
	return &IllegalTransitionError{From: from, To: to, Role: role}
}

// ValidationError describes one field that failed a structural rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is lets errors.Is match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationFailedError creates a field-less validation error.
func NewValidationFailedError(message string) error {
	return &ValidationError{Message: message}
}

// NewFieldValidationError creates a validation error for a named field.
func NewFieldValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ValidationErrors aggregates several field failures.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Is lets errors.Is match ErrValidation.
func (v ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Fields returns the failing field names in order.
func (v ValidationErrors) Fields() []string {
	fields := make([]string, len(v))
	for i, e := range v {
		fields[i] = e.Field
	}
	return fields
}

// NewInvalidStateError wraps ErrInvalidState with detail.
func NewInvalidStateError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

// NewNotFoundError wraps ErrNotFound with the entity description.
func NewNotFoundError(entity, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
}

// NewConflictError wraps ErrDuplicate with detail.
func NewConflictError(message string) error {
	return fmt.Errorf("%w: %s", ErrDuplicate, message)
}

// NewForbiddenError wraps ErrForbidden with detail.
func NewForbiddenError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// FieldErrors extracts field -> message pairs from a validation error, or nil.
func FieldErrors(err error) map[string]string {
	var many ValidationErrors
	if errors.As(err, &many) {
		out := make(map[string]string, len(many))
		for _, e := range many {
			if e.Field != "" {
				out[e.Field] = e.Message
			}
		}
		return out
	}
	var one *ValidationError
	if errors.As(err, &one) && one.Field != "" {
		return map[string]string{one.Field: one.Message}
	}
	return nil
}
