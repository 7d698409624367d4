package services

import (
	"errors"
	"fmt"

	"github.com/papersetu/qgen-service/internal/validator"
)

// ValidationErrors re-exports the validator type so handlers can match
// it without importing two packages.
type ValidationErrors = validator.ValidationErrors

// Not-found sentinels
var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrConceptNotFound  = errors.New("concept not found")
	ErrDraftNotFound    = errors.New("draft not found")
	ErrSectionNotFound  = errors.New("draft section not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrUserNotFound     = errors.New("user not found")
)

// Generation pipeline errors
var (
	// ErrInsufficientCredits aborts a run before any external call.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrTotalGenerationFailure means every batch failed permanently;
	// nothing was persisted and the reservation is fully refunded.
	ErrTotalGenerationFailure = errors.New("all generation batches failed")
)

// PersistenceError wraps a commit-phase failure. Nothing was written
// (the transaction rolled back) and credits were refunded, so the
// caller may safely retry with the same idempotency token.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// PermissionError reports an authorization failure on a resource.
type PermissionError struct {
	Resource string
	Action   string
	Reason   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s %s: %s", e.Action, e.Resource, e.Reason)
}

func NewPermissionError(resource, action, reason string) *PermissionError {
	return &PermissionError{Resource: resource, Action: action, Reason: reason}
}
