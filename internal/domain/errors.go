package domain

import "fmt"

// Error types for consistent error handling across the API.

// ErrNotFound indicates a resource was not found. It is also surfaced when a
// caller has no role on a budget at all, so that existence is not leaked to
// unauthorized actors.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates a validation error (bad input), including
// malformed amounts and unrecognized transaction types.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnsupportedCurrency indicates a currency code outside the supported set.
type ErrUnsupportedCurrency struct {
	Code string
}

func (e *ErrUnsupportedCurrency) Error() string {
	return fmt.Sprintf("unsupported currency: %s", e.Code)
}

// ErrDuplicate indicates a uniqueness violation: a second budget for the same
// (owner, category, month, year), or a second share for the same grantee.
// The storage-level unique constraint is the authoritative guard; pre-checks
// are an optimization only.
type ErrDuplicate struct {
	Resource string
	Key      string
}

func (e *ErrDuplicate) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Resource, e.Key)
}

// ErrSelfShare indicates an attempt to share a budget with its own owner.
type ErrSelfShare struct{}

func (e *ErrSelfShare) Error() string {
	return "cannot share a budget with yourself"
}

// ErrForbidden indicates the actor lacks the role required for the operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrConflict indicates the operation conflicts with existing state
// (e.g. deleting a category that still has transactions).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}
