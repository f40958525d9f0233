package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrConflict indicates that the request conflicts with the current state of
// a resource, e.g. reversing an entry that is already reversed.
var ErrConflict = errors.New("conflict with current state")

// ErrInvalidAmount indicates a money amount that is zero or negative where a
// positive amount is required, or a zero posting amount.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrUnbalancedEntry indicates journal postings that do not sum to zero.
var ErrUnbalancedEntry = errors.New("journal entry is not balanced")

// ErrAccountsNotFound indicates that one or more referenced ledger accounts
// do not exist.
var ErrAccountsNotFound = errors.New("accounts not found")

// ErrFetchFailed indicates that a compliance rule lookup failed; callers must
// not treat this as "no rule configured".
var ErrFetchFailed = errors.New("failed to fetch rules")

// ErrNoBalance indicates a payment plan request for a tenant with no
// outstanding balance.
var ErrNoBalance = errors.New("no outstanding balance")

// ErrExceedsBalance indicates a payment plan total above the tenant's
// outstanding balance.
var ErrExceedsBalance = errors.New("amount exceeds outstanding balance")

// AppError carries an HTTP-ish status code alongside the wrapped cause, used
// by the infrastructure layers for failures that are not domain conditions.
type AppError struct {
	Code    int
	Message string
	Err     error
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

// NewAppError wraps an underlying failure with a status code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
