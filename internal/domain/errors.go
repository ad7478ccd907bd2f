package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a checkout failure for HTTP mapping and operator
// messaging. validation errors are bad input, conflict errors mean the world
// changed between validation and commit, persistence errors mean the backing
// store (or a downstream collaborator) failed mid-commit.
type ErrorKind string

const (
	KindValidation  ErrorKind = "validation"
	KindConflict    ErrorKind = "conflict"
	KindPersistence ErrorKind = "persistence"
)

// Error is the structured error returned by the sale engine.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ValidationError builds a validation-kind error.
func ValidationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

// ConflictError builds a conflict-kind error.
func ConflictError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Detail: fmt.Sprintf(format, args...)}
}

// PersistenceError wraps a store failure. The detail shown to operators is
// generic on purpose: nothing was charged.
func PersistenceError(err error) *Error {
	return &Error{Kind: KindPersistence, Detail: "transaction failed, nothing was charged", Err: err}
}

// KindOf extracts the error kind, defaulting to persistence for unclassified
// errors so that unknown failures never look retryable-by-operator.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindPersistence
}

// Sentinel errors shared between services and repositories.
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrSessionNotFound  = errors.New("cart session not found")
	ErrDuplicateLine    = errors.New("product already in cart")
	ErrLineNotFound     = errors.New("product not in cart")
	ErrEmptyCart        = errors.New("cart is empty, nothing to checkout")

	ErrVoucherNotFound        = errors.New("voucher not found")
	ErrVoucherExpired         = errors.New("voucher expired")
	ErrVoucherAlreadyRedeemed = errors.New("voucher already redeemed")
	ErrVoucherCancelled       = errors.New("voucher cancelled")

	ErrInsufficientStock = errors.New("insufficient stock")
)
