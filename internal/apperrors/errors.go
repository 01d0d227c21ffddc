package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidAmount covers malformed symbols, non-positive or out-of-range values and precision mismatches.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrUnauthorized indicates that the caller is not the principal required by the operation.
var ErrUnauthorized = errors.New("missing required authority")

// ErrInsufficientBalance indicates that a debit would drive a balance below zero.
var ErrInsufficientBalance = errors.New("overdrawn balance")

// ErrSupplyExceeded indicates that an issue would push supply past the maximum supply.
var ErrSupplyExceeded = errors.New("quantity exceeds available supply")

// ErrNonZeroBalance indicates an attempt to close a balance that still holds tokens.
var ErrNonZeroBalance = errors.New("cannot close because the balance is not zero")

// ErrSameAccount indicates that source and destination accounts are identical.
var ErrSameAccount = errors.New("source and destination accounts are the same")

// ErrInternal wraps failures of the underlying storage or runtime.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError. Code 500 errors also match ErrInternal.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrInternal) succeed for server-side AppErrors.
func (e *AppError) Is(target error) bool {
	return target == ErrInternal && e.Code >= http.StatusInternalServerError
}

// kinds is ordered: the first sentinel matched wins.
var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidAmount, "InvalidAmount"},
	{ErrDuplicate, "AlreadyExists"},
	{ErrNotFound, "NotFound"},
	{ErrUnauthorized, "Unauthorized"},
	{ErrInsufficientBalance, "InsufficientBalance"},
	{ErrSupplyExceeded, "SupplyExceeded"},
	{ErrNonZeroBalance, "NonZeroBalance"},
	{ErrSameAccount, "SameAccount"},
	{ErrValidation, "Validation"},
}

// Kind returns the taxonomy name of err, or "Internal" when err matches no sentinel.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}

// Wrap annotates a sentinel with a human readable detail while keeping errors.Is working.
func Wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
