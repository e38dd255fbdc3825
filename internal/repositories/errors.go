package repositories

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"member-info-api/internal/models"
)

// Store error codes shared by every backend. They follow the DynamoDB
// exception names so callers see the same codes whichever store is wired.
const (
	CodeConditionalCheckFailed = "ConditionalCheckFailedException"
	CodeValidation             = "ValidationException"
	CodeInternal               = "InternalServerError"
	CodeRequestCanceled        = "RequestCanceled"
)

// ErrConditionalCheckFailed is returned when a conditional write's precondition fails
var ErrConditionalCheckFailed = errors.New("the conditional request failed")

// StoreError is a failed store call. It carries the HTTP-style status and the
// machine-readable code reported by the store so they can be passed through.
type StoreError struct {
	Op         string // Operation that failed (e.g. "Put", "Scan")
	StatusCode int
	Code       string
	Err        error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed (%d %s): %v", e.Op, e.StatusCode, e.Code, e.Err)
}

// Unwrap returns the underlying error
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new store error
func NewStoreError(op string, statusCode int, code string, err error) *StoreError {
	return &StoreError{
		Op:         op,
		StatusCode: statusCode,
		Code:       code,
		Err:        err,
	}
}

// NewConditionalCheckError creates the error a failed conditional write returns
func NewConditionalCheckError(op string) *StoreError {
	return NewStoreError(op, http.StatusBadRequest, CodeConditionalCheckFailed, ErrConditionalCheckFailed)
}

// IsConditionalCheckFailed returns true if the error is a failed write precondition
func IsConditionalCheckFailed(err error) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code == CodeConditionalCheckFailed
	}
	return errors.Is(err, ErrConditionalCheckFailed)
}

// AsStoreError converts any error into a StoreError. Errors that did not come
// from the store (cancellation, transport failures) get a 500 status.
func AsStoreError(op string, err error) *StoreError {
	if err == nil {
		return nil
	}

	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewStoreError(op, http.StatusInternalServerError, CodeRequestCanceled, err)
	}

	return NewStoreError(op, http.StatusInternalServerError, CodeInternal, err)
}

// ValidateKey rejects records a key-value table cannot store
func ValidateKey(op string, member models.Member) (string, error) {
	email, ok := member.Email()
	if !ok {
		email = ""
	}
	if err := ValidateEmailKey(op, email); err != nil {
		return "", err
	}
	return email, nil
}

// ValidateEmailKey rejects an empty key value, as DynamoDB does for every
// item operation
func ValidateEmailKey(op, email string) error {
	if email == "" {
		return NewStoreError(op, http.StatusBadRequest, CodeValidation,
			errors.New("one of the required keys was not given a value"))
	}
	return nil
}

// ValidateUpdateAttribute rejects attribute names no table accepts in an
// update: an empty name or the key attribute itself.
func ValidateUpdateAttribute(op, attribute string) error {
	switch attribute {
	case "":
		return NewStoreError(op, http.StatusBadRequest, CodeValidation,
			errors.New("invalid UpdateExpression: attribute name is empty"))
	case models.AttrEmail:
		return NewStoreError(op, http.StatusBadRequest, CodeValidation,
			errors.New("cannot update attribute email: this attribute is part of the key"))
	}
	return nil
}
