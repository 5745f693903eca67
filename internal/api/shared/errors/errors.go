package errors

import (
	"errors"
	"net/http"

	"github.com/hotpotspot/franchise-ledger/internal/domain"
	"github.com/hotpotspot/franchise-ledger/internal/ledger"
)

// ErrorCode is a stable, machine-readable error identifier.
type ErrorCode string

const (
	CodeBadRequest    ErrorCode = "BAD_REQUEST"
	CodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeConflict      ErrorCode = "CONFLICT"
	CodeGone          ErrorCode = "GONE"
	CodeLimitExceeded ErrorCode = "LIMIT_EXCEEDED"
	CodeUnprocessable ErrorCode = "UNPROCESSABLE"
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
)

// APIError is the JSON error envelope returned by every endpoint.
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// NewBadRequestError creates a 400 error envelope.
func NewBadRequestError(message, detail string) *APIError {
	return &APIError{Code: CodeBadRequest, Message: message, Detail: detail}
}

// NewUnauthorizedError creates a 401 error envelope.
func NewUnauthorizedError(message, detail string) *APIError {
	return &APIError{Code: CodeUnauthorized, Message: message, Detail: detail}
}

// NewNotFoundError creates a 404 error envelope.
func NewNotFoundError(message, detail string) *APIError {
	return &APIError{Code: CodeNotFound, Message: message, Detail: detail}
}

// NewConflictError creates a 409 error envelope.
func NewConflictError(message, detail string) *APIError {
	return &APIError{Code: CodeConflict, Message: message, Detail: detail}
}

// NewInternalError creates a 500 error envelope.
func NewInternalError(message, detail string) *APIError {
	return &APIError{Code: CodeInternal, Message: message, Detail: detail}
}

// StatusAndEnvelope maps a domain error to its HTTP status and envelope.
// Unrecognized errors map to 500 with the detail withheld.
func StatusAndEnvelope(err error) (int, *APIError) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, ledger.ErrTxNotWritable):
		return http.StatusBadRequest, &APIError{Code: CodeBadRequest, Message: err.Error()}

	case errors.Is(err, domain.ErrPOSNotWhitelisted),
		errors.Is(err, domain.ErrInvalidActivationCode),
		errors.Is(err, domain.ErrInvalidVerificationCode),
		errors.Is(err, domain.ErrPhoneNotVerified):
		return http.StatusUnauthorized, &APIError{Code: CodeUnauthorized, Message: err.Error()}

	case errors.Is(err, domain.ErrCheckNotFound),
		errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrHolderNotFound),
		errors.Is(err, domain.ErrPhoneNotRegistered):
		return http.StatusNotFound, &APIError{Code: CodeNotFound, Message: err.Error()}

	case errors.Is(err, domain.ErrCheckAlreadyClaimed),
		errors.Is(err, domain.ErrCheckAlreadyActivated),
		errors.Is(err, domain.ErrNodeExists),
		errors.Is(err, domain.ErrValidatorExists),
		errors.Is(err, domain.ErrPhoneAlreadyRegistered),
		errors.Is(err, domain.ErrAccountNotSleeping),
		errors.Is(err, domain.ErrAccountNotActive):
		return http.StatusConflict, &APIError{Code: CodeConflict, Message: err.Error()}

	case errors.Is(err, domain.ErrCheckExpired):
		return http.StatusGone, &APIError{Code: CodeGone, Message: err.Error()}

	case errors.Is(err, domain.ErrOwnershipLimitExceeded),
		errors.Is(err, domain.ErrInsufficientStake),
		errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity, &APIError{Code: CodeLimitExceeded, Message: err.Error()}

	case errors.Is(err, domain.ErrNoValidators),
		errors.Is(err, domain.ErrNoPendingTransactions),
		errors.Is(err, domain.ErrNothingToDistribute):
		return http.StatusUnprocessableEntity, &APIError{Code: CodeUnprocessable, Message: err.Error()}

	default:
		return http.StatusInternalServerError, &APIError{Code: CodeInternal, Message: "internal error"}
	}
}
