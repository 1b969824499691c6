package dto

import "net/http"

// API error codes returned in the error envelope. The domain layer
// raises its own short codes; NormalizeErrorCode translates those to
// this stable ERR_* vocabulary before they reach a client.
const (
	ErrCodeInternal     = "ERR_INTERNAL"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeRateLimited  = "ERR_RATE_LIMITED"

	// Conflict family. Concurrency conflicts come from optimistic
	// locking on aggregate versions.
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	// Business rule family. These map to 422 because the request was
	// well formed but the operation is not allowed in the current state.
	ErrCodeInvalidState       = "ERR_INVALID_STATE"
	ErrCodePaymentOutOfOrder  = "ERR_PAYMENT_OUT_OF_ORDER"
	ErrCodeAllocationOverflow = "ERR_ALLOCATION_OVERFLOW"
)

// errorCodeHTTPStatus maps normalized codes to HTTP status codes.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
	ErrCodePaymentOutOfOrder:  http.StatusUnprocessableEntity,
	ErrCodeAllocationOverflow: http.StatusUnprocessableEntity,
}

// LegacyErrorCodeMapping translates the short codes raised by the
// domain layer into the ERR_* codes exposed to clients. Codes missing
// from this table pass through NormalizeErrorCode unchanged.
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS": ErrCodeAlreadyExists,
	"INTERNAL_ERROR": ErrCodeInternal,

	"CONCURRENCY_CONFLICT":    ErrCodeConcurrencyConflict,
	"CONCURRENT_MODIFICATION": ErrCodeConcurrencyConflict,

	// Malformed values reported by value object constructors.
	"INVALID_INPUT":    ErrCodeValidation,
	"INVALID_AMOUNT":   ErrCodeValidation,
	"INVALID_RATE":     ErrCodeValidation,
	"INVALID_DATE":     ErrCodeValidation,
	"INVALID_PERIOD":   ErrCodeValidation,
	"INVALID_INTERVAL": ErrCodeValidation,
	"INVALID_NUMBER":   ErrCodeValidation,
	"INVALID_NAME":     ErrCodeValidation,
	"INVALID_KIND":     ErrCodeValidation,
	"INVALID_ORIGIN":   ErrCodeValidation,
	"INVALID_COMPANY":  ErrCodeValidation,
	"INVALID_PARTNER":  ErrCodeValidation,
	"INVALID_CONTRACT": ErrCodeValidation,
	"SCHEDULE_INVALID": ErrCodeValidation,

	// Operations rejected because of the aggregate's current state.
	"INVALID_STATE":            ErrCodeInvalidState,
	"INVALID_STATE_TRANSITION": ErrCodeInvalidState,
	"NOTHING_TO_CANCEL":        ErrCodeInvalidState,
	"SCHEDULE_HAS_PAYMENTS":    ErrCodeInvalidState,

	"PAYMENT_OUT_OF_ORDER": ErrCodePaymentOutOfOrder,

	"ALLOCATION_OVERFLOW":     ErrCodeAllocationOverflow,
	"AMOUNT_EXCEEDS_RESIDUAL": ErrCodeAllocationOverflow,
}

// NormalizeErrorCode maps a domain code to its client-facing ERR_* code.
// Codes that are already normalized, or unknown, are returned as is.
func NormalizeErrorCode(code string) string {
	if normalized, ok := LegacyErrorCodeMapping[code]; ok {
		return normalized
	}
	return code
}

// GetHTTPStatus returns the HTTP status for a normalized error code.
// Unknown codes are treated as server faults.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
