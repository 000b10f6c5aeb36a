package dto

import "net/http"

// General error codes not produced by the domain layer
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests and binding failures
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeNotFound mirrors the domain NOT_FOUND code for handler-built errors
	ErrCodeNotFound = "NOT_FOUND"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Domain codes pass through to API clients unchanged; this table only
// decides the status line.
var ErrorCodeHTTPStatus = map[string]int{
	// Lookup failures
	"NOT_FOUND":          http.StatusNotFound,
	"LOCATION_NOT_FOUND": http.StatusNotFound,

	// Malformed or self-contradictory input
	"BAD_REQUEST":      http.StatusBadRequest,
	"INVALID_INPUT":    http.StatusBadRequest,
	"INVALID_QUANTITY": http.StatusBadRequest,
	"SAME_LOCATION":    http.StatusBadRequest,

	// Business rule rejections on otherwise well-formed requests
	"OUT_OF_STOCK":      http.StatusUnprocessableEntity,
	"CAPACITY_EXCEEDED": http.StatusUnprocessableEntity,

	// Conflicts with existing state
	"ALREADY_EXISTS":         http.StatusConflict,
	"DUPLICATE_REQUEST":      http.StatusConflict,
	"INVALID_STATE":          http.StatusConflict,
	"CONCURRENCY_CONFLICT":   http.StatusConflict,
	"OPTIMISTIC_LOCK_FAILED": http.StatusConflict,

	"INTERNAL_ERROR": http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes default to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
