package dto

import "net/http"

// Error code constants, format ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation and input error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeAccountDeactivated = "ERR_ACCOUNT_DEACTIVATED"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeUnsupported  = "ERR_UNSUPPORTED"
	ErrCodeStorage      = "ERR_STORAGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeAccountDeactivated: http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeUnsupported:  http.StatusUnprocessableEntity,
	ErrCodeStorage:      http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to wire codes
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VALIDATION_FAILED":    ErrCodeValidation,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"INTERNAL_ERROR":       ErrCodeInternal,

	"INVALID_CREDENTIALS":  ErrCodeInvalidCredentials,
	"ACCOUNT_DEACTIVATED":  ErrCodeAccountDeactivated,
	"INVALID_EMAIL":        ErrCodeValidation,
	"INVALID_FULL_NAME":    ErrCodeValidation,
	"INVALID_PASSWORD":     ErrCodeValidation,
	"INVALID_ROLE":         ErrCodeValidation,
	"INVALID_CONTACT_TYPE": ErrCodeValidation,
	"INVALID_DEAL_STAGE":   ErrCodeValidation,

	"INVALID_PROJECT_STATUS": ErrCodeInvalidState,
	"INVALID_TASK_STATUS":    ErrCodeInvalidState,
	"INVALID_PRIORITY":       ErrCodeValidation,
	"INVALID_DRAG":           ErrCodeInvalidState,
	"INVALID_CONTENT_TYPE":   ErrCodeValidation,

	"AVATAR_NOT_UPLOADED":        ErrCodeInvalidState,
	"UPLOAD_URL_FAILED":          ErrCodeStorage,
	"DOWNLOAD_URL_FAILED":        ErrCodeStorage,
	"UNSUPPORTED_AUTH_OPERATION": ErrCodeUnsupported,
}

// NormalizeErrorCode converts a domain error code to the wire format.
// Codes with no mapping pass through as-is.
func NormalizeErrorCode(code string) string {
	if wireCode, ok := domainErrorCodeMapping[code]; ok {
		return wireCode
	}
	return code
}
