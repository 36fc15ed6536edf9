package dto

import (
	"net/http"
	"strings"
)

// Error codes returned in ErrorInfo.Code. Format: ERR_<DESCRIPTION>.
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeRequestTooLarge is used when the body exceeds http.max_body_size
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"

	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
	ErrCodeInvalidState  = "ERR_INVALID_STATE"

	ErrCodeAmountBelowMinimum = "ERR_AMOUNT_BELOW_MINIMUM"
	ErrCodePromotionInactive  = "ERR_PROMOTION_INACTIVE"

	// ErrCodeGatewayNotConfigured is used when the requested method is not enabled
	ErrCodeGatewayNotConfigured = "ERR_GATEWAY_NOT_CONFIGURED"
	ErrCodeGatewayRejected      = "ERR_GATEWAY_REJECTED"
	ErrCodeGatewayUnavailable   = "ERR_GATEWAY_UNAVAILABLE"
)

var statusByCode = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,
	ErrCodeInvalidState:  http.StatusUnprocessableEntity,

	ErrCodeAmountBelowMinimum: http.StatusBadRequest,
	ErrCodePromotionInactive:  http.StatusBadRequest,

	ErrCodeGatewayNotConfigured: http.StatusBadRequest,
	ErrCodeGatewayRejected:      http.StatusBadGateway,
	ErrCodeGatewayUnavailable:   http.StatusBadGateway,
}

// GetHTTPStatus returns the status for an ERR_ code, or 500 for unknown codes.
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodes translates shared.DomainError codes. Any other INVALID_* code
// is treated as bad input.
var domainCodes = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConflict,
	"ORDER_CODE_CONFLICT":  ErrCodeConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
	"AMOUNT_BELOW_MINIMUM": ErrCodeAmountBelowMinimum,
	"PROMOTION_INACTIVE":   ErrCodePromotionInactive,
}

// NormalizeErrorCode maps a domain error code to its ERR_ form. ERR_ codes
// and unrecognised codes are returned unchanged.
func NormalizeErrorCode(code string) string {
	if mapped, ok := domainCodes[code]; ok {
		return mapped
	}
	if strings.HasPrefix(code, "INVALID_") {
		return ErrCodeInvalidInput
	}
	return code
}
