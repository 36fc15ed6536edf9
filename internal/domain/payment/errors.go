package payment

import (
	"errors"

	"github.com/jobboard/backend/internal/domain/shared"
)

// Reconciliation error taxonomy. None of these reach a gateway as a failure
// response; callers translate them into an acknowledgment.
var (
	ErrSignatureMismatch = errors.New("payment: callback signature mismatch")
	ErrUnknownOrder      = errors.New("payment: unknown order code")
	ErrProviderFailure   = errors.New("payment: provider reported failure")
	ErrAlreadyTerminal   = errors.New("payment: payment already in terminal state")
	ErrAmountMismatch    = errors.New("payment: callback amount does not match payment")
	ErrMalformedCallback = errors.New("payment: malformed callback payload")
)

// Gateway errors
var (
	ErrGatewayNotConfigured   = errors.New("payment: gateway not configured")
	ErrGatewayUnavailable     = errors.New("payment: gateway temporarily unavailable")
	ErrGatewayRequestFailed   = errors.New("payment: gateway request failed")
	ErrGatewayInvalidResponse = errors.New("payment: invalid gateway response")
)

// Initiation errors are domain errors so the HTTP layer can map them to 4xx
var (
	ErrInvalidMethod      = shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be momo or vnpay")
	ErrAmountBelowMinimum = shared.NewDomainError("AMOUNT_BELOW_MINIMUM", "Payment amount is below the configured minimum")
	ErrInvalidAmount      = shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	ErrInvalidOrderCode   = shared.NewDomainError("INVALID_ORDER_CODE", "Order code cannot be empty")
	ErrInvalidOwner       = shared.NewDomainError("INVALID_OWNER", "Payment owner cannot be empty")
	ErrPromotionInactive  = shared.NewDomainError("PROMOTION_INACTIVE", "Promotion is not available")
	ErrOrderCodeExhausted = shared.NewDomainError("ORDER_CODE_CONFLICT", "Could not allocate a unique order code")
	ErrPaymentNotFound    = shared.NewDomainError("NOT_FOUND", "Payment not found")
	ErrPromotionNotFound  = shared.NewDomainError("NOT_FOUND", "Promotion not found")
	ErrDuplicateOrderCode = shared.NewDomainError("ALREADY_EXISTS", "Order code already exists")
)
