package payment

import (
	"context"
	"strings"
)

// CheckoutRequest carries what a gateway needs to build a checkout for a payment
type CheckoutRequest struct {
	OrderCode string
	Amount    int64
	OrderInfo string
	ClientIP  string
}

// Validate validates the checkout request
func (r *CheckoutRequest) Validate() error {
	if strings.TrimSpace(r.OrderCode) == "" {
		return ErrInvalidOrderCode
	}
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// CheckoutResponse is the gateway's answer to a checkout request
type CheckoutResponse struct {
	Method      Method
	RedirectURL string
	Deeplink    string
	RequestID   string
}

// Callback is a parsed gateway callback.
// Verified is false when the signature is missing or does not match; in that
// case Outcome is always OutcomeFailure.
type Callback struct {
	Method        Method
	OrderCode     string
	Verified      bool
	Outcome       Outcome
	ProviderCode  string
	Message       string
	GatewayTranID string
	// Amount is the amount the gateway reports in VND, zero when absent
	Amount  int64
	Payload map[string]string
}

// Gateway is the port every payment provider adapter implements
type Gateway interface {
	// Method returns the payment method this gateway serves
	Method() Method

	// CreateCheckout builds the provider redirect for a pending payment
	CreateCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error)

	// ParseCallback authenticates and parses callback parameters.
	// It only fails with ErrMalformedCallback when no order code can be found;
	// a bad signature is reported through Callback.Verified.
	ParseCallback(ctx context.Context, params map[string]string) (*Callback, error)
}
