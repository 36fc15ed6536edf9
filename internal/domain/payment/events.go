package payment

import (
	"github.com/google/uuid"

	"github.com/jobboard/backend/internal/domain/shared"
)

// Event type names
const (
	EventTypePaymentSucceeded = "PaymentSucceeded"
	EventTypePaymentFailed    = "PaymentFailed"
)

// PaymentSucceededEvent is raised on the pending to success edge, once per payment
type PaymentSucceededEvent struct {
	shared.EventHeader
	OrderCode     string    `json:"order_code"`
	AccountID     uuid.UUID `json:"account_id"`
	Method        Method    `json:"method"`
	Amount        int64     `json:"amount"`
	Points        int64     `json:"points"`
	GatewayTranID string    `json:"gateway_tran_id"`
}

// NewPaymentSucceededEvent creates a PaymentSucceededEvent for p
func NewPaymentSucceededEvent(p *Payment) *PaymentSucceededEvent {
	tranID := ""
	if p.GatewayTranID != nil {
		tranID = *p.GatewayTranID
	}
	return &PaymentSucceededEvent{
		EventHeader:   shared.NewEventHeader(EventTypePaymentSucceeded, AggregateTypePayment, p.ID),
		OrderCode:     p.OrderCode,
		AccountID:     p.AccountID,
		Method:        p.Method,
		Amount:        p.Amount,
		Points:        p.Points,
		GatewayTranID: tranID,
	}
}

// PaymentFailedEvent is raised on the pending to failed edge
type PaymentFailedEvent struct {
	shared.EventHeader
	OrderCode string    `json:"order_code"`
	AccountID uuid.UUID `json:"account_id"`
	Method    Method    `json:"method"`
	Reason    string    `json:"reason"`
}

// NewPaymentFailedEvent creates a PaymentFailedEvent for p
func NewPaymentFailedEvent(p *Payment, reason string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		EventHeader: shared.NewEventHeader(EventTypePaymentFailed, AggregateTypePayment, p.ID),
		OrderCode:   p.OrderCode,
		AccountID:   p.AccountID,
		Method:      p.Method,
		Reason:      reason,
	}
}
