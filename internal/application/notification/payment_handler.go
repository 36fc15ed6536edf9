package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jobboard/backend/internal/domain/notification"
	"github.com/jobboard/backend/internal/domain/payment"
	"github.com/jobboard/backend/internal/domain/shared"
)

// PaymentOutcomeHandler writes an in-app notification for every settled payment
type PaymentOutcomeHandler struct {
	repo   notification.Repository
	logger *zap.Logger
}

// NewPaymentOutcomeHandler creates a handler for payment outcome events
func NewPaymentOutcomeHandler(repo notification.Repository, logger *zap.Logger) *PaymentOutcomeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentOutcomeHandler{repo: repo, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *PaymentOutcomeHandler) EventTypes() []string {
	return []string{payment.EventTypePaymentSucceeded, payment.EventTypePaymentFailed}
}

// Handle persists one notification for the payment owner
func (h *PaymentOutcomeHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		n   *notification.Notification
		err error
	)

	switch e := event.(type) {
	case *payment.PaymentSucceededEvent:
		n, err = notification.New(
			e.AccountID,
			notification.KindPaymentSucceeded,
			fmt.Sprintf("Payment %s succeeded", e.OrderCode),
			fmt.Sprintf("Your %s payment of %d VND was confirmed. +%d points were added to your balance.",
				methodLabel(e.Method), e.Amount, e.Points),
			e.OrderCode,
		)
	case *payment.PaymentFailedEvent:
		n, err = notification.New(
			e.AccountID,
			notification.KindPaymentFailed,
			fmt.Sprintf("Payment %s failed", e.OrderCode),
			fmt.Sprintf("Your %s payment could not be completed. No points were charged.", methodLabel(e.Method)),
			e.OrderCode,
		)
	default:
		h.logger.Error("unexpected event type", zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	if err != nil {
		return fmt.Errorf("failed to build notification: %w", err)
	}

	if err := h.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}

	h.logger.Info("payment notification created",
		zap.String("event_type", event.EventType()),
		zap.String("account_id", n.AccountID.String()),
		zap.String("order_code", n.Reference),
	)
	return nil
}

// IdempotencyKey keys payment outcome events by order code so a replayed
// event for the same payment notifies once
func IdempotencyKey(event shared.DomainEvent) string {
	switch e := event.(type) {
	case *payment.PaymentSucceededEvent:
		return "payment-succeeded:" + e.OrderCode
	case *payment.PaymentFailedEvent:
		return "payment-failed:" + e.OrderCode
	}
	return event.EventID().String()
}

func methodLabel(m payment.Method) string {
	switch m {
	case payment.MethodMoMo:
		return "MoMo"
	case payment.MethodVNPay:
		return "VNPay"
	}
	return string(m)
}

var _ shared.EventHandler = (*PaymentOutcomeHandler)(nil)
