package payment

import (
	"context"

	"github.com/google/uuid"

	"github.com/jobboard/backend/internal/domain/shared"
)

// SettleFunc mutates a payment loaded under lock. Returning an error rolls back.
type SettleFunc func(p *Payment) error

// Repository persists payments
type Repository interface {
	// Create inserts a pending payment. A duplicate order code yields ErrDuplicateOrderCode.
	Create(ctx context.Context, p *Payment) error

	// FindByOrderCode returns the payment with the given order code
	FindByOrderCode(ctx context.Context, orderCode string) (*Payment, error)

	// FindByOrderCodeForAccount returns the payment only if accountID owns it
	FindByOrderCodeForAccount(ctx context.Context, accountID uuid.UUID, orderCode string) (*Payment, error)

	// ListByAccount returns the account's payments, newest first
	ListByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]Payment, int64, error)

	// Settle loads the payment by order code under a row lock, applies fn, and
	// persists the status, meta and the owner's point credit (CreditDue) in the
	// same transaction. It returns ErrUnknownOrder when no payment matches.
	Settle(ctx context.Context, orderCode string, fn SettleFunc) (*Payment, error)
}

// PromotionRepository reads point promotions
type PromotionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Promotion, error)
	ListActive(ctx context.Context) ([]Promotion, error)
}
