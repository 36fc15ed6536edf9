// Package notification holds in-app notifications shown to account owners.
package notification

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jobboard/backend/internal/domain/shared"
)

// Kind classifies a notification
type Kind string

const (
	KindPaymentSucceeded Kind = "payment_succeeded"
	KindPaymentFailed    Kind = "payment_failed"
)

var (
	ErrInvalidRecipient = shared.NewDomainError("INVALID_RECIPIENT", "Notification recipient is required")
	ErrEmptyTitle       = shared.NewDomainError("INVALID_TITLE", "Notification title cannot be empty")
)

// Notification is a message addressed to one account
type Notification struct {
	shared.BaseEntity
	AccountID uuid.UUID
	Kind      Kind
	Title     string
	Body      string
	// Reference points at the object the notification is about, e.g. an order code
	Reference string
	ReadAt    *time.Time
}

// New creates an unread notification
func New(accountID uuid.UUID, kind Kind, title, body, reference string) (*Notification, error) {
	if accountID == uuid.Nil {
		return nil, ErrInvalidRecipient
	}
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}
	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		AccountID:  accountID,
		Kind:       kind,
		Title:      title,
		Body:       body,
		Reference:  reference,
	}, nil
}

// IsRead reports whether the owner has seen the notification
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// Repository persists notifications
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]Notification, int64, error)
}
