package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jobboard/backend/internal/domain/shared"
)

// AggregateTypePayment is the aggregate type name used on domain events
const AggregateTypePayment = "Payment"

// Method is the payment gateway a payment is made through
type Method string

const (
	MethodMoMo  Method = "momo"
	MethodVNPay Method = "vnpay"
)

// IsValid checks if the method is a supported gateway
func (m Method) IsValid() bool {
	switch m {
	case MethodMoMo, MethodVNPay:
		return true
	}
	return false
}

// String returns the string representation of Method
func (m Method) String() string {
	return string(m)
}

// ParseMethod parses a method name, case-insensitively
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", ErrInvalidMethod
	}
	return m, nil
}

// Status represents the lifecycle state of a payment
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true once the payment has been decided
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Payment is one purchase attempt of points through a gateway.
// Status moves from pending to exactly one terminal state and never back.
type Payment struct {
	shared.BaseAggregateRoot
	OrderCode     string
	AccountID     uuid.UUID
	PromotionID   *uuid.UUID
	Amount        int64
	Points        int64
	Method        Method
	Status        Status
	GatewayTranID *string
	Meta          Meta
	PaidAt        *time.Time

	creditDue int64
}

// NewPayment creates a pending payment
func NewPayment(accountID uuid.UUID, orderCode string, amount int64, method Method, points int64, promotionID *uuid.UUID) (*Payment, error) {
	if accountID == uuid.Nil {
		return nil, ErrInvalidOwner
	}
	if strings.TrimSpace(orderCode) == "" {
		return nil, ErrInvalidOrderCode
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !method.IsValid() {
		return nil, ErrInvalidMethod
	}
	if points < 0 {
		return nil, shared.NewDomainError("INVALID_POINTS", "Points cannot be negative")
	}

	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderCode:         orderCode,
		AccountID:         accountID,
		PromotionID:       promotionID,
		Amount:            amount,
		Points:            points,
		Method:            method,
		Status:            StatusPending,
		Meta:              Meta{},
	}, nil
}

// RecordCallback merges a raw callback payload into the audit meta.
// Earlier entries are never replaced.
func (p *Payment) RecordCallback(channel Channel, payload map[string]string, receivedAt time.Time) string {
	if p.Meta == nil {
		p.Meta = Meta{}
	}
	return p.Meta.Append(fmt.Sprintf("%s_%s", p.Method, channel), payload, receivedAt)
}

// RecordUnverifiedCallback keeps a payload that failed signature checks.
// Past the per-channel cap it is dropped and "" is returned.
func (p *Payment) RecordUnverifiedCallback(channel Channel, payload map[string]string, receivedAt time.Time) string {
	if p.Meta == nil {
		p.Meta = Meta{}
	}
	return p.Meta.AppendUnverified(fmt.Sprintf("%s_%s", p.Method, channel), payload, receivedAt)
}

// MarkSucceeded moves a pending payment to success and schedules the point credit.
// It returns ErrAlreadyTerminal when the payment was already decided.
func (p *Payment) MarkSucceeded(gatewayTranID string, at time.Time) error {
	if p.Status.IsTerminal() {
		return ErrAlreadyTerminal
	}

	p.Status = StatusSuccess
	if gatewayTranID != "" {
		p.GatewayTranID = &gatewayTranID
	}
	p.PaidAt = &at
	p.creditDue = p.Points
	p.Touch(at)

	p.Record(NewPaymentSucceededEvent(p))
	return nil
}

// MarkFailed moves a pending payment to failed.
// A success is never downgraded; it returns ErrAlreadyTerminal instead.
func (p *Payment) MarkFailed(reason string, at time.Time) error {
	if p.Status.IsTerminal() {
		return ErrAlreadyTerminal
	}

	p.Status = StatusFailed
	p.Touch(at)

	p.Record(NewPaymentFailedEvent(p, reason))
	return nil
}

// CreditDue returns the points to add to the owner's balance as a result of
// the transition applied in this unit of work, or zero.
func (p *Payment) CreditDue() int64 {
	return p.creditDue
}

// MatchesAmount reports whether a gateway-reported amount equals the payment amount
func (p *Payment) MatchesAmount(amount int64) bool {
	return p.Amount == amount
}

// IsPending returns true while the payment awaits a callback
func (p *Payment) IsPending() bool {
	return p.Status == StatusPending
}

// IsSucceeded returns true once the payment succeeded
func (p *Payment) IsSucceeded() bool {
	return p.Status == StatusSuccess
}
