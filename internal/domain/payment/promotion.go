package payment

import (
	"strings"

	"github.com/google/uuid"

	"github.com/jobboard/backend/internal/domain/shared"
)

// Promotion is a fixed-price point package
type Promotion struct {
	shared.BaseEntity
	Name   string
	Price  int64
	Points int64
	Active bool
}

// NewPromotion creates an active promotion
func NewPromotion(name string, price, points int64) (*Promotion, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_PROMOTION_NAME", "Promotion name cannot be empty")
	}
	if price <= 0 {
		return nil, ErrInvalidAmount
	}
	if points <= 0 {
		return nil, shared.NewDomainError("INVALID_POINTS", "Promotion points must be positive")
	}
	return &Promotion{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Price:      price,
		Points:     points,
		Active:     true,
	}, nil
}

// PromotionRef returns a pointer to the promotion ID for payment linkage
func (p *Promotion) PromotionRef() *uuid.UUID {
	id := p.ID
	return &id
}
