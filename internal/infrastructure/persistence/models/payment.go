package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jobboard/backend/internal/domain/payment"
)

// PaymentModel is the persistence model for the Payment aggregate.
// Meta is kept as a JSON object string (jsonb on postgres).
type PaymentModel struct {
	AggregateModel
	OrderCode     string         `gorm:"type:varchar(32);not null;uniqueIndex:uq_payments_order_code"`
	AccountID     uuid.UUID      `gorm:"size:36;not null;index"`
	PromotionID   *uuid.UUID     `gorm:"size:36"`
	Amount        int64          `gorm:"not null"`
	Points        int64          `gorm:"not null;default:0"`
	Method        payment.Method `gorm:"type:varchar(16);not null"`
	Status        payment.Status `gorm:"type:varchar(16);not null;default:'pending';index"`
	GatewayTranID *string        `gorm:"type:varchar(64)"`
	Meta          string         `gorm:"type:text;not null"`
	PaidAt        *time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() (*payment.Payment, error) {
	meta, err := payment.ParseMeta(m.Meta)
	if err != nil {
		return nil, fmt.Errorf("payment %s: %w", m.OrderCode, err)
	}
	return &payment.Payment{
		BaseAggregateRoot: m.Aggregate(),
		OrderCode:         m.OrderCode,
		AccountID:         m.AccountID,
		PromotionID:       m.PromotionID,
		Amount:            m.Amount,
		Points:            m.Points,
		Method:            m.Method,
		Status:            m.Status,
		GatewayTranID:     m.GatewayTranID,
		Meta:              meta,
		PaidAt:            m.PaidAt,
	}, nil
}

// FromDomain populates the persistence model from a domain Payment
func (m *PaymentModel) FromDomain(p *payment.Payment) error {
	meta, err := p.Meta.MarshalString()
	if err != nil {
		return err
	}
	m.SetAggregate(p.BaseAggregateRoot)
	m.OrderCode = p.OrderCode
	m.AccountID = p.AccountID
	m.PromotionID = p.PromotionID
	m.Amount = p.Amount
	m.Points = p.Points
	m.Method = p.Method
	m.Status = p.Status
	m.GatewayTranID = p.GatewayTranID
	m.Meta = meta
	m.PaidAt = p.PaidAt
	return nil
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment
func PaymentModelFromDomain(p *payment.Payment) (*PaymentModel, error) {
	m := &PaymentModel{}
	if err := m.FromDomain(p); err != nil {
		return nil, err
	}
	return m, nil
}

// PromotionModel is the persistence model for point promotions
type PromotionModel struct {
	BaseModel
	Name   string `gorm:"type:varchar(200);not null"`
	Price  int64  `gorm:"not null"`
	Points int64  `gorm:"not null"`
	Active bool   `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PromotionModel) TableName() string {
	return "promotions"
}

// ToDomain converts the persistence model to a domain Promotion
func (m *PromotionModel) ToDomain() *payment.Promotion {
	return &payment.Promotion{
		BaseEntity: m.Entity(),
		Name:       m.Name,
		Price:      m.Price,
		Points:     m.Points,
		Active:     m.Active,
	}
}

// PromotionModelFromDomain creates a new persistence model from a domain Promotion
func PromotionModelFromDomain(p *payment.Promotion) *PromotionModel {
	m := &PromotionModel{
		Name:   p.Name,
		Price:  p.Price,
		Points: p.Points,
		Active: p.Active,
	}
	m.SetEntity(p.BaseEntity)
	return m
}
