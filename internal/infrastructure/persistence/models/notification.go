package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jobboard/backend/internal/domain/notification"
)

// NotificationModel is the persistence model for in-app notifications
type NotificationModel struct {
	BaseModel
	AccountID uuid.UUID         `gorm:"size:36;not null;index"`
	Kind      notification.Kind `gorm:"type:varchar(32);not null"`
	Title     string            `gorm:"type:varchar(200);not null"`
	Body      string            `gorm:"type:text"`
	Reference string            `gorm:"type:varchar(64);index"`
	ReadAt    *time.Time
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		BaseEntity: m.Entity(),
		AccountID:  m.AccountID,
		Kind:       m.Kind,
		Title:      m.Title,
		Body:       m.Body,
		Reference:  m.Reference,
		ReadAt:     m.ReadAt,
	}
}

// NotificationModelFromDomain creates a new persistence model from a domain Notification
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	m := &NotificationModel{
		AccountID: n.AccountID,
		Kind:      n.Kind,
		Title:     n.Title,
		Body:      n.Body,
		Reference: n.Reference,
		ReadAt:    n.ReadAt,
	}
	m.SetEntity(n.BaseEntity)
	return m
}

// All returns every model, in dependency order, for AutoMigrate
func All() []any {
	return []any{
		&AccountModel{},
		&PromotionModel{},
		&PaymentModel{},
		&NotificationModel{},
	}
}
