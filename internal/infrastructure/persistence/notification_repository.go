package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobboard/backend/internal/domain/notification"
	"github.com/jobboard/backend/internal/domain/shared"
	"github.com/jobboard/backend/internal/infrastructure/persistence/models"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if err := r.db.WithContext(ctx).Create(models.NotificationModelFromDomain(n)).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListByAccount returns a page of the account's notifications, newest first
func (r *GormNotificationRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]notification.Notification, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("account_id = ?", accountID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	var rows []models.NotificationModel
	if err := query.Order(notificationSort.clause(filter)).Offset(filter.Offset()).Limit(filter.PageSize).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	out := make([]notification.Notification, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, total, nil
}

var _ notification.Repository = (*GormNotificationRepository)(nil)
