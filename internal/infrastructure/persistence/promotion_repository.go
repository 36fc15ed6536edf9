package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobboard/backend/internal/domain/payment"
	"github.com/jobboard/backend/internal/infrastructure/persistence/models"
)

// GormPromotionRepository implements payment.PromotionRepository using GORM
type GormPromotionRepository struct {
	db *gorm.DB
}

// NewGormPromotionRepository creates a new GormPromotionRepository
func NewGormPromotionRepository(db *gorm.DB) *GormPromotionRepository {
	return &GormPromotionRepository{db: db}
}

// Create stores a promotion
func (r *GormPromotionRepository) Create(ctx context.Context, p *payment.Promotion) error {
	if err := r.db.WithContext(ctx).Create(models.PromotionModelFromDomain(p)).Error; err != nil {
		return fmt.Errorf("create promotion: %w", err)
	}
	return nil
}

// FindByID returns the promotion with the given ID, active or not
func (r *GormPromotionRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Promotion, error) {
	var m models.PromotionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPromotionNotFound
		}
		return nil, fmt.Errorf("find promotion: %w", err)
	}
	return m.ToDomain(), nil
}

// ListActive returns the active promotions, cheapest first
func (r *GormPromotionRepository) ListActive(ctx context.Context) ([]payment.Promotion, error) {
	var rows []models.PromotionModel
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("price ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}

	promotions := make([]payment.Promotion, 0, len(rows))
	for i := range rows {
		promotions = append(promotions, *rows[i].ToDomain())
	}
	return promotions, nil
}

var _ payment.PromotionRepository = (*GormPromotionRepository)(nil)
