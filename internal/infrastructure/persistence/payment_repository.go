package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jobboard/backend/internal/domain/account"
	"github.com/jobboard/backend/internal/domain/payment"
	"github.com/jobboard/backend/internal/domain/shared"
	"github.com/jobboard/backend/internal/infrastructure/persistence/models"
)

// GormPaymentRepository implements payment.Repository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts a pending payment
func (r *GormPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	m, err := models.PaymentModelFromDomain(p)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return payment.ErrDuplicateOrderCode
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// FindByOrderCode returns the payment with the given order code
func (r *GormPaymentRepository) FindByOrderCode(ctx context.Context, orderCode string) (*payment.Payment, error) {
	var m models.PaymentModel
	if err := r.db.WithContext(ctx).Where("order_code = ?", orderCode).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return m.ToDomain()
}

// FindByOrderCodeForAccount returns the payment only when accountID owns it
func (r *GormPaymentRepository) FindByOrderCodeForAccount(ctx context.Context, accountID uuid.UUID, orderCode string) (*payment.Payment, error) {
	var m models.PaymentModel
	err := r.db.WithContext(ctx).
		Where("order_code = ? AND account_id = ?", orderCode, accountID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return m.ToDomain()
}

// ListByAccount returns a page of the account's payments, newest first unless
// the filter names another whitelisted column
func (r *GormPaymentRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]payment.Payment, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("account_id = ?", accountID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	var rows []models.PaymentModel
	err := query.
		Order(paymentSort.clause(filter)).
		Order("id DESC").
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	payments := make([]payment.Payment, 0, len(rows))
	for i := range rows {
		p, err := rows[i].ToDomain()
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, *p)
	}
	return payments, total, nil
}

// Settle runs fn against the payment row locked with SELECT ... FOR UPDATE and
// writes the outcome in the same transaction: status, gateway transaction id,
// meta and, when the transition made a credit due, "points = points + ?" on
// the owner's account. A concurrent Settle for the same order blocks on the
// lock and then sees the already-terminal status.
func (r *GormPaymentRepository) Settle(ctx context.Context, orderCode string, fn payment.SettleFunc) (*payment.Payment, error) {
	var settled *payment.Payment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.PaymentModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_code = ?", orderCode).
			First(&m).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return payment.ErrUnknownOrder
			}
			return fmt.Errorf("lock payment: %w", err)
		}

		p, err := m.ToDomain()
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}

		meta, err := p.Meta.MarshalString()
		if err != nil {
			return err
		}
		err = tx.Model(&models.PaymentModel{}).
			Where("id = ?", m.ID).
			Updates(map[string]any{
				"status":          p.Status,
				"gateway_tran_id": p.GatewayTranID,
				"meta":            meta,
				"paid_at":         p.PaidAt,
				"version":         p.Version,
				"updated_at":      p.UpdatedAt,
			}).Error
		if err != nil {
			return fmt.Errorf("update payment: %w", err)
		}

		if due := p.CreditDue(); due > 0 {
			res := tx.Model(&models.AccountModel{}).
				Where("id = ?", p.AccountID).
				UpdateColumn("points", gorm.Expr("points + ?", due))
			if res.Error != nil {
				return fmt.Errorf("credit points: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return account.ErrAccountNotFound
			}
		}

		settled = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

var _ payment.Repository = (*GormPaymentRepository)(nil)
