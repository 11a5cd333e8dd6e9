package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/freshmilk-storefront/internal/domain/checkout"
	"gorm.io/gorm"
)

// HandoffRepository stores orders handed to the backend
type HandoffRepository struct {
	db *gorm.DB
}

// NewHandoffRepository creates a new handoff repository
func NewHandoffRepository(db *gorm.DB) *HandoffRepository {
	return &HandoffRepository{db: db}
}

// Record stores a handoff with its lines
func (r *HandoffRepository) Record(ctx context.Context, h *checkout.Handoff) error {
	if err := r.db.WithContext(ctx).Create(h).Error; err != nil {
		return fmt.Errorf("failed to record handoff %s: %w", h.OrderNumber, err)
	}
	return nil
}

// FindByNumber returns a user's handoff by order number
func (r *HandoffRepository) FindByNumber(ctx context.Context, userID uint, orderNumber string) (*checkout.Handoff, error) {
	var h checkout.Handoff
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("order_number = ? AND user_id = ?", orderNumber, userID).
		First(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, checkout.ErrReceiptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find handoff %s: %w", orderNumber, err)
	}
	return &h, nil
}
