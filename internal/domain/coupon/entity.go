// internal/domain/coupon/entity.go
package coupon

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/freshmilk-storefront/internal/domain/pricing"
)

// Status represents a user coupon status
type Status string

const (
	StatusUnused  Status = "unused"
	StatusUsed    Status = "used"
	StatusExpired Status = "expired"
)

// Coupon is a flat-amount coupon owned by a customer
type Coupon struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	MinAmount   decimal.Decimal `json:"min_amount"`
	ExpiresAt   *time.Time      `json:"expire_date,omitempty"`
	Status      Status          `json:"status"`
}

// Pricing returns the calculator view of the coupon
func (c Coupon) Pricing() *pricing.Coupon {
	return &pricing.Coupon{ID: c.ID, Amount: c.Amount}
}

// Shortfall returns how much more goods the coupon needs, zero if it qualifies
func (c Coupon) Shortfall(goodsAmount decimal.Decimal) decimal.Decimal {
	if goodsAmount.GreaterThanOrEqual(c.MinAmount) {
		return decimal.Zero
	}
	return c.MinAmount.Sub(goodsAmount)
}
