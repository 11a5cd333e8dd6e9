package coupon

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/freshmilk-storefront/internal/domain/pricing"
)

var (
	ErrCouponUnavailable = errors.New("coupon is not available")
	ErrCouponExpired     = errors.New("coupon has expired")
	ErrBelowMinimum      = errors.New("order amount is below the coupon minimum")
)

// Selector decides whether a coupon may be applied to an order
type Selector struct {
	now func() time.Time
}

// NewSelector creates a selector using the given clock; nil means time.Now
func NewSelector(now func() time.Time) *Selector {
	if now == nil {
		now = time.Now
	}
	return &Selector{now: now}
}

// Select checks eligibility and returns the coupon in calculator form
func (s *Selector) Select(c Coupon, goodsAmount decimal.Decimal) (*pricing.Coupon, error) {
	if c.Status != StatusUnused {
		return nil, fmt.Errorf("%w: status %s", ErrCouponUnavailable, c.Status)
	}
	if c.ExpiresAt != nil && !c.ExpiresAt.After(s.now()) {
		return nil, ErrCouponExpired
	}
	if !c.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrCouponUnavailable)
	}
	if goodsAmount.LessThan(c.MinAmount) {
		return nil, fmt.Errorf("%w: needs %s more", ErrBelowMinimum, pricing.Format(c.Shortfall(goodsAmount)))
	}
	return c.Pricing(), nil
}

// Option is a coupon as listed in the coupon picker
type Option struct {
	Coupon
	Usable bool   `json:"usable"`
	Reason string `json:"reason,omitempty"`
}

// Partition splits coupons into usable and unusable ones for a goods amount.
// Usable coupons are ordered by amount, largest first.
func (s *Selector) Partition(coupons []Coupon, goodsAmount decimal.Decimal) (usable, unusable []Option) {
	for _, c := range coupons {
		if _, err := s.Select(c, goodsAmount); err != nil {
			unusable = append(unusable, Option{Coupon: c, Reason: err.Error()})
			continue
		}
		usable = append(usable, Option{Coupon: c, Usable: true})
	}

	sort.SliceStable(usable, func(i, j int) bool {
		return usable[i].Amount.GreaterThan(usable[j].Amount)
	})
	return usable, unusable
}

// Find returns the coupon with the given id
func Find(coupons []Coupon, id int64) (Coupon, bool) {
	for _, c := range coupons {
		if c.ID == id {
			return c, true
		}
	}
	return Coupon{}, false
}
