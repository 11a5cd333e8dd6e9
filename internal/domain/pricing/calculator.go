// internal/domain/pricing/calculator.go
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of decimal places amounts are presented with
const CurrencyPlaces = 2

// Coupon is an accepted flat-amount coupon. Eligibility is checked before a coupon gets here.
type Coupon struct {
	ID     int64           `json:"id"`
	Amount decimal.Decimal `json:"amount"`
}

// Discounts represents the discount breakdown for a goods amount
type Discounts struct {
	MemberDiscount decimal.Decimal `json:"member_discount"`
	CouponDiscount decimal.Decimal `json:"coupon_discount"`
	TotalDiscount  decimal.Decimal `json:"total_discount"`
}

// OrderDraft is the derived pricing of the selected cart items
type OrderDraft struct {
	GoodsAmount    decimal.Decimal `json:"goods_amount"`
	ShippingFee    decimal.Decimal `json:"shipping_fee"`
	MemberTier     MemberTier      `json:"member_tier"`
	MemberDiscount decimal.Decimal `json:"member_discount"`
	CouponID       *int64          `json:"coupon_id,omitempty"`
	CouponDiscount decimal.Decimal `json:"coupon_discount"`
	TotalDiscount  decimal.Decimal `json:"total_discount"`
	Total          decimal.Decimal `json:"total"`
}

// Calculator prices goods amounts
type Calculator struct {
	shipping ShippingRule
	now      func() time.Time
}

// Option configures a Calculator
type Option func(*Calculator)

// WithClock overrides the clock used for membership expiry checks
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		c.now = now
	}
}

// NewCalculator creates a new price calculator
func NewCalculator(shipping ShippingRule, opts ...Option) *Calculator {
	c := &Calculator{
		shipping: shipping,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Price computes member and coupon discounts off the same goods amount.
// Discounts are additive; the coupon is never applied to the member-discounted amount.
func (c *Calculator) Price(goodsAmount decimal.Decimal, membership Membership, coupon *Coupon) Discounts {
	// Expiry is checked on every call
	multiplier := membership.Multiplier(c.now())
	memberDiscount := Round(goodsAmount.Mul(decimal.NewFromInt(1).Sub(multiplier)))

	couponDiscount := decimal.Zero
	if coupon != nil {
		couponDiscount = coupon.Amount
	}

	return Discounts{
		MemberDiscount: memberDiscount,
		CouponDiscount: couponDiscount,
		TotalDiscount:  memberDiscount.Add(couponDiscount),
	}
}

// Draft builds the full order draft for a goods amount
func (c *Calculator) Draft(goodsAmount decimal.Decimal, membership Membership, coupon *Coupon) OrderDraft {
	shippingFee := c.shipping.Fee(goodsAmount)
	discounts := c.Price(goodsAmount, membership, coupon)

	draft := OrderDraft{
		GoodsAmount:    goodsAmount,
		ShippingFee:    shippingFee,
		MemberTier:     membership.EffectiveTier(c.now()),
		MemberDiscount: discounts.MemberDiscount,
		CouponDiscount: discounts.CouponDiscount,
		TotalDiscount:  discounts.TotalDiscount,
		Total:          Total(goodsAmount, shippingFee, discounts.TotalDiscount),
	}
	if coupon != nil {
		id := coupon.ID
		draft.CouponID = &id
	}

	return draft
}

// Total returns goods + shipping - discount, clamped at zero
func Total(goodsAmount, shippingFee, totalDiscount decimal.Decimal) decimal.Decimal {
	total := goodsAmount.Add(shippingFee).Sub(totalDiscount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Round rounds an amount to currency precision, half away from zero
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(CurrencyPlaces)
}

// Format renders an amount with exactly two decimal places
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(CurrencyPlaces)
}
