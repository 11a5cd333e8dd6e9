package pricing

import "github.com/shopspring/decimal"

// Default shipping parameters
var (
	DefaultFreeShippingThreshold = decimal.RequireFromString("88.00")
	DefaultShippingFee           = decimal.RequireFromString("8.00")
)

// ShippingRule charges a flat fee below a free-shipping threshold
type ShippingRule struct {
	FreeThreshold decimal.Decimal
	FlatFee       decimal.Decimal
}

// DefaultShippingRule returns the 88.00 / 8.00 rule
func DefaultShippingRule() ShippingRule {
	return ShippingRule{
		FreeThreshold: DefaultFreeShippingThreshold,
		FlatFee:       DefaultShippingFee,
	}
}

// Fee returns the shipping fee for a goods amount. The threshold is inclusive.
func (r ShippingRule) Fee(goodsAmount decimal.Decimal) decimal.Decimal {
	if goodsAmount.GreaterThanOrEqual(r.FreeThreshold) {
		return decimal.Zero
	}
	return r.FlatFee
}
