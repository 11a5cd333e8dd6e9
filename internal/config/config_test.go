package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/freshmilk-storefront/internal/domain/pricing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Pricing.FreeShippingThreshold.Equal(decimal.RequireFromString("88")))
	assert.True(t, cfg.Pricing.ShippingFee.Equal(decimal.RequireFromString("8")))
	assert.Equal(t, "X-Session-ID", cfg.Cart.SessionHeader)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoad_PricingOverrides(t *testing.T) {
	t.Setenv("PRICING_FREE_SHIPPING_THRESHOLD", "99.50")
	t.Setenv("PRICING_SHIPPING_FEE", "6")
	t.Setenv("BACKEND_BASE_URL", "https://api.example.com/api/v1/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "99.5", cfg.Pricing.FreeShippingThreshold.String())
	assert.Equal(t, "6", cfg.Pricing.ShippingFee.String())
	assert.Equal(t, "https://api.example.com/api/v1", cfg.Backend.BaseURL)
}

func TestLoad_PricingBuildsShippingRule(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	defaults := pricing.DefaultShippingRule()
	assert.True(t, cfg.Pricing.FreeShippingThreshold.Equal(defaults.FreeThreshold))
	assert.True(t, cfg.Pricing.ShippingFee.Equal(defaults.FlatFee))

	t.Setenv("PRICING_FREE_SHIPPING_THRESHOLD", "99.50")
	t.Setenv("PRICING_SHIPPING_FEE", "6")
	cfg, err = Load()
	require.NoError(t, err)

	rule := pricing.ShippingRule{FreeThreshold: cfg.Pricing.FreeShippingThreshold, FlatFee: cfg.Pricing.ShippingFee}
	calc := pricing.NewCalculator(rule)
	assert.Equal(t, "6.00", pricing.Format(calc.Draft(decimal.RequireFromString("99.49"), pricing.Membership{}, nil).ShippingFee))
	assert.Equal(t, "0.00", pricing.Format(calc.Draft(decimal.RequireFromString("99.50"), pricing.Membership{}, nil).ShippingFee))
}

func TestLoad_InvalidDecimalFallsBackToDefault(t *testing.T) {
	t.Setenv("PRICING_SHIPPING_FEE", "eight")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8", cfg.Pricing.ShippingFee.String())
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "too-short")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "a-perfectly-long-secret-for-testing-only")
	t.Setenv("PRICING_SHIPPING_FEE", "-1")
	_, err = Load()
	assert.ErrorContains(t, err, "PRICING_SHIPPING_FEE")
}
