// internal/domain/pricing/membership.go
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// MemberTier represents a membership level
type MemberTier string

const (
	TierRegular  MemberTier = "regular"
	TierSilver   MemberTier = "silver"
	TierGold     MemberTier = "gold"
	TierPlatinum MemberTier = "platinum"
)

var tierRates = map[MemberTier]decimal.Decimal{
	TierRegular:  decimal.NewFromInt(1),
	TierSilver:   decimal.RequireFromString("0.95"),
	TierGold:     decimal.RequireFromString("0.90"),
	TierPlatinum: decimal.RequireFromString("0.85"),
}

// Rate returns the fixed price multiplier of the tier. Unknown tiers pay full price.
func (t MemberTier) Rate() decimal.Decimal {
	if rate, ok := tierRates[t]; ok {
		return rate
	}
	return tierRates[TierRegular]
}

// IsValid reports whether t is one of the known tiers
func (t MemberTier) IsValid() bool {
	_, ok := tierRates[t]
	return ok
}

// Membership is a customer's stored tier and its expiry
type Membership struct {
	Tier      MemberTier `json:"member_level"`
	ExpiresAt *time.Time `json:"member_expire_at,omitempty"`
}

// Active reports whether the membership discount applies at now
func (m Membership) Active(now time.Time) bool {
	if m.Tier == TierRegular || !m.Tier.IsValid() {
		return false
	}
	return m.ExpiresAt != nil && m.ExpiresAt.After(now)
}

// Multiplier returns the effective price multiplier at now
func (m Membership) Multiplier(now time.Time) decimal.Decimal {
	if !m.Active(now) {
		return tierRates[TierRegular]
	}
	return m.Tier.Rate()
}

// EffectiveTier returns the tier that is actually priced at now
func (m Membership) EffectiveTier(now time.Time) MemberTier {
	if !m.Active(now) {
		return TierRegular
	}
	return m.Tier
}
