package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/freshmilk-storefront/internal/domain/coupon"
	"github.com/your-org/freshmilk-storefront/internal/domain/pricing"
)

// Profile is the part of the backend user profile used for pricing
type Profile struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	MemberLevel    string `json:"member_level"`
	MemberExpireAt string `json:"member_expire_at,omitempty"`
}

// couponEntry is one user coupon; the coupon terms are nested under coupon_detail
type couponEntry struct {
	ID     int64        `json:"id"`
	Status string       `json:"status"`
	Detail couponDetail `json:"coupon_detail"`
}

type couponDetail struct {
	ID             int64               `json:"id"`
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	DiscountAmount decimal.NullDecimal `json:"discount_amount"`
	MinAmount      decimal.NullDecimal `json:"min_amount"`
	EndTime        string              `json:"end_time"`
}

// GetProfile returns the signed-in user's profile
func (c *Client) GetProfile(ctx context.Context, token string) (*Profile, error) {
	return do[Profile](ctx, c, http.MethodGet, "/users/me/", nil, callOptions{token: token})
}

// Membership returns the signed-in user's membership
func (c *Client) Membership(ctx context.Context, token string) (pricing.Membership, error) {
	profile, err := c.GetProfile(ctx, token)
	if err != nil {
		return pricing.Membership{}, err
	}

	membership := pricing.Membership{Tier: pricing.MemberTier(strings.ToLower(profile.MemberLevel))}
	if membership.Tier == "" {
		membership.Tier = pricing.TierRegular
	}
	if profile.MemberExpireAt != "" {
		expires, err := parseTime(profile.MemberExpireAt)
		if err != nil {
			return pricing.Membership{}, fmt.Errorf("invalid member_expire_at: %w", err)
		}
		membership.ExpiresAt = &expires
	}
	return membership, nil
}

// ListCoupons returns the signed-in user's unused coupons.
// The coupon id is the user coupon id, which is what an order redeems.
func (c *Client) ListCoupons(ctx context.Context, token string) ([]coupon.Coupon, error) {
	entries, err := do[List[couponEntry]](ctx, c, http.MethodGet, "/user-coupons/?status=unused", nil, callOptions{token: token})
	if err != nil {
		return nil, err
	}

	coupons := make([]coupon.Coupon, 0, len(entries.Items))
	for _, e := range entries.Items {
		cp := coupon.Coupon{
			ID:          e.ID,
			Name:        e.Detail.Name,
			Description: e.Detail.Description,
			Amount:      e.Detail.DiscountAmount.Decimal,
			MinAmount:   e.Detail.MinAmount.Decimal,
			Status:      coupon.Status(e.Status),
		}
		if cp.Status == "" {
			cp.Status = coupon.StatusUnused
		}
		if e.Detail.EndTime != "" {
			expires, err := parseTime(e.Detail.EndTime)
			if err != nil {
				return nil, fmt.Errorf("invalid end_time for coupon %d: %w", e.ID, err)
			}
			cp.ExpiresAt = &expires
		}
		coupons = append(coupons, cp)
	}
	return coupons, nil
}

// parseTime accepts RFC 3339 timestamps, zone-less timestamps (read as UTC) and plain
// dates; a plain date expires at its end
func parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05.999999999", value); err == nil {
		return t, nil
	}
	day, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(24*time.Hour - time.Nanosecond), nil
}
