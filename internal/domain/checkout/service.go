// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/freshmilk-storefront/internal/domain/cart"
	"github.com/your-org/freshmilk-storefront/internal/domain/coupon"
	"github.com/your-org/freshmilk-storefront/internal/domain/pricing"
)

var (
	ErrEmptySelection  = errors.New("no items selected for checkout")
	ErrAddressRequired = errors.New("delivery address is required")
	ErrCouponNotFound  = errors.New("coupon not found")
	ErrLoginRequired   = errors.New("login required to use coupons")
	ErrOrderSubmission = errors.New("order submission failed")
	ErrReceiptNotFound = errors.New("receipt not found")
)

// OrderAPI submits orders to the backend and returns the order number
type OrderAPI interface {
	SubmitOrder(ctx context.Context, token string, sub *Submission) (string, error)
}

// MembershipSource returns the customer's membership
type MembershipSource interface {
	Membership(ctx context.Context, token string) (pricing.Membership, error)
}

// CouponSource lists the customer's unused coupons
type CouponSource interface {
	ListCoupons(ctx context.Context, token string) ([]coupon.Coupon, error)
}

// HandoffRepository stores handed-off orders
type HandoffRepository interface {
	Record(ctx context.Context, h *Handoff) error
	FindByNumber(ctx context.Context, userID uint, orderNumber string) (*Handoff, error)
}

// EventPublisher publishes order events
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlaced) error
}

// ReceiptRenderer renders a receipt document for a handoff
type ReceiptRenderer interface {
	RenderReceipt(h *Handoff) ([]byte, error)
}

// Dependencies groups the collaborators of the checkout service
type Dependencies struct {
	Carts       *cart.Service
	Calculator  *pricing.Calculator
	Selector    *coupon.Selector
	Orders      OrderAPI
	Memberships MembershipSource
	Coupons     CouponSource
	Handoffs    HandoffRepository
	Events      EventPublisher
	Receipts    ReceiptRenderer
	Logger      *logrus.Logger
}

// Service handles checkout business logic
type Service struct {
	Dependencies
	now func() time.Time
}

// NewService creates a new checkout service
func NewService(deps Dependencies) *Service {
	return &Service{
		Dependencies: deps,
		now:          time.Now,
	}
}

// Preview prices the selected items of a cart. customer is nil for guests.
func (s *Service) Preview(ctx context.Context, owner cart.Owner, customer *Customer, couponID *int64) (*Quote, error) {
	items, err := s.Carts.SelectedItems(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptySelection
	}

	goods := cart.Aggregate(items).GoodsAmount
	membership := s.membership(ctx, customer)

	quote := &Quote{Items: items}

	var accepted *pricing.Coupon
	if couponID != nil {
		c, err := s.coupon(ctx, customer, *couponID)
		if err != nil {
			return nil, err
		}
		if accepted, err = s.Selector.Select(c, goods); err != nil {
			return nil, err
		}
		quote.Coupon = &c
	}

	quote.Draft = s.Calculator.Draft(goods, membership, accepted)
	return quote, nil
}

// UsableCoupons lists the customer's coupons split by whether they apply to the current selection
func (s *Service) UsableCoupons(ctx context.Context, customer Customer) (usable, unusable []coupon.Option, err error) {
	items, err := s.Carts.SelectedItems(ctx, customer.Owner())
	if err != nil {
		return nil, nil, err
	}

	coupons, err := s.Coupons.ListCoupons(ctx, customer.Token)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list coupons: %w", err)
	}

	usable, unusable = s.Selector.Partition(coupons, cart.Aggregate(items).GoodsAmount)
	return usable, unusable, nil
}

// Place hands the selected items to the order backend.
// On backend failure the cart is left untouched. After the backend accepts the order the
// submitted quantities are taken out of the cart; a failure to persist that is returned
// with the placement.
func (s *Service) Place(ctx context.Context, customer Customer, req PlaceRequest) (*Placement, error) {
	if err := req.Address.Validate(); err != nil {
		return nil, err
	}

	quote, err := s.Preview(ctx, customer.Owner(), &customer, req.CouponID)
	if err != nil {
		return nil, err
	}

	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	sub := &Submission{
		IdempotencyKey: key,
		Items:          NewOrderLines(quote.Items),
		Address:        req.Address,
		CouponID:       quote.Draft.CouponID,
		Remark:         req.Remark,
		Draft:          quote.Draft,
	}

	number, err := s.Orders.SubmitOrder(ctx, customer.Token, sub)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", customer.UserID).Warn("Order submission failed")
		return nil, fmt.Errorf("%w: %w", ErrOrderSubmission, err)
	}

	// The order exists now; follow-up steps must not be abandoned with the request
	ctx = context.WithoutCancel(ctx)
	placement := &Placement{
		OrderNumber: number,
		Draft:       quote.Draft,
		Items:       sub.Items,
		PlacedAt:    s.now().UTC(),
	}

	logger := s.Logger.WithFields(logrus.Fields{
		"order_number": number,
		"user_id":      customer.UserID,
	})

	_, clearErr := s.Carts.RemoveOrdered(ctx, customer.Owner(), sub.Ordered())
	if clearErr != nil {
		logger.WithError(clearErr).Warn("Failed to clear cart after order")
	}

	if s.Handoffs != nil {
		if err := s.Handoffs.Record(ctx, newHandoff(customer, number, sub)); err != nil {
			logger.WithError(err).Error("Failed to record order handoff")
		}
	}

	if s.Events != nil {
		event := OrderPlaced{
			OrderNumber: number,
			UserID:      customer.UserID,
			Items:       sub.Items,
			CouponID:    sub.CouponID,
			MemberTier:  string(quote.Draft.MemberTier),
			GoodsAmount: quote.Draft.GoodsAmount,
			Total:       quote.Draft.Total,
			PlacedAt:    placement.PlacedAt,
		}
		if err := s.Events.PublishOrderPlaced(ctx, event); err != nil {
			logger.WithError(err).Warn("Failed to publish order placed event")
		}
	}

	logger.WithField("total", pricing.Format(quote.Draft.Total)).Info("Order placed")

	return placement, clearErr
}

// Receipt renders the receipt of an order the customer placed here
func (s *Service) Receipt(ctx context.Context, customer Customer, orderNumber string) ([]byte, *Handoff, error) {
	if s.Handoffs == nil || s.Receipts == nil {
		return nil, nil, ErrReceiptNotFound
	}

	handoff, err := s.Handoffs.FindByNumber(ctx, customer.UserID, orderNumber)
	if err != nil {
		return nil, nil, err
	}

	pdf, err := s.Receipts.RenderReceipt(handoff)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return pdf, handoff, nil
}

func (s *Service) membership(ctx context.Context, customer *Customer) pricing.Membership {
	regular := pricing.Membership{Tier: pricing.TierRegular}
	if customer == nil || s.Memberships == nil {
		return regular
	}

	membership, err := s.Memberships.Membership(ctx, customer.Token)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", customer.UserID).Warn("Membership unavailable, pricing as regular")
		return regular
	}
	return membership
}

func (s *Service) coupon(ctx context.Context, customer *Customer, id int64) (coupon.Coupon, error) {
	if customer == nil {
		return coupon.Coupon{}, ErrLoginRequired
	}

	coupons, err := s.Coupons.ListCoupons(ctx, customer.Token)
	if err != nil {
		return coupon.Coupon{}, fmt.Errorf("failed to list coupons: %w", err)
	}

	c, ok := coupon.Find(coupons, id)
	if !ok {
		return coupon.Coupon{}, ErrCouponNotFound
	}
	return c, nil
}
