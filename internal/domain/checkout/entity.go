// internal/domain/checkout/entity.go
package checkout

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/freshmilk-storefront/internal/domain/cart"
	"github.com/your-org/freshmilk-storefront/internal/domain/coupon"
	"github.com/your-org/freshmilk-storefront/internal/domain/pricing"
)

// Address is the delivery address of an order
type Address struct {
	ReceiverName  string `json:"receiver_name" binding:"required,max=64"`
	ReceiverPhone string `json:"receiver_phone" binding:"required,max=32"`
	Province      string `json:"province" binding:"max=64"`
	City          string `json:"city" binding:"max=64"`
	District      string `json:"district" binding:"max=64"`
	Detail        string `json:"detail" binding:"required,max=255"`
}

// Validate checks the fields the backend needs to deliver
func (a Address) Validate() error {
	if strings.TrimSpace(a.ReceiverName) == "" ||
		strings.TrimSpace(a.ReceiverPhone) == "" ||
		strings.TrimSpace(a.Detail) == "" {
		return ErrAddressRequired
	}
	return nil
}

// Full returns the address on one line
func (a Address) Full() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Province, a.City, a.District, a.Detail} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Customer is the signed-in caller of a checkout
type Customer struct {
	UserID uint
	Token  string
}

// Owner returns the cart owner of the customer
func (c Customer) Owner() cart.Owner {
	return cart.UserOwner(c.UserID)
}

// OrderLine is one item handed to the order backend
type OrderLine struct {
	ProductID     int64           `json:"product_id"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Name          string          `json:"name"`
	CoverImage    string          `json:"cover_image,omitempty"`
	Specification string          `json:"specification,omitempty"`
}

// NewOrderLines converts selected cart items into order lines
func NewOrderLines(items []cart.LineItem) []OrderLine {
	lines := make([]OrderLine, len(items))
	for i, item := range items {
		lines[i] = OrderLine{
			ProductID:     item.Product.ID,
			Quantity:      item.Quantity,
			Price:         item.Product.Price,
			Name:          item.Product.Name,
			CoverImage:    item.Product.CoverImage,
			Specification: item.Product.Specification,
		}
	}
	return lines
}

// Submission is the finalized order handed to the backend
type Submission struct {
	IdempotencyKey string
	Items          []OrderLine
	Address        Address
	CouponID       *int64
	Remark         string
	Draft          pricing.OrderDraft
}

// Ordered returns the product quantities handed to the backend
func (s *Submission) Ordered() []cart.OrderedLine {
	lines := make([]cart.OrderedLine, len(s.Items))
	for i, item := range s.Items {
		lines[i] = cart.OrderedLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return lines
}

// Quote is a priced view of the selected cart items
type Quote struct {
	Items  []cart.LineItem    `json:"items"`
	Draft  pricing.OrderDraft `json:"draft"`
	Coupon *coupon.Coupon     `json:"coupon,omitempty"`
}

// PlaceRequest represents a place order request
type PlaceRequest struct {
	Address        Address `json:"address" binding:"required"`
	CouponID       *int64  `json:"coupon_id"`
	Remark         string  `json:"remark" binding:"max=500"`
	IdempotencyKey string  `json:"-"`
}

// Placement is the result of a successful order placement
type Placement struct {
	OrderNumber string             `json:"order_number"`
	Draft       pricing.OrderDraft `json:"draft"`
	Items       []OrderLine        `json:"items"`
	PlacedAt    time.Time          `json:"placed_at"`
}

// Handoff records an order handed to the backend, used for receipts
type Handoff struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	OrderNumber    string          `gorm:"size:64;uniqueIndex;not null" json:"order_number"`
	UserID         uint            `gorm:"not null;index" json:"user_id"`
	IdempotencyKey string          `gorm:"size:64;uniqueIndex;not null" json:"-"`
	GoodsAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"goods_amount"`
	ShippingFee    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping_fee"`
	MemberTier     string          `gorm:"size:20;not null" json:"member_tier"`
	MemberDiscount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"member_discount"`
	CouponID       *int64          `json:"coupon_id,omitempty"`
	CouponDiscount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"coupon_discount"`
	Total          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	ReceiverName   string          `gorm:"size:64;not null" json:"receiver_name"`
	ReceiverPhone  string          `gorm:"size:32;not null" json:"receiver_phone"`
	Address        string          `gorm:"size:500;not null" json:"address"`
	Remark         string          `gorm:"size:500" json:"remark"`
	Lines          []HandoffLine   `gorm:"foreignKey:HandoffID;constraint:OnDelete:CASCADE" json:"lines"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TableName overrides the table name
func (Handoff) TableName() string {
	return "order_handoffs"
}

// HandoffLine is one item of a recorded handoff
type HandoffLine struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	HandoffID     uint            `gorm:"not null;index" json:"handoff_id"`
	ProductID     int64           `gorm:"not null" json:"product_id"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Specification string          `gorm:"size:255" json:"specification"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity      int             `gorm:"not null" json:"quantity"`
}

// TableName overrides the table name
func (HandoffLine) TableName() string {
	return "order_handoff_lines"
}

// Subtotal returns price x quantity
func (l HandoffLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// TotalDiscount returns the member and coupon discounts together
func (h *Handoff) TotalDiscount() decimal.Decimal {
	return h.MemberDiscount.Add(h.CouponDiscount)
}

func newHandoff(customer Customer, number string, sub *Submission) *Handoff {
	h := &Handoff{
		OrderNumber:    number,
		UserID:         customer.UserID,
		IdempotencyKey: sub.IdempotencyKey,
		GoodsAmount:    sub.Draft.GoodsAmount,
		ShippingFee:    sub.Draft.ShippingFee,
		MemberTier:     string(sub.Draft.MemberTier),
		MemberDiscount: sub.Draft.MemberDiscount,
		CouponID:       sub.CouponID,
		CouponDiscount: sub.Draft.CouponDiscount,
		Total:          sub.Draft.Total,
		ReceiverName:   sub.Address.ReceiverName,
		ReceiverPhone:  sub.Address.ReceiverPhone,
		Address:        sub.Address.Full(),
		Remark:         sub.Remark,
		Lines:          make([]HandoffLine, len(sub.Items)),
	}
	for i, line := range sub.Items {
		h.Lines[i] = HandoffLine{
			ProductID:     line.ProductID,
			Name:          line.Name,
			Specification: line.Specification,
			Price:         line.Price,
			Quantity:      line.Quantity,
		}
	}
	return h
}

// OrderPlaced is published after the backend accepted an order
type OrderPlaced struct {
	OrderNumber string          `json:"order_number"`
	UserID      uint            `json:"user_id"`
	Items       []OrderLine     `json:"items"`
	CouponID    *int64          `json:"coupon_id,omitempty"`
	MemberTier  string          `json:"member_tier"`
	GoodsAmount decimal.Decimal `json:"goods_amount"`
	Total       decimal.Decimal `json:"total"`
	PlacedAt    time.Time       `json:"placed_at"`
}
