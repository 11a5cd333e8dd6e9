// internal/interfaces/http/handlers/response.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/freshmilk-storefront/internal/domain/cart"
	"github.com/your-org/freshmilk-storefront/internal/domain/checkout"
	"github.com/your-org/freshmilk-storefront/internal/domain/coupon"
	"github.com/your-org/freshmilk-storefront/internal/domain/pricing"
	"github.com/your-org/freshmilk-storefront/internal/infrastructure/backend"
)

// persistenceWarning is attached to responses whose change is kept in memory only
const persistenceWarning = "Cart changes could not be saved and will be retried"

func money(d decimal.Decimal) string {
	return pricing.Format(d)
}

// CartItemResponse is a line item as rendered to the storefront
type CartItemResponse struct {
	ProductID     int64   `json:"product_id"`
	Name          string  `json:"name"`
	Specification string  `json:"specification,omitempty"`
	CoverImage    string  `json:"cover_image,omitempty"`
	Price         string  `json:"price"`
	OriginalPrice *string `json:"original_price,omitempty"`
	Quantity      int     `json:"quantity"`
	Selected      bool    `json:"selected"`
	Subtotal      string  `json:"subtotal"`
}

// BadgeResponse is the cart icon counter
type BadgeResponse struct {
	Count int    `json:"count"`
	Text  string `json:"text"`
}

// CartResponse is the cart page payload
type CartResponse struct {
	Items         []CartItemResponse `json:"items"`
	GoodsAmount   string             `json:"goods_amount"`
	SelectedCount int                `json:"selected_count"`
	AllSelected   bool               `json:"all_selected"`
	Badge         BadgeResponse      `json:"badge"`
	Warning       string             `json:"warning,omitempty"`
}

func newCartItemResponses(items []cart.LineItem) []CartItemResponse {
	out := make([]CartItemResponse, len(items))
	for i, item := range items {
		out[i] = CartItemResponse{
			ProductID:     item.Product.ID,
			Name:          item.Product.Name,
			Specification: item.Product.Specification,
			CoverImage:    item.Product.CoverImage,
			Price:         money(item.Product.Price),
			Quantity:      item.Quantity,
			Selected:      item.Selected,
			Subtotal:      money(item.Subtotal()),
		}
		if item.Product.OriginalPrice != nil {
			original := money(*item.Product.OriginalPrice)
			out[i].OriginalPrice = &original
		}
	}
	return out
}

func newCartResponse(view *cart.View) CartResponse {
	return CartResponse{
		Items:         newCartItemResponses(view.Items),
		GoodsAmount:   money(view.Summary.GoodsAmount),
		SelectedCount: view.Summary.SelectedCount,
		AllSelected:   view.Summary.AllSelected,
		Badge:         BadgeResponse{Count: view.Badge.Count, Text: view.Badge.Text},
	}
}

// DraftResponse is the price breakdown of a checkout
type DraftResponse struct {
	GoodsAmount    string `json:"goods_amount"`
	ShippingFee    string `json:"shipping_fee"`
	FreeShipping   bool   `json:"free_shipping"`
	MemberTier     string `json:"member_tier"`
	MemberDiscount string `json:"member_discount"`
	CouponID       *int64 `json:"coupon_id,omitempty"`
	CouponDiscount string `json:"coupon_discount"`
	TotalDiscount  string `json:"total_discount"`
	Total          string `json:"total"`
}

func newDraftResponse(d pricing.OrderDraft) DraftResponse {
	return DraftResponse{
		GoodsAmount:    money(d.GoodsAmount),
		ShippingFee:    money(d.ShippingFee),
		FreeShipping:   d.ShippingFee.IsZero(),
		MemberTier:     string(d.MemberTier),
		MemberDiscount: money(d.MemberDiscount),
		CouponID:       d.CouponID,
		CouponDiscount: money(d.CouponDiscount),
		TotalDiscount:  money(d.TotalDiscount),
		Total:          money(d.Total),
	}
}

// CouponResponse is a coupon in the picker
type CouponResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Amount      string  `json:"amount"`
	MinAmount   string  `json:"min_amount"`
	ExpireDate  *string `json:"expire_date,omitempty"`
	Usable      bool    `json:"usable"`
	Reason      string  `json:"reason,omitempty"`
}

func newCouponResponse(c coupon.Coupon) CouponResponse {
	resp := CouponResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Amount:      money(c.Amount),
		MinAmount:   money(c.MinAmount),
	}
	if c.ExpiresAt != nil {
		expires := c.ExpiresAt.Format("2006-01-02")
		resp.ExpireDate = &expires
	}
	return resp
}

func newCouponOptions(options []coupon.Option) []CouponResponse {
	out := make([]CouponResponse, len(options))
	for i, o := range options {
		out[i] = newCouponResponse(o.Coupon)
		out[i].Usable = o.Usable
		out[i].Reason = o.Reason
	}
	return out
}

// OrderLineResponse is one line of a placed order
type OrderLineResponse struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

func newOrderLineResponses(lines []checkout.OrderLine) []OrderLineResponse {
	out := make([]OrderLineResponse, len(lines))
	for i, l := range lines {
		out[i] = OrderLineResponse{ProductID: l.ProductID, Name: l.Name, Price: money(l.Price), Quantity: l.Quantity}
	}
	return out
}

// errorStatus maps service errors to HTTP status codes
func errorStatus(err error) int {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, cart.ErrInvalidProduct),
		errors.Is(err, cart.ErrNoOwner),
		errors.Is(err, checkout.ErrAddressRequired),
		errors.Is(err, checkout.ErrEmptySelection):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrLoginRequired):
		return http.StatusUnauthorized
	case errors.Is(err, cart.ErrProductUnavailable),
		errors.Is(err, checkout.ErrCouponNotFound),
		errors.Is(err, checkout.ErrReceiptNotFound):
		return http.StatusNotFound
	case errors.Is(err, coupon.ErrCouponUnavailable),
		errors.Is(err, coupon.ErrCouponExpired),
		errors.Is(err, coupon.ErrBelowMinimum):
		return http.StatusUnprocessableEntity
	case errors.As(err, &apiErr) && apiErr.Unauthorized():
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, checkout.ErrOrderSubmission), errors.As(err, &apiErr):
		return http.StatusBadGateway
	case errors.Is(err, cart.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Server errors are logged and
// their details hidden.
func respondError(c *gin.Context, logger *logrus.Logger, message string, err error) {
	status := errorStatus(err)
	_ = c.Error(err)

	if status >= http.StatusInternalServerError {
		logger.WithError(err).WithField("path", c.FullPath()).Error(message)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}
