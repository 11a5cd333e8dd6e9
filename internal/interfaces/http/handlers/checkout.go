// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/freshmilk-storefront/internal/config"
	"github.com/your-org/freshmilk-storefront/internal/domain/cart"
	"github.com/your-org/freshmilk-storefront/internal/domain/checkout"
	"github.com/your-org/freshmilk-storefront/internal/interfaces/http/middleware"
)

const idempotencyHeader = "Idempotency-Key"

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkout *checkout.Service
	sessions sessions
	logger   *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(svc *checkout.Service, cfg *config.Config, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: svc,
		sessions: sessions{config: cfg},
		logger:   logger,
	}
}

// Preview handles GET /checkout/preview?coupon_id=
func (h *CheckoutHandler) Preview(c *gin.Context) {
	couponID, ok := couponIDQuery(c)
	if !ok {
		return
	}

	customer, signedIn := customerFromContext(c)
	var cust *checkout.Customer
	if signedIn {
		cust = &customer
	}

	quote, err := h.checkout.Preview(c.Request.Context(), h.sessions.owner(c), cust, couponID)
	if err != nil {
		respondError(c, h.logger, "Failed to price checkout", err)
		return
	}

	data := gin.H{
		"items": newCartItemResponses(quote.Items),
		"draft": newDraftResponse(quote.Draft),
	}
	if quote.Coupon != nil {
		data["coupon"] = newCouponResponse(*quote.Coupon)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout priced successfully",
		"data":    data,
	})
}

// ListCoupons handles GET /coupons
func (h *CheckoutHandler) ListCoupons(c *gin.Context) {
	customer, ok := requireCustomer(c)
	if !ok {
		return
	}

	usable, unusable, err := h.checkout.UsableCoupons(c.Request.Context(), customer)
	if err != nil {
		respondError(c, h.logger, "Failed to list coupons", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupons retrieved successfully",
		"data": gin.H{
			"usable":   newCouponOptions(usable),
			"unusable": newCouponOptions(unusable),
		},
	})
}

// PlaceOrder handles POST /checkout
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	customer, ok := requireCustomer(c)
	if !ok {
		return
	}

	var req checkout.PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	req.IdempotencyKey = c.GetHeader(idempotencyHeader)

	placement, err := h.checkout.Place(c.Request.Context(), customer, req)
	if err != nil && !(errors.Is(err, cart.ErrPersistence) && placement != nil) {
		respondError(c, h.logger, "Failed to place order", err)
		return
	}

	data := gin.H{
		"order_number": placement.OrderNumber,
		"draft":        newDraftResponse(placement.Draft),
		"items":        newOrderLineResponses(placement.Items),
		"placed_at":    placement.PlacedAt,
	}
	if err != nil {
		data["warning"] = persistenceWarning
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    data,
	})
}

// DownloadReceipt handles GET /checkout/receipts/:number
func (h *CheckoutHandler) DownloadReceipt(c *gin.Context) {
	customer, ok := requireCustomer(c)
	if !ok {
		return
	}

	pdf, handoff, err := h.checkout.Receipt(c.Request.Context(), customer, c.Param("number"))
	if err != nil {
		respondError(c, h.logger, "Failed to generate receipt", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", handoff.OrderNumber))
	c.Header("Content-Length", strconv.Itoa(len(pdf)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func customerFromContext(c *gin.Context) (checkout.Customer, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return checkout.Customer{}, false
	}
	return checkout.Customer{UserID: userID, Token: middleware.GetAccessTokenFromContext(c)}, true
}

func requireCustomer(c *gin.Context) (checkout.Customer, bool) {
	customer, ok := customerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
	}
	return customer, ok
}

func couponIDQuery(c *gin.Context) (*int64, bool) {
	raw := c.Query("coupon_id")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid coupon ID",
		})
		return nil, false
	}
	return &id, true
}
