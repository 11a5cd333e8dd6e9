// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/freshmilk-storefront/internal/config"
	"github.com/your-org/freshmilk-storefront/internal/domain/cart"
	"github.com/your-org/freshmilk-storefront/internal/interfaces/http/middleware"
)

// AddToCartRequest names the product to add. With a catalog configured only the id and
// quantity are used; otherwise the snapshot fields must be complete.
type AddToCartRequest struct {
	ProductID     int64            `json:"product_id" binding:"required,gt=0"`
	Name          string           `json:"name" binding:"max=255"`
	Specification string           `json:"specification" binding:"max=255"`
	CoverImage    string           `json:"cover_image" binding:"max=500"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	Quantity      int              `json:"quantity"`
}

// UpdateQuantityRequest sets a line item quantity; zero or less removes it
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// SelectionRequest sets a selected flag
type SelectionRequest struct {
	Selected *bool `json:"selected" binding:"required"`
}

// CartHandler handles cart endpoints
type CartHandler struct {
	carts    *cart.Service
	catalog  cart.Catalog
	sessions sessions
	logger   *logrus.Logger
}

// NewCartHandler creates a new cart handler. A nil catalog trusts the snapshot in the request.
func NewCartHandler(carts *cart.Service, catalog cart.Catalog, cfg *config.Config, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		catalog:  catalog,
		sessions: sessions{config: cfg},
		logger:   logger,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.carts.Get(c.Request.Context(), h.sessions.owner(c))
	h.respond(c, view, err, "Cart retrieved successfully", "Failed to retrieve cart")
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	badge, err := h.carts.Badge(c.Request.Context(), h.sessions.owner(c))
	if err != nil {
		respondError(c, h.logger, "Failed to get cart count", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart count retrieved successfully",
		"data":    BadgeResponse{Count: badge.Count, Text: badge.Text},
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	product, ok := h.product(c, req)
	if !ok {
		return
	}

	view, err := h.carts.Add(c.Request.Context(), h.sessions.owner(c), product, req.Quantity)
	h.respond(c, view, err, "Item added to cart successfully", "Failed to add item to cart")
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	view, err := h.carts.SetQuantity(c.Request.Context(), h.sessions.owner(c), productID, *req.Quantity)
	h.respond(c, view, err, "Cart item updated successfully", "Failed to update cart item")
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	view, err := h.carts.Remove(c.Request.Context(), h.sessions.owner(c), productID)
	h.respond(c, view, err, "Item removed from cart successfully", "Failed to remove cart item")
}

// SelectItem handles PUT /cart/items/:id/selected
func (h *CartHandler) SelectItem(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	view, err := h.carts.SetSelected(c.Request.Context(), h.sessions.owner(c), productID, *req.Selected)
	h.respond(c, view, err, "Cart item selection updated", "Failed to update selection")
}

// SelectAll handles PUT /cart/selection
func (h *CartHandler) SelectAll(c *gin.Context) {
	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	view, err := h.carts.SetAllSelected(c.Request.Context(), h.sessions.owner(c), *req.Selected)
	h.respond(c, view, err, "Cart selection updated", "Failed to update selection")
}

// ClearSelected handles DELETE /cart/selected
func (h *CartHandler) ClearSelected(c *gin.Context) {
	view, err := h.carts.ClearSelected(c.Request.Context(), h.sessions.owner(c))
	h.respond(c, view, err, "Selected items removed", "Failed to remove selected items")
}

// MergeGuestCart handles POST /cart/merge - called after login with the guest session
func (h *CartHandler) MergeGuestCart(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	user := cart.UserOwner(userID)
	sessionID := h.sessions.id(c, false)
	if sessionID == "" {
		view, err := h.carts.Get(c.Request.Context(), user)
		h.respond(c, view, err, "No guest cart to merge", "Failed to retrieve cart")
		return
	}

	view, err := h.carts.Merge(c.Request.Context(), user, cart.GuestOwner(sessionID))
	h.respond(c, view, err, "Guest cart merged successfully", "Failed to merge cart")
}

// product resolves the snapshot stored in the cart
func (h *CartHandler) product(c *gin.Context, req AddToCartRequest) (cart.ProductRef, bool) {
	if h.catalog != nil {
		product, err := h.catalog.Product(c.Request.Context(), req.ProductID)
		if err != nil {
			respondError(c, h.logger, "Failed to look up product", err)
			return cart.ProductRef{}, false
		}
		return product, true
	}

	if req.Name == "" || !req.Price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Product name and a positive price are required",
		})
		return cart.ProductRef{}, false
	}
	if req.OriginalPrice != nil && req.OriginalPrice.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Price must not be negative",
		})
		return cart.ProductRef{}, false
	}

	return cart.ProductRef{
		ID:            req.ProductID,
		Name:          req.Name,
		Specification: req.Specification,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		CoverImage:    req.CoverImage,
	}, true
}

func (h *CartHandler) respond(c *gin.Context, view *cart.View, err error, success, failure string) {
	if err != nil && !(errors.Is(err, cart.ErrPersistence) && view != nil) {
		respondError(c, h.logger, failure, err)
		return
	}

	resp := newCartResponse(view)
	if err != nil {
		resp.Warning = persistenceWarning
	}

	c.JSON(http.StatusOK, gin.H{
		"message": success,
		"data":    resp,
	})
}

func productIDParam(c *gin.Context) (int64, bool) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || productID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return 0, false
	}
	return productID, true
}
