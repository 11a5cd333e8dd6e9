package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/your-org/freshmilk-storefront/internal/domain/cart"
)

type productDetail struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"`
	Specification string              `json:"specification"`
	Price         decimal.Decimal     `json:"price"`
	OriginalPrice decimal.NullDecimal `json:"original_price"`
	CoverImage    string              `json:"cover_image"`
	IsActive      *bool               `json:"is_active"`
}

// Product returns the current snapshot of a product from GET /products/:id/.
// Unknown, inactive or unpriced products are reported as cart.ErrProductUnavailable.
func (c *Client) Product(ctx context.Context, id int64) (cart.ProductRef, error) {
	detail, err := do[productDetail](ctx, c, http.MethodGet, fmt.Sprintf("/products/%d/", id), nil, callOptions{})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return cart.ProductRef{}, fmt.Errorf("%w: %w", cart.ErrProductUnavailable, err)
		}
		return cart.ProductRef{}, err
	}

	if detail.IsActive != nil && !*detail.IsActive {
		return cart.ProductRef{}, fmt.Errorf("%w: product %d is inactive", cart.ErrProductUnavailable, id)
	}
	if !detail.Price.IsPositive() {
		return cart.ProductRef{}, fmt.Errorf("%w: product %d has no price", cart.ErrProductUnavailable, id)
	}

	product := cart.ProductRef{
		ID:            id,
		Name:          strings.TrimSpace(detail.Name),
		Specification: detail.Specification,
		Price:         detail.Price,
		CoverImage:    detail.CoverImage,
	}
	if detail.OriginalPrice.Valid {
		original := detail.OriginalPrice.Decimal
		product.OriginalPrice = &original
	}
	return product, nil
}
