// internal/domain/cart/entity.go
package cart

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ProductRef is the product snapshot copied into the cart at add time
type ProductRef struct {
	ID            int64            `json:"product_id"`
	Name          string           `json:"name"`
	Specification string           `json:"specification"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	CoverImage    string           `json:"cover_image,omitempty"`
}

// OrderedLine is a quantity of a product handed to an order
type OrderedLine struct {
	ProductID int64
	Quantity  int
}

// Catalog resolves the current snapshot of a product
type Catalog interface {
	Product(ctx context.Context, id int64) (ProductRef, error)
}

// LineItem is one product in the cart
type LineItem struct {
	Product  ProductRef `json:"product"`
	Quantity int        `json:"quantity"`
	Selected bool       `json:"selected"`
	AddedAt  time.Time  `json:"added_at"`
}

// Subtotal returns price x quantity at full precision
func (i LineItem) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartItem represents a cart item stored in database for authenticated users
type CartItem struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	UserID        uint                `gorm:"not null;uniqueIndex:idx_cart_items_user_product" json:"user_id"`
	ProductID     int64               `gorm:"not null;uniqueIndex:idx_cart_items_user_product" json:"product_id"`
	Name          string              `gorm:"size:255;not null" json:"name"`
	Specification string              `gorm:"size:255" json:"specification"`
	Price         decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"price"`
	OriginalPrice decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"original_price"`
	CoverImage    string              `gorm:"size:500" json:"cover_image"`
	Quantity      int                 `gorm:"not null" json:"quantity"`
	Selected      bool                `gorm:"not null" json:"selected"`
	Position      int                 `gorm:"not null" json:"position"`
	AddedAt       time.Time           `gorm:"not null" json:"added_at"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// NewCartItem converts a line item into its database row
func NewCartItem(userID uint, position int, item LineItem) CartItem {
	row := CartItem{
		UserID:        userID,
		ProductID:     item.Product.ID,
		Name:          item.Product.Name,
		Specification: item.Product.Specification,
		Price:         item.Product.Price,
		CoverImage:    item.Product.CoverImage,
		Quantity:      item.Quantity,
		Selected:      item.Selected,
		Position:      position,
		AddedAt:       item.AddedAt,
	}
	if item.Product.OriginalPrice != nil {
		row.OriginalPrice = decimal.NewNullDecimal(*item.Product.OriginalPrice)
	}
	return row
}

// LineItem converts the row back into a line item
func (c CartItem) LineItem() LineItem {
	item := LineItem{
		Product: ProductRef{
			ID:            c.ProductID,
			Name:          c.Name,
			Specification: c.Specification,
			Price:         c.Price,
			CoverImage:    c.CoverImage,
		},
		Quantity: c.Quantity,
		Selected: c.Selected,
		AddedAt:  c.AddedAt,
	}
	if c.OriginalPrice.Valid {
		original := c.OriginalPrice.Decimal
		item.Product.OriginalPrice = &original
	}
	return item
}

// SessionCart represents a cart session for guest users (stored in Redis)
type SessionCart struct {
	Items     []SessionCartItem `json:"items"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// SessionCartItem represents a cart item for guest users.
// Selected is a pointer so entries written without the flag load as selected.
type SessionCartItem struct {
	ProductID     int64            `json:"product_id"`
	Name          string           `json:"name"`
	Specification string           `json:"specification,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	CoverImage    string           `json:"cover_image,omitempty"`
	Quantity      int              `json:"quantity"`
	Selected      *bool            `json:"selected,omitempty"`
	AddedAt       time.Time        `json:"added_at"`
}

// NewSessionCart converts line items into the guest session shape
func NewSessionCart(items []LineItem, updatedAt time.Time) SessionCart {
	out := SessionCart{
		Items:     make([]SessionCartItem, len(items)),
		UpdatedAt: updatedAt,
	}
	for i, item := range items {
		selected := item.Selected
		out.Items[i] = SessionCartItem{
			ProductID:     item.Product.ID,
			Name:          item.Product.Name,
			Specification: item.Product.Specification,
			Price:         item.Product.Price,
			OriginalPrice: item.Product.OriginalPrice,
			CoverImage:    item.Product.CoverImage,
			Quantity:      item.Quantity,
			Selected:      &selected,
			AddedAt:       item.AddedAt,
		}
	}
	return out
}

// LineItems converts the guest session back into line items
func (s SessionCart) LineItems() []LineItem {
	items := make([]LineItem, len(s.Items))
	for i, entry := range s.Items {
		selected := true
		if entry.Selected != nil {
			selected = *entry.Selected
		}
		items[i] = LineItem{
			Product: ProductRef{
				ID:            entry.ProductID,
				Name:          entry.Name,
				Specification: entry.Specification,
				Price:         entry.Price,
				OriginalPrice: entry.OriginalPrice,
				CoverImage:    entry.CoverImage,
			},
			Quantity: entry.Quantity,
			Selected: selected,
			AddedAt:  entry.AddedAt,
		}
	}
	return items
}
