package postgres

import (
	"context"
	"fmt"

	"github.com/your-org/freshmilk-storefront/internal/domain/cart"
	"gorm.io/gorm"
)

// CartRepository keeps signed-in users' carts in the cart_items table
type CartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// Open implements cart.Repository. Only user owners are stored here.
func (r *CartRepository) Open(owner cart.Owner) cart.Persistence {
	return &userCart{db: r.db, owner: owner}
}

type userCart struct {
	db    *gorm.DB
	owner cart.Owner
}

func (c *userCart) userID() (uint, error) {
	if c.owner.UserID == nil {
		return 0, fmt.Errorf("guest cart %s cannot be stored in the database", c.owner.Key())
	}
	return *c.owner.UserID, nil
}

func (c *userCart) Load(ctx context.Context) ([]cart.LineItem, error) {
	userID, err := c.userID()
	if err != nil {
		return nil, err
	}

	var rows []cart.CartItem
	if err := c.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve user cart: %w", err)
	}

	items := make([]cart.LineItem, len(rows))
	for i, row := range rows {
		items[i] = row.LineItem()
	}
	return items, nil
}

// Save replaces the stored cart with items in one transaction
func (c *userCart) Save(ctx context.Context, items []cart.LineItem) error {
	userID, err := c.userID()
	if err != nil {
		return err
	}

	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&cart.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear user cart: %w", err)
		}
		if len(items) == 0 {
			return nil
		}

		rows := make([]cart.CartItem, len(items))
		for i, item := range items {
			rows[i] = cart.NewCartItem(userID, i, item)
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to save user cart: %w", err)
		}
		return nil
	})
}
