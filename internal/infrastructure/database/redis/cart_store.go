package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/freshmilk-storefront/internal/config"
	"github.com/your-org/freshmilk-storefront/internal/domain/cart"
)

// CartRepository keeps carts as JSON values with a sliding expiry
type CartRepository struct {
	client *Client
	prefix string
	ttl    time.Duration
}

// NewCartRepository creates a cart repository from cart configuration
func NewCartRepository(client *Client, cfg *config.Config) *CartRepository {
	return &CartRepository{
		client: client,
		prefix: cfg.Cart.KeyPrefix,
		ttl:    cfg.Cart.GuestTTL,
	}
}

// Open implements cart.Repository
func (r *CartRepository) Open(owner cart.Owner) cart.Persistence {
	return &cartSnapshot{repo: r, key: r.prefix + ":" + owner.Key()}
}

type cartSnapshot struct {
	repo *CartRepository
	key  string
}

func (s *cartSnapshot) Load(ctx context.Context) ([]cart.LineItem, error) {
	var session cart.SessionCart
	err := s.repo.client.GetJSON(ctx, s.key, &session)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session.LineItems(), nil
}

func (s *cartSnapshot) Save(ctx context.Context, items []cart.LineItem) error {
	if len(items) == 0 {
		return s.repo.client.Del(ctx, s.key)
	}
	return s.repo.client.SetJSON(ctx, s.key, cart.NewSessionCart(items, time.Now().UTC()), s.repo.ttl)
}
