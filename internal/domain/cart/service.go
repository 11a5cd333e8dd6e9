// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// View is a cart snapshot returned by every service operation
type View struct {
	Items   []LineItem `json:"items"`
	Summary Summary    `json:"summary"`
	Badge   Badge      `json:"badge"`
}

func newView(s *Store) *View {
	return &View{
		Items:   s.Items(),
		Summary: s.Summary(),
		Badge:   NewBadge(s.Count()),
	}
}

// Service handles cart business logic
type Service struct {
	repo    Repository
	logger  *logrus.Logger
	locks   *keyedMutex
	onBadge func(Owner, Badge)

	mu sync.Mutex
	// stores whose last save failed; they stay authoritative until a save succeeds
	dirty map[string]*Store
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithBadgeHook registers a callback that receives the badge after every mutation
func WithBadgeHook(hook func(Owner, Badge)) ServiceOption {
	return func(s *Service) {
		s.onBadge = hook
	}
}

// NewService creates a new cart service
func NewService(repo Repository, logger *logrus.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		repo:   repo,
		logger: logger,
		locks:  newKeyedMutex(),
		dirty:  make(map[string]*Store),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the owner's cart
func (s *Service) Get(ctx context.Context, owner Owner) (*View, error) {
	var view *View
	err := s.withStore(ctx, owner, func(store *Store) error {
		view = newView(store)
		return nil
	})
	return view, err
}

// Badge returns the owner's badge
func (s *Service) Badge(ctx context.Context, owner Owner) (Badge, error) {
	view, err := s.Get(ctx, owner)
	if view == nil {
		return NewBadge(0), err
	}
	return view.Badge, err
}

// SelectedItems returns the selected items of the owner's cart
func (s *Service) SelectedItems(ctx context.Context, owner Owner) ([]LineItem, error) {
	var items []LineItem
	err := s.withStore(ctx, owner, func(store *Store) error {
		items = store.Selected()
		return nil
	})
	return items, err
}

// Add adds qty of a product
func (s *Service) Add(ctx context.Context, owner Owner, product ProductRef, qty int) (*View, error) {
	return s.mutate(ctx, owner, func(store *Store) error {
		return store.Add(ctx, product, qty)
	})
}

// SetQuantity sets the quantity of a product; qty <= 0 removes it
func (s *Service) SetQuantity(ctx context.Context, owner Owner, productID int64, qty int) (*View, error) {
	return s.mutate(ctx, owner, func(store *Store) error {
		return store.SetQuantity(ctx, productID, qty)
	})
}

// Remove deletes a product from the cart
func (s *Service) Remove(ctx context.Context, owner Owner, productID int64) (*View, error) {
	return s.mutate(ctx, owner, func(store *Store) error {
		return store.Remove(ctx, productID)
	})
}

// SetSelected toggles one product's selection
func (s *Service) SetSelected(ctx context.Context, owner Owner, productID int64, selected bool) (*View, error) {
	return s.mutate(ctx, owner, func(store *Store) error {
		return store.SetSelected(ctx, productID, selected)
	})
}

// SetAllSelected toggles the selection of every item
func (s *Service) SetAllSelected(ctx context.Context, owner Owner, selected bool) (*View, error) {
	return s.mutate(ctx, owner, func(store *Store) error {
		return store.SetAllSelected(ctx, selected)
	})
}

// ClearSelected removes the selected items
func (s *Service) ClearSelected(ctx context.Context, owner Owner) (*View, error) {
	return s.mutate(ctx, owner, func(store *Store) error {
		return store.ClearSelected(ctx)
	})
}

// RemoveOrdered takes the ordered lines out of the owner's cart.
// Items changed or added while the order was being placed are kept.
func (s *Service) RemoveOrdered(ctx context.Context, owner Owner, lines []OrderedLine) (*View, error) {
	return s.mutate(ctx, owner, func(store *Store) error {
		return store.RemoveOrdered(ctx, lines)
	})
}

// Merge folds a guest cart into a user cart and empties the guest cart.
// If the merged user cart cannot be saved, both carts are left as they were.
func (s *Service) Merge(ctx context.Context, user, guest Owner) (*View, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := guest.Validate(); err != nil {
		return nil, err
	}
	if user.Key() == guest.Key() {
		return s.Get(ctx, user)
	}

	unlock := s.locks.LockAll(user.Key(), guest.Key())
	defer unlock()

	guestStore, err := s.open(ctx, guest)
	if err != nil {
		return nil, err
	}
	userStore, err := s.open(ctx, user)
	if err != nil {
		return nil, err
	}

	guestItems := guestStore.Items()
	if len(guestItems) == 0 {
		return newView(userStore), nil
	}

	before := userStore.snapshot()
	if err := userStore.Merge(ctx, guestItems); err != nil {
		userStore.restore(before)
		s.track(user, userStore)
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user":  user.Key(),
			"guest": guest.Key(),
		}).Warn("Guest cart merge not saved, guest cart kept")
		return nil, err
	}
	s.track(user, userStore)

	clearErr := guestStore.Clear(ctx)
	s.track(guest, guestStore)

	s.logger.WithFields(logrus.Fields{
		"user":  user.Key(),
		"guest": guest.Key(),
		"items": len(guestItems),
	}).Info("Guest cart merged")

	return newView(userStore), clearErr
}

func (s *Service) mutate(ctx context.Context, owner Owner, fn func(*Store) error) (*View, error) {
	var view *View
	err := s.withStore(ctx, owner, func(store *Store) error {
		err := fn(store)
		if err == nil || errors.Is(err, ErrPersistence) {
			view = newView(store)
		}
		return err
	})
	return view, err
}

func (s *Service) withStore(ctx context.Context, owner Owner, fn func(*Store) error) error {
	if err := owner.Validate(); err != nil {
		return err
	}

	unlock := s.locks.Lock(owner.Key())
	defer unlock()

	store, err := s.open(ctx, owner)
	if err != nil {
		return err
	}

	err = fn(store)
	s.track(owner, store)
	if errors.Is(err, ErrPersistence) {
		s.logger.WithError(err).WithField("owner", owner.Key()).Warn("Cart kept in memory after failed save")
	}
	return err
}

// open returns the unsaved in-memory store if there is one, or loads the cart
func (s *Service) open(ctx context.Context, owner Owner) (*Store, error) {
	s.mu.Lock()
	store, ok := s.dirty[owner.Key()]
	s.mu.Unlock()

	if ok {
		if err := store.Flush(ctx); err != nil {
			s.logger.WithError(err).WithField("owner", owner.Key()).Debug("Retrying cart save failed")
		}
		return store, nil
	}

	return LoadStore(ctx, s.repo.Open(owner), s.notifier(owner))
}

func (s *Service) notifier(owner Owner) BadgeNotifier {
	if s.onBadge == nil {
		return nil
	}
	return func(badge Badge) {
		s.onBadge(owner, badge)
	}
}

func (s *Service) track(owner Owner, store *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if store.Pending() {
		s.dirty[owner.Key()] = store
		return
	}
	delete(s.dirty, owner.Key())
}
