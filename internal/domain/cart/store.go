// internal/domain/cart/store.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPersistence wraps failures of the persistence adapter. The in-memory cart keeps the change.
	ErrPersistence = errors.New("cart could not be persisted")
	// ErrInvalidProduct is returned when a product snapshot has no id
	ErrInvalidProduct = errors.New("product id is required")
	// ErrProductUnavailable is returned when the catalog has no sellable product for an id
	ErrProductUnavailable = errors.New("product is not available")
)

// Persistence loads and saves a full cart snapshot
type Persistence interface {
	Load(ctx context.Context) ([]LineItem, error)
	Save(ctx context.Context, items []LineItem) error
}

// Store holds the ordered line items of one cart
type Store struct {
	items       []LineItem
	persistence Persistence
	notify      BadgeNotifier
	now         func() time.Time
	pending     bool
}

// NewStore creates an empty store
func NewStore(persistence Persistence, notify BadgeNotifier) *Store {
	return &Store{
		persistence: persistence,
		notify:      notify,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// LoadStore creates a store from the persisted snapshot.
// Entries without a product id are dropped and quantities below one are raised to one.
func LoadStore(ctx context.Context, persistence Persistence, notify BadgeNotifier) (*Store, error) {
	s := NewStore(persistence, notify)

	items, err := persistence.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	for _, item := range items {
		if item.Product.ID <= 0 {
			continue
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if i := s.index(item.Product.ID); i >= 0 {
			s.items[i].Quantity += item.Quantity
			continue
		}
		s.items = append(s.items, item)
	}

	return s, nil
}

// Items returns a copy of the line items in insertion order
func (s *Store) Items() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Selected returns a copy of the selected line items
func (s *Store) Selected() []LineItem {
	var out []LineItem
	for _, item := range s.items {
		if item.Selected {
			out = append(out, item)
		}
	}
	return out
}

// Count returns the badge count: total quantity over all items
func (s *Store) Count() int {
	return TotalQuantity(s.items)
}

// Summary aggregates the current items
func (s *Store) Summary() Summary {
	return Aggregate(s.items)
}

// Add merges qty of product into the cart. A repeat add keeps the first snapshot.
func (s *Store) Add(ctx context.Context, product ProductRef, qty int) error {
	if product.ID <= 0 {
		return ErrInvalidProduct
	}
	if qty < 1 {
		qty = 1
	}

	if i := s.index(product.ID); i >= 0 {
		s.items[i].Quantity += qty
	} else {
		s.items = append(s.items, LineItem{
			Product:  product,
			Quantity: qty,
			Selected: true,
			AddedAt:  s.now(),
		})
	}

	return s.commit(ctx)
}

// SetQuantity sets the quantity of a product; qty <= 0 removes it
func (s *Store) SetQuantity(ctx context.Context, productID int64, qty int) error {
	i := s.index(productID)
	if i < 0 {
		return nil
	}
	if qty <= 0 {
		s.removeAt(i)
		return s.commit(ctx)
	}
	if s.items[i].Quantity == qty {
		return nil
	}

	s.items[i].Quantity = qty
	return s.commit(ctx)
}

// Remove deletes a product from the cart
func (s *Store) Remove(ctx context.Context, productID int64) error {
	i := s.index(productID)
	if i < 0 {
		return nil
	}
	s.removeAt(i)
	return s.commit(ctx)
}

// SetSelected toggles the selection flag of one product
func (s *Store) SetSelected(ctx context.Context, productID int64, selected bool) error {
	i := s.index(productID)
	if i < 0 || s.items[i].Selected == selected {
		return nil
	}
	s.items[i].Selected = selected
	return s.commit(ctx)
}

// SetAllSelected sets the selection flag of every item
func (s *Store) SetAllSelected(ctx context.Context, selected bool) error {
	changed := false
	for i := range s.items {
		if s.items[i].Selected != selected {
			s.items[i].Selected = selected
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.commit(ctx)
}

// ClearSelected removes every selected item and keeps the rest
func (s *Store) ClearSelected(ctx context.Context) error {
	kept := s.items[:0]
	removed := 0
	for _, item := range s.items {
		if item.Selected {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	if removed == 0 {
		return nil
	}
	s.items = kept
	return s.commit(ctx)
}

// RemoveOrdered takes ordered quantities out of the cart. A line whose quantity
// drops to zero is removed; products no longer in the cart are skipped.
func (s *Store) RemoveOrdered(ctx context.Context, lines []OrderedLine) error {
	changed := false
	for _, line := range lines {
		i := s.index(line.ProductID)
		if i < 0 || line.Quantity < 1 {
			continue
		}
		if s.items[i].Quantity <= line.Quantity {
			s.removeAt(i)
		} else {
			s.items[i].Quantity -= line.Quantity
		}
		changed = true
	}
	if !changed {
		return nil
	}
	return s.commit(ctx)
}

// Merge folds other items into the cart: quantities add up, new items keep their selection flag
func (s *Store) Merge(ctx context.Context, items []LineItem) error {
	changed := false
	for _, item := range items {
		if item.Product.ID <= 0 || item.Quantity < 1 {
			continue
		}
		if i := s.index(item.Product.ID); i >= 0 {
			s.items[i].Quantity += item.Quantity
		} else {
			s.items = append(s.items, item)
		}
		changed = true
	}
	if !changed {
		return nil
	}
	return s.commit(ctx)
}

// Clear removes every item
func (s *Store) Clear(ctx context.Context) error {
	if len(s.items) == 0 {
		return nil
	}
	s.items = nil
	return s.commit(ctx)
}

// Pending reports whether the last save failed
func (s *Store) Pending() bool {
	return s.pending
}

// Flush saves the current snapshot
func (s *Store) Flush(ctx context.Context) error {
	if err := s.persistence.Save(ctx, s.Items()); err != nil {
		s.pending = true
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.pending = false
	return nil
}

type snapshot struct {
	items   []LineItem
	pending bool
}

func (s *Store) snapshot() snapshot {
	return snapshot{items: s.Items(), pending: s.pending}
}

// restore puts back an earlier snapshot without saving it
func (s *Store) restore(snap snapshot) {
	s.items = snap.items
	s.pending = snap.pending
	if s.notify != nil {
		s.notify(NewBadge(s.Count()))
	}
}

func (s *Store) commit(ctx context.Context) error {
	if s.notify != nil {
		s.notify(NewBadge(s.Count()))
	}
	return s.Flush(ctx)
}

func (s *Store) index(productID int64) int {
	for i := range s.items {
		if s.items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(i int) {
	s.items = append(s.items[:i], s.items[i+1:]...)
}
