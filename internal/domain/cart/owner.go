package cart

import (
	"encoding/hex"
	"errors"
	"strconv"

	"golang.org/x/crypto/blake2b"
)

// ErrNoOwner is returned when a request carries neither a user nor a session
var ErrNoOwner = errors.New("cart owner is required")

// Owner identifies a cart: a signed-in user or a guest session
type Owner struct {
	UserID    *uint
	SessionID string
}

// UserOwner returns the owner of a signed-in user's cart
func UserOwner(userID uint) Owner {
	return Owner{UserID: &userID}
}

// GuestOwner returns the owner of a guest session cart
func GuestOwner(sessionID string) Owner {
	return Owner{SessionID: sessionID}
}

// IsGuest reports whether the cart belongs to a guest session
func (o Owner) IsGuest() bool {
	return o.UserID == nil
}

// Validate checks the owner can address a cart
func (o Owner) Validate() error {
	if o.UserID == nil && o.SessionID == "" {
		return ErrNoOwner
	}
	return nil
}

// Key returns the storage key of the cart. Session ids are hashed so raw ids never reach storage.
func (o Owner) Key() string {
	if o.UserID != nil {
		return "user:" + strconv.FormatUint(uint64(*o.UserID), 10)
	}
	sum := blake2b.Sum256([]byte(o.SessionID))
	return "session:" + hex.EncodeToString(sum[:])
}

func (o Owner) String() string {
	return o.Key()
}

// Repository opens the persistence of an owner's cart
type Repository interface {
	Open(owner Owner) Persistence
}

// RoutedRepository keeps user carts and guest carts in different stores
type RoutedRepository struct {
	Users  Repository
	Guests Repository
}

// Open implements Repository
func (r RoutedRepository) Open(owner Owner) Persistence {
	if owner.IsGuest() || r.Users == nil {
		return r.Guests.Open(owner)
	}
	return r.Users.Open(owner)
}
