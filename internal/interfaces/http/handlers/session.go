package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/freshmilk-storefront/internal/config"
	"github.com/your-org/freshmilk-storefront/internal/domain/cart"
	"github.com/your-org/freshmilk-storefront/internal/interfaces/http/middleware"
)

type sessions struct {
	config *config.Config
}

// owner resolves the cart owner: the signed-in user, otherwise the guest session
func (s sessions) owner(c *gin.Context) cart.Owner {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		return cart.UserOwner(userID)
	}
	return cart.GuestOwner(s.id(c, true))
}

// id reads the guest session from the header, then the cookie.
// With create set a new session is issued when neither is present.
func (s sessions) id(c *gin.Context, create bool) string {
	if id := c.GetHeader(s.config.Cart.SessionHeader); id != "" {
		return id
	}
	if id, err := c.Cookie(s.config.Cart.SessionCookie); err == nil && id != "" {
		return id
	}
	if !create {
		return ""
	}

	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.config.Cart.SessionCookie, id, int(s.config.Cart.GuestTTL.Seconds()), "/", "", s.config.IsProduction(), true)
	c.Header(s.config.Cart.SessionHeader, id)
	return id
}
