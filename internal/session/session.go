package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	CtxCartIDKey = "session_cart_id"

	cookieName        = "storefront"
	keyCartID         = "sessionCartId"
	keyBeforeSignInID = "beforeSigninSessionCartId"
)

type Manager struct {
	store sessions.Store
}

func NewManager(secret string, maxAge time.Duration, secure bool) *Manager {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(int(maxAge.Seconds()))
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	return &Manager{store: store}
}

// Middleware makes sure every visitor carries a session cart id, minting one
// on the first request.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// a decode error still yields a fresh session
		s, _ := m.store.Get(c.Request, cookieName)
		id, _ := s.Values[keyCartID].(string)
		if id == "" {
			id = uuid.NewString()
			s.Values[keyCartID] = id
			if err := s.Save(c.Request, c.Writer); err != nil {
				slog.ErrorContext(c.Request.Context(), "save session", "error", err)
			}
		}
		c.Set(CtxCartIDKey, id)
		c.Next()
	}
}

// SwitchCart points the visitor at another cart, remembering the one used
// before sign-in.
func (m *Manager) SwitchCart(c *gin.Context, cartID, previousID string) error {
	s, _ := m.store.Get(c.Request, cookieName)
	s.Values[keyCartID] = cartID
	if previousID != "" {
		s.Values[keyBeforeSignInID] = previousID
	}
	if err := s.Save(c.Request, c.Writer); err != nil {
		return err
	}
	c.Set(CtxCartIDKey, cartID)
	return nil
}

// Reset gives the visitor a new anonymous cart. Called on sign-out.
func (m *Manager) Reset(c *gin.Context) error {
	return m.SwitchCart(c, uuid.NewString(), "")
}

// BeforeSignInCartID returns the anonymous cart id that was replaced at sign-in.
func (m *Manager) BeforeSignInCartID(c *gin.Context) string {
	s, _ := m.store.Get(c.Request, cookieName)
	id, _ := s.Values[keyBeforeSignInID].(string)
	return id
}

func CartID(c *gin.Context) string {
	return c.GetString(CtxCartIDKey)
}
