// Package session issues and validates the stateless "usuario" cookie. The
// cookie carries the user id and a digest of that user's current password
// hash, so nothing is stored server side and a password change revokes every
// outstanding cookie.
package session

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"uk.co.dudmesh.emprendenet/internal/boot"
	"uk.co.dudmesh.emprendenet/internal/model"
)

const (
	CookieName      = "usuario"
	separator       = "|"
	cookieHashLabel = "cookie_usuario"
)

type Users interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type Manager struct {
	users       Users
	ttl         time.Duration
	rememberTTL time.Duration
	secure      bool
	secretA     string
	secretB     string
	now         func() time.Time
}

func New(config *boot.Config, users Users) *Manager {
	return &Manager{
		users:       users,
		ttl:         config.Session.TTL,
		rememberTTL: config.Session.RememberTTL,
		secure:      config.Session.CookieSecure,
		secretA:     config.Session.CookieSecretA,
		secretB:     config.Session.CookieSecretB,
		now:         time.Now,
	}
}

// CookieHash is the digest proving a cookie was issued for user's current
// password.
func (m *Manager) CookieHash(user *model.User) string {
	digest := sha256.New()
	digest.Write([]byte(cookieHashLabel))
	digest.Write([]byte(user.ID.String()))
	digest.Write([]byte(user.PasswordHash))
	digest.Write([]byte(m.secretA))
	digest.Write([]byte(m.secretB))
	return hex.EncodeToString(digest.Sum(nil))
}

func (m *Manager) Token(user *model.User) string {
	return user.ID.String() + separator + m.CookieHash(user)
}

// Verify checks a cookie value without touching the response. The user is
// returned for an authenticated identity. Only database failures other than
// a missing user are returned as errors.
func (m *Manager) Verify(ctx context.Context, value string) (Identity, *model.User, error) {
	if value == "" {
		return Identity{State: StateAnonymous}, nil, nil
	}

	id, hash, ok := strings.Cut(value, separator)
	if !ok {
		return Identity{State: StateMalformed}, nil, nil
	}

	user, err := m.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrorUserNotFound) || errors.Is(err, model.ErrorInvalidID) {
			return Identity{State: StateRejected}, nil, nil
		}
		return Identity{State: StateRejected}, nil, err
	}

	if subtle.ConstantTimeCompare([]byte(hash), []byte(m.CookieHash(user))) != 1 {
		return Identity{State: StateRejected}, nil, nil
	}

	return Identity{State: StateAuthenticated, UserID: user.ID}, user, nil
}

// Resolve verifies the request cookie. A valid cookie of a user who did not
// ask to be remembered is issued again with a fresh short expiry.
func (m *Manager) Resolve(c echo.Context) (Identity, error) {
	value := ""
	if cookie, err := c.Cookie(CookieName); err == nil {
		value = cookie.Value
	}

	identity, user, err := m.Verify(c.Request().Context(), value)
	if err != nil {
		return identity, err
	}

	if identity.Authenticated() && !user.Remember {
		m.setCookie(c, value, m.ttl)
	}

	return identity, nil
}

// Issue sets the cookie for user, valid for the remember window when the
// user asked to be remembered. The request identity becomes user.
func (m *Manager) Issue(c echo.Context, user *model.User) {
	ttl := m.ttl
	if user.Remember {
		ttl = m.rememberTTL
	}
	m.setCookie(c, m.Token(user), ttl)
	setIdentity(c, Identity{State: StateAuthenticated, UserID: user.ID})
}

// Revoke expires the cookie and clears the request identity.
func (m *Manager) Revoke(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	setIdentity(c, Identity{State: StateAnonymous})
}

func (m *Manager) setCookie(c echo.Context, value string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  m.now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware resolves the identity once per request and stores it in the
// request context.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := m.Resolve(c)
			if err != nil {
				return err
			}
			setIdentity(c, identity)
			return next(c)
		}
	}
}

// Binding ties a Manager to one request.
type Binding struct {
	manager *Manager
	c       echo.Context
}

func (m *Manager) Bind(c echo.Context) *Binding {
	return &Binding{m, c}
}

func (b *Binding) Issue(user *model.User) {
	b.manager.Issue(b.c, user)
}

func (b *Binding) Revoke() {
	b.manager.Revoke(b.c)
}
