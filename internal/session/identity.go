package session

import (
	"context"

	"github.com/labstack/echo/v4"
	"uk.co.dudmesh.emprendenet/internal/model"
)

type State int

const (
	StateAnonymous State = iota // no cookie
	StateMalformed
	StateRejected // unknown user or digest mismatch
	StateAuthenticated
)

type Identity struct {
	State  State
	UserID model.UserID
}

func (i Identity) Authenticated() bool {
	return i.State == StateAuthenticated
}

// Is reports whether the identity is authenticated as the given user.
func (i Identity) Is(id model.UserID) bool {
	return i.Authenticated() && i.UserID == id
}

type contextKey struct{}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, identity)
}

// FromContext returns the identity stored by the middleware, anonymous when
// there is none.
func FromContext(ctx context.Context) Identity {
	identity, ok := ctx.Value(contextKey{}).(Identity)
	if !ok {
		return Identity{State: StateAnonymous}
	}
	return identity
}

func Current(c echo.Context) Identity {
	return FromContext(c.Request().Context())
}

func setIdentity(c echo.Context, identity Identity) {
	req := c.Request()
	c.SetRequest(req.WithContext(WithIdentity(req.Context(), identity)))
}
