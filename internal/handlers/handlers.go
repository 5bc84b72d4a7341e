// Package handlers serves the site pages and the account forms.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"uk.co.dudmesh.emprendenet/internal/model"
	"uk.co.dudmesh.emprendenet/internal/service/account"
	"uk.co.dudmesh.emprendenet/internal/session"
	"uk.co.dudmesh.emprendenet/internal/views"
)

const (
	loginPath = "/iniciar-sesion-registro"
	panelPath = "/usuario/panel-usuario"
)

type UserService interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type AccountService interface {
	Login(ctx context.Context, req account.LoginRequest, session account.Session) (*model.User, model.Problem, error)
	Register(ctx context.Context, req account.RegisterRequest, session account.Session) (*model.User, model.Problem, error)
	ChangePassword(ctx context.Context, req account.ChangePasswordRequest, session account.Session) (model.Problem, error)
	EditProfile(ctx context.Context, req account.EditProfileRequest) (model.Problem, error)
	DeleteAccount(ctx context.Context, req account.DeleteAccountRequest, session account.Session) (model.Problem, error)
}

type Sessions interface {
	Bind(c echo.Context) *session.Binding
}

// currentUser loads the user of the request identity, nil when there is none
// or the user no longer exists.
func currentUser(c echo.Context, users UserService) (*model.User, error) {
	identity := session.Current(c)
	if !identity.Authenticated() {
		return nil, nil
	}
	user, err := users.GetByID(c.Request().Context(), identity.UserID.String())
	if err != nil {
		if errors.Is(err, model.ErrorUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func newPage(c echo.Context, user *model.User) *views.Page {
	page := &views.Page{
		Path:    c.Request().URL.Path,
		Message: model.MessageCode(c.QueryParam("m")).Text(),
	}
	if user != nil {
		page.UserName = user.Name
	}
	return page
}

func render(c echo.Context, users UserService, status int, name string, page func(*views.Page)) error {
	user, err := currentUser(c, users)
	if err != nil {
		return err
	}
	p := newPage(c, user)
	if page != nil {
		page(p)
	}
	return c.Render(status, name, p)
}

// returnPath is the p parameter when it is a path on this site, / otherwise.
func returnPath(c echo.Context) string {
	p := c.FormValue("p")
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.ContainsRune(p, '\\') {
		return "/"
	}
	return p
}

func withMessage(path string, code model.MessageCode) string {
	u, err := url.Parse(path)
	if err != nil {
		return "/?m=" + string(code)
	}
	query := u.Query()
	query.Set("m", string(code))
	u.RawQuery = query.Encode()
	return u.String()
}

func redirectToLogin(c echo.Context) error {
	target := loginPath + "?m=" + string(model.MessageMustLogIn) + "&p=" + url.QueryEscape(c.Request().URL.Path)
	return c.Redirect(http.StatusFound, target)
}

// RequireSession sends anonymous visitors to the login page, returning them
// to the requested path afterwards.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !session.Current(c).Authenticated() {
				return redirectToLogin(c)
			}
			return next(c)
		}
	}
}

// RequireOwner only lets the user named by the id parameter through.
func RequireOwner() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Param("id")
			if session.Current(c).UserID.String() != id {
				return c.Redirect(http.StatusFound, withMessage("/usuario/"+url.PathEscape(id)+"/perfil", model.MessageWrongUser))
			}
			return next(c)
		}
	}
}

// ErrorHandler renders the not found page and leaves every other error to
// next.
func ErrorHandler(users UserService, next echo.HTTPErrorHandler) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var he *echo.HTTPError
		if c.Response().Committed || !errors.As(err, &he) || he.Code != http.StatusNotFound {
			next(err, c)
			return
		}
		if err := render(c, users, http.StatusNotFound, "error-404.html", nil); err != nil {
			next(err, c)
		}
	}
}

func notFound(c echo.Context, users UserService, problem model.Problem) error {
	return render(c, users, http.StatusNotFound, "error-404.html", func(p *views.Page) {
		p.Error = problem.HTML()
	})
}
