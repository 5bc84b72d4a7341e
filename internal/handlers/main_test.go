package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"uk.co.dudmesh.emprendenet/internal/boot"
	"uk.co.dudmesh.emprendenet/internal/cache"
	"uk.co.dudmesh.emprendenet/internal/service/account"
	users "uk.co.dudmesh.emprendenet/internal/service/user"
	"uk.co.dudmesh.emprendenet/internal/session"
	"uk.co.dudmesh.emprendenet/internal/userstore"
	"uk.co.dudmesh.emprendenet/internal/views"
)

type site struct {
	server *echo.Echo
}

func newSite(t *testing.T) *site {
	t.Helper()
	ctx := context.Background()

	config, err := boot.LoadFrom(map[string]string{
		"DATA_DIR":          t.TempDir(),
		"BASE_URL":          "http://www.example.com/",
		"COOKIE_SECRET_A":   "c1",
		"COOKIE_SECRET_B":   "c2",
		"PASSWORD_SECRET_A": "p1",
		"PASSWORD_SECRET_B": "p2",
	})
	require.NoError(t, err)

	store, err := userstore.New(ctx, config)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	lru, err := cache.NewLRUStore(config.Cache.Size)
	require.NoError(t, err)

	userService := users.New(config, store, lru, cache.NewInvalidator(lru, config.Cache.Retries, time.Microsecond))
	sessions := session.New(config, userService)
	accounts := account.New(userService)

	renderer, err := views.New("")
	require.NoError(t, err)

	server := echo.New()
	server.Renderer = renderer
	server.HTTPErrorHandler = ErrorHandler(userService, server.DefaultHTTPErrorHandler)
	server.Use(sessions.Middleware())
	Routes(server, userService, accounts, sessions, config.BaseURL)

	return &site{server: server}
}

func (s *site) get(target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.server.ServeHTTP(rec, req)
	return rec
}

func (s *site) post(target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.server.ServeHTTP(rec, req)
	return rec
}

// sessionCookie is the last session cookie set by the response, the one a
// browser keeps.
func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	var last *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == session.CookieName {
			last = cookie
		}
	}
	return last
}

// register signs a new user up and returns its cookie and id.
func (s *site) register(t *testing.T, name string) (*http.Cookie, string) {
	t.Helper()
	rec := s.post(loginPath, url.Values{
		"nombre_usuario": {name},
		"password":       {"Passw0rd"},
		"registrar":      {"registrar"},
	}, nil)
	require.Equal(t, http.StatusFound, rec.Code)

	location := rec.Header().Get(echo.HeaderLocation)
	id := strings.TrimSuffix(strings.TrimPrefix(location, "/usuario/"), "/perfil/editar")
	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	return cookie, id
}
