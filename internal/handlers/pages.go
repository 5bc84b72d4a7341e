package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func StaticPage(users UserService, name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return render(c, users, http.StatusOK, name, nil)
	}
}

var webmapPaths = []string{"", "aviso-legal"}

// Webmap lists the public pages as plain text, one URL per line.
func Webmap(baseURL string) echo.HandlerFunc {
	return func(c echo.Context) error {
		urls := make([]string, len(webmapPaths))
		for i, path := range webmapPaths {
			urls[i] = baseURL + path
		}
		return c.String(http.StatusOK, strings.Join(urls, "\n")+"\n")
	}
}
