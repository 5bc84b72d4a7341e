package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"

	"uk.co.dudmesh.emprendenet/internal/boot"
	"uk.co.dudmesh.emprendenet/internal/cache"
	"uk.co.dudmesh.emprendenet/internal/handlers"
	"uk.co.dudmesh.emprendenet/internal/service/account"
	"uk.co.dudmesh.emprendenet/internal/service/user"
	"uk.co.dudmesh.emprendenet/internal/session"
	"uk.co.dudmesh.emprendenet/internal/userstore"
	"uk.co.dudmesh.emprendenet/internal/views"
)

func newCache(config *boot.Config) (cache.Store, error) {
	switch config.Cache.Backend {
	case boot.CacheBackendSQLite:
		return cache.NewSQLiteStore("emprendenet-cache")
	default:
		return cache.NewLRUStore(config.Cache.Size)
	}
}

func main() {
	config, err := boot.Load()
	if err != nil {
		log.Fatalf("boot: %+v", err)
	}

	store, err := userstore.New(context.Background(), config)
	if err != nil {
		log.Fatalf("opening user store: %+v", err)
	}
	defer store.Close()

	userCache, err := newCache(config)
	if err != nil {
		log.Fatalf("creating cache: %+v", err)
	}
	defer userCache.Close()

	invalidator := cache.NewInvalidator(userCache, config.Cache.Retries, config.Cache.RetryDelay)
	userService := user.New(config, store, userCache, invalidator)
	sessions := session.New(config, userService)
	accounts := account.New(userService)

	renderer, err := views.New(config.ViewsDir)
	if err != nil {
		log.Fatalf("loading views: %+v", err)
	}
	defer renderer.Close()
	if config.IsDevelopment() && config.ViewsDir != "" {
		if err := renderer.Watch(); err != nil {
			log.Fatalf("watching views: %+v", err)
		}
	}

	server := echo.New()
	server.Use(middleware.BodyLimit("1M"))
	server.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return cuid2.Generate()
		},
	}))
	server.Use(echoprometheus.NewMiddleware("emprendenet"))
	server.Use(middleware.Recover())
	server.Use(sessions.Middleware())

	server.Logger.SetLevel(log.INFO)
	server.Renderer = renderer
	server.HTTPErrorHandler = handlers.ErrorHandler(userService, server.DefaultHTTPErrorHandler)

	server.StaticFS("/static", views.Static())
	handlers.Routes(server, userService, accounts, sessions, config.BaseURL)

	go func() {
		metrics := echo.New()
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(":" + config.Server.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	go func() {
		if err := server.Start(":" + config.Server.Port); err != nil && err != http.ErrServerClosed {
			server.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		server.Logger.Fatal(err)
	}
}
