package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/jsandh/splitbook/internal/auth"
	"github.com/jsandh/splitbook/internal/ledger"
	"github.com/jsandh/splitbook/internal/middleware"
	"github.com/jsandh/splitbook/internal/server"
	"github.com/jsandh/splitbook/internal/storage"
	"github.com/jsandh/splitbook/internal/storage/postgres"
	"github.com/jsandh/splitbook/internal/storage/sqlite"
	"github.com/jsandh/splitbook/pkg/logging"
)

const defaultTokenDuration = 24 * time.Hour

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func openStore() (storage.Store, error) {
	switch driver := getEnv("DB_DRIVER", "sqlite"); driver {
	case "postgres":
		return postgres.New(getEnv("DATABASE_URL", "postgres://localhost/splitbook?sslmode=disable"))
	case "sqlite":
		return sqlite.New(getEnv("DB_PATH", "./data/splitbook.db"))
	default:
		return nil, errors.New("unknown DB_DRIVER: " + driver)
	}
}

func main() {
	logging.Setup()

	store, err := openStore()
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", getEnv("DB_DRIVER", "sqlite"))

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("JWT_SECRET must be set")
		os.Exit(1)
	}

	jwtManager := auth.NewJWTManager(secret, defaultTokenDuration)
	authn := auth.NewPasswordAuthenticator(store)
	ledgerSvc := ledger.New(store, slog.Default())

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger())

	srv := server.New(ledgerSvc, store, authn, jwtManager)
	srv.Register(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	addr := getEnv("ADDR", ":8080")
	httpServer := &http.Server{
		Addr: addr,
		// h2c allows HTTP/2 without TLS for clients that want it.
		Handler: h2c.NewHandler(e, &http2.Server{}),
	}

	go func() {
		slog.Info("Server starting", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}
