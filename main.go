package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/api"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/guard"
	"storefront/internal/handlers"
	"storefront/internal/httpclient"
	"storefront/internal/middleware"
	"storefront/internal/session"
	"storefront/internal/state"
)

func main() {
	config.Load()
	cfg := config.AppEnv

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("storefront console stopped", "err", err)
		os.Exit(1)
	}
}

// run owns every resource so deferred cleanup always happens. It returns when ctx
// is cancelled or the server fails.
func run(ctx context.Context, cfg config.Config) error {
	storage, closeStorage, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	if err := database.EnsureWritable(ctx, storage); err != nil {
		slog.Warn("session storage is not writable, logins will not persist", "err", err)
	}

	sess := session.NewStore(storage, cfg.SessionKey, cfg.TokenKey)

	// store is assigned below; the handler only runs once requests are served.
	var store *state.Store
	client, err := httpclient.New(cfg.APIBaseURL,
		httpclient.WithTokenSource(sess),
		httpclient.WithUnauthorizedHandler(func(method, path string) {
			slog.Info("session rejected by backend", "method", method, "path", path, "redirect", guard.LoginPath)
			store.Auth.Expire(context.Background())
			store.ResetUserData()
		}),
	)
	if err != nil {
		return err
	}

	a := api.New(client)
	store = state.New(ctx, a, sess)

	policy, err := guard.NewPolicy()
	if err != nil {
		return fmt.Errorf("building access policy: %w", err)
	}

	refreshCtx, cancelRefresh := context.WithCancel(ctx)
	defer cancelRefresh()
	go startSession(refreshCtx, store, cfg.TokenRefreshWindow)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())
	handlers.Mount(r, handlers.Deps{Store: store, API: a, Policy: policy})

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	server := &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("storefront console listening", "addr", ln.Addr().String(), "api", client.BaseURL())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// startSession refreshes a nearly expired token, runs the initial session probe,
// then keeps the token fresh until ctx ends.
func startSession(ctx context.Context, store *state.Store, window time.Duration) {
	refresh := func() {
		refreshed, err := store.Auth.RefreshIfExpiring(ctx, window, time.Now())
		if err != nil {
			slog.Warn("token refresh failed", "err", err)
		} else if refreshed {
			slog.Info("token refreshed")
		}
	}

	refresh()
	if err := store.Auth.LoadUser(ctx); err != nil {
		slog.Info("no active session", "err", err)
	}
	if window <= 0 {
		return
	}

	ticker := time.NewTicker(window / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			refresh()
		case <-ctx.Done():
			return
		}
	}
}
