package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/yt-summarizer/internal/infra/config"
	"github.com/yanqian/yt-summarizer/internal/infra/promptfile"
)

// App encapsulates the HTTP server lifecycle and the optional template watcher.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	server  *http.Server
	watcher *promptfile.Watcher
}

// NewApp is used by Wire to build the runnable app. watcher may be nil.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, watcher *promptfile.Watcher) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, watcher: watcher}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	if a.watcher != nil {
		defer a.watcher.Stop()
		go func() {
			if err := a.watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("template watcher stopped", "error", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		timeout := a.cfg.HTTP.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		a.logger.Info("shutdown signal received", "timeout", timeout.String())
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
