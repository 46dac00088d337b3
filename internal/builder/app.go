package builder

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// shutdownTimeout must cover the longest request the server will serve
// (the 90s write timeout), or an in-flight model round dies with its
// turn uncheckpointed.
const shutdownTimeout = 95 * time.Second

// App bundles the HTTP server with the checkpoint store it runs on.
type App struct {
	server     *http.Server
	closeStore func()
	logger     *zap.Logger
}

// Run serves HTTP until a shutdown signal arrives, then drains
// in-flight conversation rounds before closing the checkpoint store.
func (a *App) Run() error {
	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errChan:
		a.logger.Error("Server error", zap.Error(err))
		return err
	case <-ctx.Done():
		a.logger.Info("Received shutdown signal")
	}

	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Info("Shutting down server gracefully")
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("Server shutdown error", zap.Error(err))
		return err
	}

	// Only close the store once every round has checkpointed.
	a.logger.Info("Closing checkpoint store")
	if a.closeStore != nil {
		a.closeStore()
	}

	a.logger.Info("Application stopped gracefully")
	return nil
}
