package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/mentor"
	httpAdapter "github.com/aretw0/mentor/pkg/adapters/http"
	mcpAdapter "github.com/aretw0/mentor/pkg/adapters/mcp"
	"github.com/aretw0/mentor/pkg/observability"
	"github.com/aretw0/mentor/pkg/session"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the HTTP API on addr until ctx ends, then closes every session,
// cancelling outstanding tasks.
func Serve(ctx context.Context, trainer *mentor.Trainer, addr string, metrics *observability.Metrics, logger *slog.Logger) error {
	opts := []httpAdapter.Option{httpAdapter.WithLogger(logger)}
	if metrics != nil {
		opts = append(opts, httpAdapter.WithMetrics(metrics.Handler()))
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           httpAdapter.NewHandler(trainer.Manager(), trainer, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("graceful shutdown did not complete: %w", err))
		if err := srv.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := trainer.Manager().CloseAll(shutdownCtx, session.CloseCancel); err != nil {
		errs = append(errs, err)
	}
	logger.Info("HTTP server stopped")
	return errors.Join(errs...)
}

// Transports of the MCP server.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// ServeMCP runs the MCP server on the given transport until ctx ends.
func ServeMCP(ctx context.Context, trainer *mentor.Trainer, transport, addr string, logger *slog.Logger) error {
	srv := mcpAdapter.NewServer(trainer.Manager(), trainer, mcpAdapter.WithLogger(logger))
	defer func() {
		if err := trainer.Manager().CloseAll(context.WithoutCancel(ctx), session.CloseWait); err != nil {
			logger.Warn("sessions left open", "err", err)
		}
	}()

	switch transport {
	case TransportStdio:
		logger.Info("starting MCP server (stdio)")
		return srv.ServeStdio()
	case TransportSSE:
		err := srv.ServeSSE(ctx, addr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
	return fmt.Errorf("unknown transport %q, supported: %s, %s", transport, TransportStdio, TransportSSE)
}
