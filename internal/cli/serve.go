package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/knitout/internal/config"
	"github.com/aretw0/knitout/internal/service"
	httpAdapter "github.com/aretw0/knitout/pkg/adapters/http"
	"github.com/aretw0/knitout/pkg/adapters/mcp"
)

const shutdownTimeout = 5 * time.Second

// NewServeHandler builds the HTTP API and the backend behind it. Compile
// progress is streamed to /events.
func NewServeHandler(cfg *config.Config, logger *slog.Logger) (http.Handler, *Backend, error) {
	streams := httpAdapter.NewStreamManager(logger)
	b, err := NewBackend(cfg, logger, service.WithHooks(streams.Hooks()))
	if err != nil {
		return nil, nil, err
	}
	h, err := httpAdapter.NewHandler(b.Compiler,
		httpAdapter.WithLogger(logger),
		httpAdapter.WithMetrics(b.Registry),
		httpAdapter.WithStreams(streams),
	)
	if err != nil {
		_ = b.Close()
		return nil, nil, err
	}
	return h, b, nil
}

// RunServe serves the HTTP API on cfg.Server.Addr until ctx is done.
func RunServe(ctx context.Context, cfg *config.Config, logger *slog.Logger, s Streams) error {
	handler, b, err := NewServeHandler(cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(s.Err, "Serving on %s (store: %s).", srv.Addr, cfg.Store.Kind)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		printSystemMessage(s.Err, "Server stopped gracefully.")
		return nil
	}
}

// RunMCP serves the compiler as an MCP server over stdio or SSE.
func RunMCP(ctx context.Context, cfg *config.Config, logger *slog.Logger, transport string, port int) error {
	b, err := NewBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	srv := mcp.NewServer(b.Compiler)
	switch transport {
	case "stdio":
		logger.Info("starting MCP server", "transport", transport)
		return srv.ServeStdio()
	case "sse":
		logger.Info("starting MCP server", "transport", transport, "port", port)
		if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("MCP server stopped gracefully")
		return nil
	}
	return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
}
