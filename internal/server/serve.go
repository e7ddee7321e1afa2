package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// Serve runs srv until ctx is cancelled or the process receives SIGINT or
// SIGTERM, then drains in-flight requests for up to shutdownTimeout before
// running the hooks.
func Serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, hooks *ShutdownHooks) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server: listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, failed := <-serverErr:
		if failed {
			return fmt.Errorf("server listen failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info().Msg("server: shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		log.Warn().Err(err).Msg("server: graceful shutdown incomplete")
	}

	if hooks != nil {
		if hookErr := hooks.Execute(shutdownCtx); hookErr != nil {
			err = errors.Join(err, hookErr)
		}
	}

	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info().Msg("server: shutdown complete")

	return nil
}
