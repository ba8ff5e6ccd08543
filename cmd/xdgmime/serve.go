package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MatthiasKunnen/xdgmime/basedir"
	"github.com/MatthiasKunnen/xdgmime/internal/httpapi"
	"github.com/MatthiasKunnen/xdgmime/internal/logger"
	"github.com/MatthiasKunnen/xdgmime/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

func runServe(ctx context.Context, a *app) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !a.cfg.Builtin && len(a.cfg.DataDirs) == 0 {
		globs, err := basedir.FindDataFiles("mime/globs2")
		if err != nil {
			a.log.Warn(ctx, "failed to list MIME databases", logger.Error(err))
		}
		a.log.Info(ctx, "MIME databases", logger.Any("globs", globs))
	}

	m := metrics.NewManager()
	srv := httpapi.NewServer(a.newResolver(m), m, logger.Named("http"))

	server := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info(ctx, "listening",
			logger.String("addr", a.cfg.Addr),
			logger.Bool("builtin", a.cfg.Builtin),
			logger.String("fallback", a.cfg.Fallback),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	a.log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}

	return nil
}
