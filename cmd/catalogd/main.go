// Command catalogd serves the storefront catalog over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/josegonzalez/game-catalog/pkg/catalog"
	"github.com/josegonzalez/game-catalog/pkg/config"
	"github.com/josegonzalez/game-catalog/pkg/logging"
	"github.com/josegonzalez/game-catalog/pkg/server"
	"github.com/josegonzalez/game-catalog/pkg/tracing"

	_ "github.com/josegonzalez/game-catalog/pkg/source/mock"
	_ "github.com/josegonzalez/game-catalog/pkg/source/steam"
)

func main() {
	if err := run(); err != nil {
		logging.Error("catalogd failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logging.Setup(cfg.Logging)
	log.Info("configuration loaded",
		"source", cfg.Catalog.Source.Name,
		"base_url", cfg.Catalog.Source.BaseURL,
		"credentials", cfg.MaskedCredentials(),
		"cache", cfg.Catalog.Cache.Backend,
		"cache_target", cfg.CacheTarget(),
		"addr", cfg.Server.Addr,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	client, err := catalog.NewClient(cfg.Options()...)
	if err != nil {
		return err
	}
	defer client.Close()

	if status := client.Heartbeat(ctx); !status.Available {
		log.Warn("source is not reachable yet", "source", status.Name, "error", status.Error)
	}

	gin.SetMode(cfg.Server.Mode)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.New(client).Handler(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
