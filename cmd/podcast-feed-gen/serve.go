package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"podcast-feed-gen/internal/alias"
	"podcast-feed-gen/internal/config"
	"podcast-feed-gen/internal/feedstore"
	"podcast-feed-gen/internal/server"
)

func newServeCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the generated feeds over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg config.Config) error {
	if err := config.ValidateListenAddr(cfg.Server.ListenAddr); err != nil {
		return err
	}

	logger := newLogger()

	feeds, err := feedstore.NewStore(cfg.Feeds.TargetDir, cfg.Debounce(), logger)
	if err != nil {
		return err
	}
	defer feeds.Close()

	var aliases server.AliasResolver
	if cfg.Server.AliasFile != "" {
		store, err := alias.NewStore(cfg.Server.AliasFile, cfg.Debounce(), logger)
		if err != nil {
			return err
		}
		defer store.Close()
		aliases = store
	}

	handler := server.New(feeds, aliases, logger)

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("serving feeds from %s on http://%s", cfg.Feeds.TargetDir, cfg.Server.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Printf("shutting down")
	return srv.Shutdown(shutdownCtx)
}
