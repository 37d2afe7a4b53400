package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/saulo-duarte/edugen-api/internal/config"
	"github.com/saulo-duarte/edugen-api/internal/container"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		settings, err := config.Load()
		if err != nil {
			return err
		}
		c, err := container.New(ctx, settings)
		if err != nil {
			return err
		}
		defer c.Close()

		srv := &http.Server{
			Addr:        ":" + settings.Port,
			Handler:     c.Router(),
			ReadTimeout: 30 * time.Second,
			// must outlast a streamed generation
			WriteTimeout: settings.GenerationTimeout + 30*time.Second,
			IdleTimeout:  120 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			config.WithContext(ctx).Infof("Listening on %s", srv.Addr)
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

		config.WithContext(context.Background()).Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
