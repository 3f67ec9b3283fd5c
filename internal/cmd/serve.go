package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ytfetch/transcript-service/internal/server"
	"github.com/ytfetch/transcript-service/pkg/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the transcript HTTP API",
	Long: `Run the HTTP API server. Transcripts are resolved through the full
fetch pipeline: cache, rate limiter, worker pool and fallback ladder.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger("transcriptd")

	svc, err := newService()
	if err != nil {
		return err
	}

	srv := server.New(cfg, svc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown failed")
	}

	// Drain in-flight fetches before exiting.
	if err := svc.Close(ctx); err != nil {
		logger.Warn().Err(err).Msg("Worker pool did not drain in time")
	}

	return nil
}
