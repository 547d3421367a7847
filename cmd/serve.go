package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tastingroom/winescore/internal/evalcmd"
	"github.com/tastingroom/winescore/internal/handlers"
)

func newServeCmd() *cobra.Command {
	var port string
	var catalogPath string
	var ratingsPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the winescore JSON API",
		Long: `Starts the winescore API on the specified port.

The API extracts fields from label text or uploaded label images, scores
blind tastings, keeps an in-memory cellar of wines and ratings, and ranks
recommendations from it.`,
		Example: `  # Start server on default port 8888
  winescore serve

  # Start with a catalog loaded
  winescore serve --port 3000 --catalog wines.jsonl --ratings ratings.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := evalcmd.LoadPolicy(cmd)
			if err != nil {
				return err
			}

			cellar, err := loadCellar(catalogPath, ratingsPath)
			if err != nil {
				return err
			}

			handler, err := handlers.NewWithCellar(policy, cellar)
			if err != nil {
				return err
			}

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Winescore API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Wines to preload (jsonl or parquet)")
	cmd.Flags().StringVar(&ratingsPath, "ratings", "", "Ratings to preload (jsonl or parquet)")

	return cmd
}
