package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"evalgo.org/microtosca/internal/api"
)

var serverModel string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long: `Start the HTTP API server with Echo framework.

The model is loaded from --model or model.file in the configuration. Without
a document the server starts with an empty model.`,
	Args: cobra.NoArgs,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().StringVar(&serverModel, "model", "", "architecture document to serve (default: model.file)")
}

func runServer(cmd *cobra.Command, args []string) error {
	path := serverModel
	if path == "" {
		path = cfg.Model.File
	}

	result, err := loadModel(path, cfg.Model.Strict)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	for _, w := range result.Warnings {
		logger.Warn(w)
	}
	for _, e := range result.Errors {
		logger.WithField("document", path).Error(e)
	}

	stdLogger, closer := componentLogger(logrus.InfoLevel)
	defer closer.Close()

	// Create API server
	server := api.New(cfg, result.Model, stdLogger)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return nil

	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}
