// Package serve implements the serve command that runs the web backend.
package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Keithclinton/Counter-Front/internal/classifier"
	"github.com/Keithclinton/Counter-Front/internal/conf"
	"github.com/Keithclinton/Counter-Front/internal/datastore"
	"github.com/Keithclinton/Counter-Front/internal/httpcontroller"
	"github.com/Keithclinton/Counter-Front/internal/logging"
	"github.com/Keithclinton/Counter-Front/internal/notify"
	"github.com/Keithclinton/Counter-Front/internal/observability"
	"github.com/Keithclinton/Counter-Front/internal/processor"
)

const shutdownTimeout = 10 * time.Second

// Command returns the serve subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the scan web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings)
		},
	}
}

func run(settings *conf.Settings) error {
	logger := logging.ForService("serve")

	if err := conf.ValidateSettings(settings); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ds := datastore.New(settings)
	if err := ds.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			logger.Error("failed to close datastore", "error", err)
		}
	}()

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	// A missing model is not fatal: the read API, health probes and admin
	// map stay up while /predict reports the model as unavailable.
	clf, err := classifier.New(settings)
	if err != nil {
		logger.Warn("classifier unavailable, predictions disabled", "error", err)
	}
	metrics.SetModelLoaded(clf.Loaded())

	sink, err := notify.NewSink(&settings.Notify)
	if err != nil {
		return fmt.Errorf("failed to initialize notifications: %w", err)
	}

	proc := processor.New(settings, ds, clf, metrics, sink)

	server, err := httpcontroller.New(settings, ds, proc, metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize web server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
