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

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/njern/bodyparse"
	"github.com/njern/bodyparse/internal/config"
)

var (
	// Build information injected at build time
	version = "dev"
	commit  = "unknown"

	cfgFile string
	v       = viper.New()
	rootCmd = &cobra.Command{
		Use:   "bodyecho",
		Short: "bodyecho parses request bodies and echoes them back as JSON",
		Long: `bodyecho is a small HTTP server around the bodyparse package.

POST a JSON, url-encoded form or text body to /echo, optionally compressed
with gzip, deflate or zstd, and the parsed value is written back as JSON.
Parser limits and options are read from a YAML file (--config), from
BODYECHO_* environment variables, or from flags.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.InitConfig(v, cfgFile)
		},
		RunE: run,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to configuration file (YAML format)")
	rootCmd.Flags().String("bind-address", "", "address to listen on")
	rootCmd.Flags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().String("limit", "", "default body limit, e.g. 1mb")

	_ = v.BindPFlag("bind_address", rootCmd.Flags().Lookup("bind-address"))
	_ = v.BindPFlag("log_level", rootCmd.Flags().Lookup("log-level"))
	_ = v.BindPFlag("parser.limit", rootCmd.Flags().Lookup("limit"))
}

func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)

	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"version": version,
		"commit":  commit,
	}).Info("bodyecho build information")

	srv := &http.Server{
		Addr:         cfg.BindAddress,
		Handler:      newRouter(cfg, logger, bodyparse.NewMetrics()),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("address", cfg.BindAddress).Info("Starting bodyecho server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Received shutdown signal, gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped")

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
