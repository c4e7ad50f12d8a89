package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/veneer/internal/config"
	"github.com/conneroisu/veneer/internal/engine"
	"github.com/conneroisu/veneer/internal/logging"
	"github.com/conneroisu/veneer/internal/server"
	"github.com/conneroisu/veneer/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the document server with HTML negotiation",
	Long: `Start the document server. The JSON API answers every request;
browsers asking for text/html get server-rendered documents resolved
from the template directory, with live reload on template edits.

Examples:
  veneer serve                          # Serve with .veneer.yml settings
  veneer serve --port 9000              # Override the port
  veneer serve --templates ./views      # Override the template directory`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().String("templates", "./templates", "Template directory")
	serveCmd.Flags().String("seed", "", "YAML seed file for the document store")
	serveCmd.Flags().Bool("cache", false, "Enable conditional caching")

	bindFlag("server.port", serveCmd.Flags().Lookup("port"))
	bindFlag("server.host", serveCmd.Flags().Lookup("host"))
	bindFlag("templates.dir", serveCmd.Flags().Lookup("templates"))
	bindFlag("store.seed", serveCmd.Flags().Lookup("seed"))
	bindFlag("cache.enabled", serveCmd.Flags().Lookup("cache"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(viper.GetString("log-level")),
		Format: viper.GetString("log-format"),
	})

	memory := store.NewMemory()
	if cfg.Store.Seed != "" {
		if err := store.LoadSeed(cfg.Store.Seed, memory); err != nil {
			return fmt.Errorf("failed to load seed %s: %w", cfg.Store.Seed, err)
		}
	}

	eng := engine.NewWithExtension(cfg.Templates.Dir, cfg.Templates.Extension, logger)

	srv, err := server.New(cfg, eng, memory, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info(ctx, "shutting down")
		cancel()
	}()

	go func() {
		if err := eng.Watch(ctx); err != nil {
			logger.Warn(ctx, err, "template watcher stopped")
		}
	}()

	fmt.Printf("Starting veneer at http://%s:%d (templates: %s)\n",
		cfg.Server.Host, cfg.Server.Port, cfg.Templates.Dir)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
