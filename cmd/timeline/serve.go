package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fentz26/timeline/internal/audit"
	"github.com/fentz26/timeline/internal/cache"
	"github.com/fentz26/timeline/internal/config"
	"github.com/fentz26/timeline/internal/controlplane"
	"github.com/fentz26/timeline/internal/importer"
	"github.com/fentz26/timeline/internal/log"
	"github.com/fentz26/timeline/internal/models"
	"github.com/fentz26/timeline/internal/store"
	"github.com/fentz26/timeline/internal/timeline"
	"github.com/spf13/cobra"
)

var (
	listenAddr string
	itemsFile  string
	redisURL   string
	strict     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the timeline HTTP API",
	Long:  `Starts the timeline server, which keeps items in memory and serves their layout over HTTP.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", config.DefaultListen, "Listen address for the API server")
	serveCmd.Flags().StringVar(&itemsFile, "items", "", "Seed items file (.yaml, .json, .ics)")
	serveCmd.Flags().StringVar(&redisURL, "redis", "", "Redis URL for the layout cache (default in-process)")
	serveCmd.Flags().BoolVar(&strict, "strict", false, "Pack lanes with strict visual separation")
}

// openService builds the in-process store and service, seeded from path.
func openService(path string, opts timeline.Options, layouts cache.Cache) (*controlplane.Service, *store.Store, error) {
	s, err := store.New()
	if err != nil {
		return nil, nil, err
	}
	service := controlplane.NewService(s, audit.NewRecorder(s), timeline.NewCache(opts), layouts)

	if path != "" {
		items, err := importItems(path)
		if err != nil {
			s.Close()
			return nil, nil, err
		}
		if _, err := service.LoadItems(items); err != nil {
			s.Close()
			return nil, nil, err
		}
	}
	return service, s, nil
}

func importItems(path string) ([]models.Item, error) {
	return importer.LoadFile(path, importer.Options{
		HorizonDays:    cfg.Import.HorizonDays,
		MaxOccurrences: cfg.Import.MaxOccurrences,
	})
}

// flagOr returns the flag value when it was set on the command line,
// otherwise the configured one.
func flagOr(cmd *cobra.Command, name, flagValue, configured string) string {
	if cmd.Flags().Changed(name) || configured == "" {
		return flagValue
	}
	return configured
}

func runServe(cmd *cobra.Command, args []string) error {
	log.Info("starting timeline server", "version", version)

	listen := flagOr(cmd, "listen", listenAddr, cfg.Listen)
	path := flagOr(cmd, "items", itemsFile, cfg.ItemsFile)
	redis := flagOr(cmd, "redis", redisURL, cfg.Cache.RedisURL)
	if !cmd.Flags().Changed("strict") {
		strict = cfg.Layout.Strict
	}

	layouts, err := cache.Open(redis, cfg.CacheTTL())
	if err != nil {
		return err
	}
	defer layouts.Close()

	service, s, err := openService(path, timeline.Options{Strict: strict}, layouts)
	if err != nil {
		return err
	}
	server := controlplane.NewServer(service, listen)

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErr := make(chan error, 1)

	// Start server in goroutine
	go func() {
		err := server.Start()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigCh:
		log.Info("received signal, shutting down", "signal", sig)
	case err := <-serverErr:
		if err != nil {
			log.Error("server failed", err)
			s.Close()
			return err
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown", err)
	}
	if err := s.Close(); err != nil {
		log.Error("store close", err)
	}

	log.Info("shutdown complete")
	return nil
}
