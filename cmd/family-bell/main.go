// Family-bell is a household announcement daemon: it stores the family's bell
// schedule, fires text-to-speech announcements on the configured speakers at
// the right times, and serves the API the editing clients sync against.
//
// Usage:
//
//	family-bell [flags]
//	family-bell --config /path/to/family-bell.yaml
//
// @title        Family Bell API
// @version      1.0
// @description  Household announcement scheduling daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/brewmarsh/family-bell/internal/announce"
	"github.com/brewmarsh/family-bell/internal/api"
	"github.com/brewmarsh/family-bell/internal/bell"
	"github.com/brewmarsh/family-bell/internal/config"
	"github.com/brewmarsh/family-bell/internal/health"
	"github.com/brewmarsh/family-bell/internal/inventory"
	"github.com/brewmarsh/family-bell/internal/persistence/sqlite"
	"github.com/brewmarsh/family-bell/internal/scheduler"

	_ "github.com/brewmarsh/family-bell/docs"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/family-bell.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("family-bell %s\n", version)
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("family-bell starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Open the bell database.
	store, err := sqlite.Open(cfg.Storage.Path)
	if err != nil {
		slog.Error("failed to open storage", "path", cfg.Storage.Path, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage opened", "path", cfg.Storage.Path)

	// Initialize the announcer backend.
	var announcer announce.Announcer
	if cfg.Speech.DryRun {
		announcer = announce.LogAnnouncer{}
		slog.Info("using dry-run announcer")
	} else {
		announcer = announce.NewServiceCaller(cfg.Speech.Endpoint, cfg.Speech.Token)
		slog.Info("using speech service announcer", "endpoint", cfg.Speech.Endpoint)
	}

	globalTTS := bell.TTS{
		Provider: cfg.TTS.Provider,
		Voice:    cfg.TTS.Voice,
		Language: cfg.TTS.Language,
	}

	// Build the speaker and voice directories from config.
	directory := inventory.FromConfig(cfg.Speakers, cfg.Providers)

	// Parse the scheduler tick interval.
	var schedOpts []scheduler.Option
	if cfg.Scheduler.TickInterval != "" {
		tick, err := time.ParseDuration(cfg.Scheduler.TickInterval)
		if err != nil {
			slog.Error("invalid scheduler tick interval", "value", cfg.Scheduler.TickInterval, "error", err)
			os.Exit(1)
		}
		schedOpts = append(schedOpts, scheduler.WithTickInterval(tick))
	}

	// Start the firing loop.
	supervisor := scheduler.New(store, announcer, globalTTS, schedOpts...)
	supervisor.Start(ctx)
	defer supervisor.Stop()

	// Start health check servers.
	healthServer := health.New(cfg.Server.HealthPort)
	grpcHealth := health.NewGRPC(cfg.Server.GRPCPort)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := grpcHealth.ListenAndServe(ctx); err != nil {
			slog.Error("grpc health server failed", "error", err)
		}
	}()

	// Start the API server.
	apiServer := api.New(cfg.Server.APIPort, cfg.Server.APIToken, version,
		store, directory, announcer, globalTTS)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := apiServer.ListenAndServe(ctx); err != nil {
			slog.Error("api server failed", "error", err)
			cancel()
		}
	}()

	healthServer.SetReady(true)
	grpcHealth.SetReady(true)
	slog.Info("family-bell ready",
		"api_port", cfg.Server.APIPort,
		"health_port", cfg.Server.HealthPort,
		"grpc_port", cfg.Server.GRPCPort)

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")

	wg.Wait()
	slog.Info("family-bell stopped")
}
