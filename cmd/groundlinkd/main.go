package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/skylink-gcs/groundlink/daemon"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to config file, JSON or YAML")
		server      = flag.String("server", "", "Swarm server address, host:port (overrides config)")
		metricsAddr = flag.String("metrics-addr", "", "Listen address for /metrics (overrides config)")
		snapshotDir = flag.String("snapshot-dir", "", "Fleet snapshot directory (overrides config)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	cfg := daemon.DefaultConfig()
	if *configFile != "" {
		loaded, err := daemon.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}

	if *server != "" {
		cfg.Server = *server
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if *snapshotDir != "" {
		cfg.Snapshot.Dir = *snapshotDir
	}

	if cfg.Server == "" {
		fmt.Fprintln(os.Stderr, "Usage: groundlinkd -server <host:port> [-config <file>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	d, err := daemon.New(&cfg)
	if err != nil {
		log.Fatalf("Failed to create daemon: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = d.Run(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		slog.Info("groundlink daemon stopped")
	case errors.Is(err, daemon.ErrLinkLost):
		// Exit nonzero so a supervisor restarts the process with a fresh
		// connection.
		log.Fatalf("Swarm server link lost")
	default:
		log.Fatalf("Daemon failed: %v", err)
	}
}
