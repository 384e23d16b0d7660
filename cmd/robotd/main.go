package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/stlalpha/robotd/internal/config"
	"github.com/stlalpha/robotd/internal/fleetserver"
	"github.com/stlalpha/robotd/internal/logging"
	"github.com/stlalpha/robotd/internal/robotsession"
	"github.com/stlalpha/robotd/internal/scheduler"
	"github.com/stlalpha/robotd/internal/snapshot"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to robotd.json")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logging.DebugEnabled = *debug
	if envDebug := os.Getenv("ROBOTD_DEBUG"); envDebug == "1" || envDebug == "true" {
		logging.DebugEnabled = true
	}

	logging.Info("starting robotd fleet server...")

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var cfgMu sync.RWMutex
	watcher, err := config.NewWatcher(*configPath, &cfg, &cfgMu)
	if err != nil {
		logging.Warn("config hot-reload disabled: %v", err)
	} else {
		defer watcher.Stop()
	}

	registry := robotsession.NewRegistry()

	cfgMu.RLock()
	listenHost, listenPort := cfg.ListenHost, cfg.ListenPort
	snapshotAddr := cfg.SnapshotAddr
	cfgMu.RUnlock()

	dataDir := "data"
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		logging.Warn("failed to create data directory %s: %v", dataDir, err)
	}
	historyPath := filepath.Join(dataDir, "maintenance_history.json")

	// server and reaper read cfg live under cfgMu on every connection and
	// every maintenance pass, so a hot-reloaded limit, timeout, or reaper
	// interval takes effect without a restart.
	server := fleetserver.New(fleetserver.Config{Host: listenHost, Port: listenPort}, &cfg, &cfgMu, registry)
	go func() {
		if err := server.ListenAndServe(); err != nil {
			logging.Error("fleet server stopped: %v", err)
		}
	}()
	logging.Info("fleet server ready - robots connect via: nc %s %d", listenHost, listenPort)
	defer server.Close()

	reaper := scheduler.NewReaper(registry, &cfg, &cfgMu, historyPath)
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()

	if err := reaper.Start(schedulerCtx); err != nil {
		logging.Error("failed to start fleet maintenance scheduler: %v", err)
	}

	var snapshotSrv *snapshot.Server
	if snapshotAddr != "" {
		snapshotSrv = snapshot.New(registry)
		go func() {
			if err := snapshotSrv.Start(snapshotAddr); err != nil {
				logging.Error("fleet snapshot endpoint stopped: %v", err)
			}
		}()
		logging.Info("fleet snapshot endpoint ready on %s", snapshotAddr)
		defer snapshotSrv.Close()
	} else {
		logging.Info("fleet snapshot endpoint disabled")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Info("received signal %s, shutting down...", sig)
}
