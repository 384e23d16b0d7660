package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/stlalpha/robotd/internal/logging"
)

// Watcher watches the config file for changes and hot-reloads the
// tunables that are safe to change live (limits, timeouts, reaper
// interval). Listen address and protocol-fixed fields are restated in
// every reload but never applied without a restart.
type Watcher struct {
	mu         sync.RWMutex
	watcher    *fsnotify.Watcher
	done       chan struct{}
	configPath string
	current    *ServerConfig
	currentMu  *sync.RWMutex
}

// NewWatcher starts watching configPath for writes and applies accepted
// reloads into *current under currentMu.
func NewWatcher(configPath string, current *ServerConfig, currentMu *sync.RWMutex) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(configPath); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", configPath, err)
	}

	w := &Watcher{
		watcher:    fw,
		done:       make(chan struct{}),
		configPath: configPath,
		current:    current,
		currentMu:  currentMu,
	}

	logging.Info("watching %s for config changes (auto-reload enabled)", configPath)
	go w.loop()
	return w, nil
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher == nil {
		return
	}
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	w.watcher.Close()
	w.watcher = nil
}

func (w *Watcher) loop() {
	var debounce *time.Timer
	const debounceDuration = 300 * time.Millisecond

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write != fsnotify.Write && event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDuration, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("config file watcher error: %v", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	logging.Info("config file change detected, reloading %s", w.configPath)

	reloaded, err := Load(w.configPath)
	if err != nil {
		logging.Error("failed to reload %s: %v", w.configPath, err)
		return
	}

	w.currentMu.Lock()
	defer w.currentMu.Unlock()

	if err := ValidateFixed(*w.current, reloaded); err != nil {
		logging.Warn("config reload rejected: %v", err)
		return
	}

	if w.current.ListenHost != reloaded.ListenHost || w.current.ListenPort != reloaded.ListenPort {
		logging.Warn("listen address change in %s requires a full restart; keeping current listener", w.configPath)
		reloaded.ListenHost = w.current.ListenHost
		reloaded.ListenPort = w.current.ListenPort
	}
	if w.current.SnapshotAddr != reloaded.SnapshotAddr {
		logging.Warn("snapshot endpoint address change in %s requires a full restart", w.configPath)
		reloaded.SnapshotAddr = w.current.SnapshotAddr
	}

	*w.current = reloaded
	logging.Info("config reloaded: maxRobots=%d maxRobotsPerIP=%d reaperIntervalSeconds=%d staleSessionSeconds=%d",
		reloaded.MaxRobots, reloaded.MaxRobotsPerIP, reloaded.ReaperIntervalSeconds, reloaded.StaleSessionSeconds)
}
