// Package scheduler runs the periodic fleet-maintenance job: a
// robfig/cron-driven pass that logs a fleet snapshot and force-closes
// sessions that have gone quiet without tripping their own read timeout.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/stlalpha/robotd/internal/config"
	"github.com/stlalpha/robotd/internal/logging"
	"github.com/stlalpha/robotd/internal/robotsession"
)

// tickSchedule drives runOnce's due-check every second; the actual cadence
// between maintenance passes is governed by Live.ReaperIntervalSeconds, not
// by this cron expression, so a reload of that field takes effect on the
// very next tick instead of requiring the cron entry to be torn down and
// re-added.
const tickSchedule = "* * * * * *"

// Reaper periodically inspects the session registry and closes sessions
// whose last activity exceeds Live.StaleSessionSeconds. It is a backstop
// for a robot whose TCP stream goes half-open without tripping the framing
// reader's own read timeout. Both the stale threshold and the run interval
// are read from Live on every tick rather than captured once, so a config
// reload takes effect without restarting the scheduler.
type Reaper struct {
	registry    *robotsession.Registry
	live        *config.ServerConfig
	liveMu      *sync.RWMutex
	historyPath string

	mu      sync.Mutex
	history []RunRecord
	lastRun time.Time
	cron    *cron.Cron
}

// NewReaper constructs a Reaper, loading any prior run history from
// historyPath (empty disables persistence). live and liveMu must be the
// same pair the config.Watcher writes into.
func NewReaper(registry *robotsession.Registry, live *config.ServerConfig, liveMu *sync.RWMutex, historyPath string) *Reaper {
	var history []RunRecord
	if historyPath != "" {
		h, err := LoadHistory(historyPath)
		if err != nil {
			logging.Warn("failed to load maintenance history from %s: %v", historyPath, err)
		} else {
			history = h
		}
	}
	return &Reaper{
		registry:    registry,
		live:        live,
		liveMu:      liveMu,
		historyPath: historyPath,
		history:     history,
	}
}

// Start schedules the maintenance pass and runs it until ctx is cancelled,
// at which point it drains any in-flight run and persists history.
func (r *Reaper) Start(ctx context.Context) error {
	r.cron = cron.New(cron.WithSeconds())
	if _, err := r.cron.AddFunc(tickSchedule, r.tick); err != nil {
		return fmt.Errorf("invalid maintenance tick schedule %q: %w", tickSchedule, err)
	}
	r.cron.Start()

	r.liveMu.RLock()
	interval := r.live.ReaperIntervalSeconds
	staleSeconds := r.live.StaleSessionSeconds
	r.liveMu.RUnlock()
	logging.Info("fleet maintenance scheduled every %ds (stale threshold %ds)", interval, staleSeconds)

	go func() {
		<-ctx.Done()
		cronCtx := r.cron.Stop()
		<-cronCtx.Done()
		if err := SaveHistory(r.historyPath, r.History()); err != nil {
			logging.Error("failed to save maintenance history: %v", err)
		}
	}()
	return nil
}

// tick fires every second and runs a maintenance pass only once
// Live.ReaperIntervalSeconds has elapsed since the last one.
func (r *Reaper) tick() {
	r.liveMu.RLock()
	interval := time.Duration(r.live.ReaperIntervalSeconds) * time.Second
	r.liveMu.RUnlock()
	if interval <= 0 {
		interval = time.Second
	}

	r.mu.Lock()
	due := time.Since(r.lastRun) >= interval
	if due {
		r.lastRun = time.Now()
	}
	r.mu.Unlock()

	if due {
		r.runOnce()
	}
}

// runOnce performs one maintenance pass: log a fleet snapshot, reap stale
// sessions, record the run.
func (r *Reaper) runOnce() {
	r.liveMu.RLock()
	staleThreshold := time.Duration(r.live.StaleSessionSeconds) * time.Second
	r.liveMu.RUnlock()

	sessions := r.registry.ListActive()
	now := time.Now()

	reaped := 0
	for _, s := range sessions {
		if idle := now.Sub(s.LastActivity()); idle > staleThreshold {
			logging.Warn("reaping stale session %s (idle %s, remote=%s)", s.ID, idle, s.RemoteAddr)
			s.Close()
			r.registry.Unregister(s.ID)
			reaped++
		}
	}

	logging.Info("fleet maintenance: %d robot(s) connected, %d reaped", len(sessions), reaped)
	r.recordRun(RunRecord{RanAt: now, SessionsSeen: len(sessions), SessionsReaped: reaped})
}

func (r *Reaper) recordRun(rec RunRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, rec)
	if len(r.history) > maxHistoryEntries {
		r.history = r.history[len(r.history)-maxHistoryEntries:]
	}
}

// History returns a copy of the recorded maintenance runs.
func (r *Reaper) History() []RunRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RunRecord, len(r.history))
	copy(out, r.history)
	return out
}
