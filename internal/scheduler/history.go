package scheduler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/stlalpha/robotd/internal/logging"
)

// RunRecord is one completed fleet-maintenance pass.
type RunRecord struct {
	RanAt          time.Time `json:"ranAt"`
	SessionsSeen   int       `json:"sessionsSeen"`
	SessionsReaped int       `json:"sessionsReaped"`
}

// maxHistoryEntries bounds the in-memory and on-disk run history so a
// long-lived server doesn't grow the file without end.
const maxHistoryEntries = 500

// LoadHistory loads past maintenance runs from a JSON file. A missing file
// is not an error: it starts with empty history, matching the reference
// scheduler's event history loader.
func LoadHistory(path string) ([]RunRecord, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logging.Info("maintenance history file not found at %s, starting empty", path)
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var history []RunRecord
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	logging.Info("loaded %d maintenance run(s) from %s", len(history), path)
	return history, nil
}

// SaveHistory writes the run history to a JSON file, creating its parent
// directory if needed.
func SaveHistory(path string, history []RunRecord) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	logging.Debug("saved %d maintenance run(s) to %s", len(history), path)
	return nil
}
