// Package config loads and hot-reloads the fleet server's JSON
// configuration, following the reference BBS's config.json conventions.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/stlalpha/robotd/internal/logging"
	"github.com/stlalpha/robotd/internal/protocol"
)

// ServerConfig holds every tunable of a robotd deployment. The protocol
// fields (ServerKey, ClientKey, and the MaxLen* caps) are part of the wire
// contract and default to the values package protocol hard-codes in
// constants.go; a config file
// may restate them but a running server never accepts a reload that
// changes them (see ValidateFixed).
type ServerConfig struct {
	ListenHost string `json:"listenHost"`
	ListenPort int    `json:"listenPort"`

	ServerKey          int `json:"serverKey"`
	ClientKey          int `json:"clientKey"`
	MaxLenUsername     int `json:"maxLenUsername"`
	MaxLenConfirmation int `json:"maxLenConfirmation"`
	MaxLenPosition     int `json:"maxLenPosition"`
	MaxLenMessage      int `json:"maxLenMessage"`

	NormalTimeoutSeconds     int `json:"normalTimeoutSeconds"`
	RechargingTimeoutSeconds int `json:"rechargingTimeoutSeconds"`

	MaxRobots      int `json:"maxRobots"`
	MaxRobotsPerIP int `json:"maxRobotsPerIP"`

	ReaperIntervalSeconds int `json:"reaperIntervalSeconds"`
	StaleSessionSeconds   int `json:"staleSessionSeconds"`

	// SnapshotAddr is the loopback-only address the JSON fleet snapshot
	// endpoint listens on (empty disables it).
	SnapshotAddr string `json:"snapshotAddr"`
}

// fixedFields are the names reported in a WARN when a reload would change
// a protocol-contract value.
type fixedFields struct {
	name        string
	old, reload int
}

// Default returns the built-in default configuration: the protocol
// constants it carries are the wire contract's actual values, everything
// else is a reasonable standalone-deployment default.
func Default() ServerConfig {
	return ServerConfig{
		ListenHost: "0.0.0.0",
		ListenPort: 9999,

		ServerKey:          protocol.ServerKey,
		ClientKey:          protocol.ClientKey,
		MaxLenUsername:     protocol.MaxLenUsername,
		MaxLenConfirmation: protocol.MaxLenConfirmation,
		MaxLenPosition:     protocol.MaxLenPosition,
		MaxLenMessage:      protocol.MaxLenMessage,

		NormalTimeoutSeconds:     10,
		RechargingTimeoutSeconds: 60,

		MaxRobots:      100,
		MaxRobotsPerIP: 4,

		ReaperIntervalSeconds: 60,
		StaleSessionSeconds:   300,

		SnapshotAddr: "127.0.0.1:9998",
	}
}

// Load reads robotd.json from configPath, overlaying it onto Default().
// A missing file is not an error: it logs a WARN and returns the defaults,
// matching the reference loader's behavior for an absent config.json.
func Load(configPath string) (ServerConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Warn("config file not found at %s, using defaults", configPath)
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config JSON from %s: %w", configPath, err)
	}

	logging.Info("loaded configuration from %s", configPath)
	return cfg, nil
}

// ValidateFixed reports the protocol-contract fields a reloaded config
// changed relative to current. A non-nil return means the reload must be
// rejected in its entirety: the wire contract cannot change without a
// restart.
func ValidateFixed(current, reloaded ServerConfig) error {
	changed := []fixedFields{
		{"serverKey", current.ServerKey, reloaded.ServerKey},
		{"clientKey", current.ClientKey, reloaded.ClientKey},
		{"maxLenUsername", current.MaxLenUsername, reloaded.MaxLenUsername},
		{"maxLenConfirmation", current.MaxLenConfirmation, reloaded.MaxLenConfirmation},
		{"maxLenPosition", current.MaxLenPosition, reloaded.MaxLenPosition},
		{"maxLenMessage", current.MaxLenMessage, reloaded.MaxLenMessage},
	}

	var bad []fixedFields
	for _, f := range changed {
		if f.old != f.reload {
			bad = append(bad, f)
		}
	}
	if len(bad) == 0 {
		return nil
	}

	err := fmt.Errorf("reload rejected: %d protocol-fixed field(s) changed", len(bad))
	for _, f := range bad {
		logging.Warn("config reload attempted to change protocol-fixed field %q from %d to %d; ignoring reload", f.name, f.old, f.reload)
	}
	return err
}

// DefaultPath is the config file location cmd/robotd uses when -config is
// not given.
func DefaultPath() string {
	return filepath.Join("configs", "robotd.json")
}
