package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load(missing) = %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoad_OverlaysJSONOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "robotd.json")
	if err := os.WriteFile(path, []byte(`{"maxRobots": 7, "listenPort": 4000}`), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxRobots != 7 {
		t.Errorf("MaxRobots = %d, want 7", cfg.MaxRobots)
	}
	if cfg.ListenPort != 4000 {
		t.Errorf("ListenPort = %d, want 4000", cfg.ListenPort)
	}
	// Untouched fields keep their defaults.
	if cfg.ServerKey != Default().ServerKey {
		t.Errorf("ServerKey = %d, want default %d", cfg.ServerKey, Default().ServerKey)
	}
}

func TestLoad_MalformedJSONIsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "robotd.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load(malformed) returned no error")
	}
}

func TestValidateFixed_AcceptsUnchangedProtocolFields(t *testing.T) {
	cfg := Default()
	reloaded := cfg
	reloaded.MaxRobots = 5 // mutable field changing is fine

	if err := ValidateFixed(cfg, reloaded); err != nil {
		t.Errorf("ValidateFixed = %v, want nil", err)
	}
}

func TestValidateFixed_RejectsChangedKey(t *testing.T) {
	cfg := Default()
	reloaded := cfg
	reloaded.ServerKey = cfg.ServerKey + 1

	if err := ValidateFixed(cfg, reloaded); err == nil {
		t.Error("ValidateFixed = nil, want error for changed serverKey")
	}
}

func TestValidateFixed_RejectsChangedLengthCap(t *testing.T) {
	cfg := Default()
	reloaded := cfg
	reloaded.MaxLenMessage = cfg.MaxLenMessage + 10

	if err := ValidateFixed(cfg, reloaded); err == nil {
		t.Error("ValidateFixed = nil, want error for changed maxLenMessage")
	}
}
