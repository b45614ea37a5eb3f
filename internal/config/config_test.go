package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "containers:\n  all: true\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.Containers.All {
		t.Error("Expected containers.all to be true")
	}
	if len(cfg.Engines) != 2 || cfg.Engines[0].Name != "docker" || cfg.Engines[1].Name != "podman" {
		t.Errorf("Expected default engines docker,podman, got %+v", cfg.Engines)
	}
	if cfg.Containers.PollIntervalSeconds != 5 {
		t.Errorf("Expected poll interval 5, got %d", cfg.Containers.PollIntervalSeconds)
	}
	if cfg.Containers.WatcherIntervalSeconds != 2 {
		t.Errorf("Expected watcher interval 2, got %d", cfg.Containers.WatcherIntervalSeconds)
	}
	if cfg.Storage.Driver != "sqlite3" {
		t.Errorf("Expected sqlite3 driver, got %s", cfg.Storage.Driver)
	}
	if cfg.Storage.DSN != "./data/containerwatch.db" {
		t.Errorf("Unexpected default DSN: %s", cfg.Storage.DSN)
	}
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, `
engines:
  - name: podman
    host: unix:///run/user/1000/podman/podman.sock
containers:
  poll_interval_seconds: 30
  watcher_interval_seconds: 10
storage:
  enabled: true
  driver: postgres
  dsn: postgres://census@localhost/census?sslmode=disable
  retention_hours: 72
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Engines) != 1 || cfg.Engines[0].Host != "unix:///run/user/1000/podman/podman.sock" {
		t.Errorf("Unexpected engines: %+v", cfg.Engines)
	}
	if got := cfg.Containers.PollInterval().Seconds(); got != 30 {
		t.Errorf("Expected 30s poll interval, got %v", got)
	}
	if got := cfg.Containers.WatcherInterval().Seconds(); got != 10 {
		t.Errorf("Expected 10s watcher interval, got %v", got)
	}
	if !cfg.Storage.Enabled || cfg.Storage.Driver != "postgres" || cfg.Storage.RetentionHours != 72 {
		t.Errorf("Unexpected storage config: %+v", cfg.Storage)
	}
}

func TestLoadRejectsUnknownEngine(t *testing.T) {
	path := writeConfig(t, "engines:\n  - name: lxc\n")

	if _, err := Load(path); err == nil {
		t.Error("Expected error for unsupported engine")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))

	if cfg == nil {
		t.Fatal("Expected default config")
	}
	if len(cfg.Engines) != 2 {
		t.Errorf("Expected 2 default engines, got %d", len(cfg.Engines))
	}
	if cfg.Storage.Enabled {
		t.Error("Storage should be disabled by default")
	}
}

func TestLoadReplacesNonPositiveIntervals(t *testing.T) {
	path := writeConfig(t, `
containers:
  poll_interval_seconds: -5
  watcher_interval_seconds: -1
  connect_timeout_seconds: 0
storage:
  retention_hours: -2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Containers.PollIntervalSeconds != 5 {
		t.Errorf("Expected poll interval 5, got %d", cfg.Containers.PollIntervalSeconds)
	}
	if cfg.Containers.WatcherIntervalSeconds != 2 {
		t.Errorf("Expected watcher interval 2, got %d", cfg.Containers.WatcherIntervalSeconds)
	}
	if cfg.Containers.ConnectTimeoutSeconds != 5 {
		t.Errorf("Expected connect timeout 5, got %d", cfg.Containers.ConnectTimeoutSeconds)
	}
	if cfg.Storage.RetentionHours != 24 {
		t.Errorf("Expected retention 24, got %d", cfg.Storage.RetentionHours)
	}
}

func TestLoadOrDefaultInvalidFile(t *testing.T) {
	path := writeConfig(t, "engines:\n  - name: dockr\n")

	cfg := LoadOrDefault(path)
	if len(cfg.Engines) != 2 || cfg.Engines[0].Name != "docker" {
		t.Errorf("Expected default engines after invalid config, got %+v", cfg.Engines)
	}
}
