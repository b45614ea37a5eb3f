package config

import (
	"fmt"
	"os"

	"github.com/container-census/containerwatch/internal/models"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Load reads and parses the configuration file
func Load(path string) (*models.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg models.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	for _, e := range cfg.Engines {
		if e.Name != "docker" && e.Name != "podman" {
			return nil, fmt.Errorf("unsupported engine: %q", e.Name)
		}
	}

	if cfg.Storage.Driver != "sqlite3" && cfg.Storage.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.Storage.Driver)
	}

	return &cfg, nil
}

// LoadOrDefault loads config from file or returns default config
func LoadOrDefault(path string) *models.Config {
	cfg, err := Load(path)
	if err != nil {
		log.Warnf("Using default configuration: %v", err)
		cfg = &models.Config{}
		applyDefaults(cfg)
	}
	return cfg
}

func applyDefaults(cfg *models.Config) {
	if len(cfg.Engines) == 0 {
		cfg.Engines = []models.EngineConfig{
			{Name: "docker"},
			{Name: "podman"},
		}
	}

	if cfg.Containers.PollIntervalSeconds <= 0 {
		cfg.Containers.PollIntervalSeconds = 5
	}

	if cfg.Containers.WatcherIntervalSeconds <= 0 {
		cfg.Containers.WatcherIntervalSeconds = 2
	}

	if cfg.Containers.ConnectTimeoutSeconds <= 0 {
		cfg.Containers.ConnectTimeoutSeconds = 5
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite3"
	}

	if cfg.Storage.DSN == "" && cfg.Storage.Driver == "sqlite3" {
		cfg.Storage.DSN = "./data/containerwatch.db"
	}

	if cfg.Storage.RetentionHours <= 0 {
		cfg.Storage.RetentionHours = 24
	}
}
