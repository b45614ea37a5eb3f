package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/container-census/containerwatch/internal/engines"
	"github.com/container-census/containerwatch/internal/engines/docker"
	"github.com/container-census/containerwatch/internal/engines/podman"
	"github.com/container-census/containerwatch/internal/models"
	"github.com/container-census/containerwatch/internal/storage"
	log "github.com/sirupsen/logrus"
)

var errNoEngine = errors.New("no container engine reachable")

// connectors turns the configured engine candidates into connection
// attempts, preserving their order
func connectors(cfg *models.Config) []engines.Connector {
	var out []engines.Connector
	for _, e := range cfg.Engines {
		switch e.Name {
		case docker.EngineName:
			out = append(out, func(ctx context.Context) engines.Extension {
				return docker.Connect(ctx, e, cfg.Containers)
			})
		case podman.EngineName:
			out = append(out, func(ctx context.Context) engines.Extension {
				return podman.Connect(ctx, e, cfg.Containers)
			})
		default:
			log.Warnf("Skipping unknown engine %q", e.Name)
		}
	}
	return out
}

// openSession connects to the first reachable engine
func openSession(ctx context.Context, cfg *models.Config) (engines.Extension, error) {
	ext := engines.ConnectFirst(ctx, connectors(cfg)...)
	if ext == nil {
		names := make([]string, 0, len(cfg.Engines))
		for _, e := range cfg.Engines {
			names = append(names, e.Name)
		}
		return nil, fmt.Errorf("%w (tried: %s)", errNoEngine, strings.Join(names, ", "))
	}
	return ext, nil
}

// openStorage opens the snapshot database, or returns nil when storage is disabled
func openStorage(cfg *models.Config) (*storage.DB, error) {
	if !cfg.Storage.Enabled {
		return nil, nil
	}
	if cfg.Storage.Driver == "sqlite3" {
		dir := filepath.Dir(strings.SplitN(cfg.Storage.DSN, "?", 2)[0])
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	log.Infof("Opening %s snapshot store", cfg.Storage.Driver)
	return storage.New(cfg.Storage.Driver, cfg.Storage.DSN)
}
