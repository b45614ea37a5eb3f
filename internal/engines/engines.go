// Package engines keeps a live set of per-container stat watchers for one
// container engine connection and aggregates their latest samples.
//
// A concrete engine (see the docker and podman subpackages) supplies a Driver;
// NewSession wraps it into an Extension that the host process polls.
package engines

import (
	"context"
	"time"

	"github.com/container-census/containerwatch/internal/models"
)

// VersionTTL is how long cached engine version data is reused before refetching
const VersionTTL = 300 * time.Second

// ContainersKey names the row field used to identify containers in Stats output
const ContainersKey = "name"

// ContainersStatistics is the aggregate result of one Stats call
type ContainersStatistics struct {
	Engine     string                   `json:"engine"`
	Version    map[string]interface{}   `json:"version"`
	Containers []map[string]interface{} `json:"containers"`
}

// Extension is the surface the host process polls, one per engine connection
type Extension interface {
	// Engine returns the name of the concrete engine, unique per implementation
	Engine() string
	// Version returns the cached engine version data; may be stale or empty
	Version() map[string]interface{}
	// Stats reconciles watchers against the engine's containers and returns their latest samples
	Stats(ctx context.Context, all bool) ContainersStatistics
	// Terminate stops every watcher and closes the engine connection
	Terminate()
}

// Watcher collects statistics for exactly one container in the background
type Watcher interface {
	// ComputeActivityStats returns the most recent sample without blocking on the engine
	ComputeActivityStats() map[string]interface{}
	// Stop ends collection and returns once the background goroutine has exited
	Stop()
}

// Driver is what a concrete engine implementation provides to a Session
type Driver interface {
	Name() string
	ListContainers(ctx context.Context, all bool) ([]models.Container, error)
	Version(ctx context.Context) (map[string]interface{}, error)
	NewWatcher(c models.Container) Watcher
	Close() error
}

// Connector attempts a connection to one engine, returning nil on failure
type Connector func(ctx context.Context) Extension

// ConnectFirst tries each connector in order and returns the first live session
func ConnectFirst(ctx context.Context, connectors ...Connector) Extension {
	for _, connect := range connectors {
		if ext := connect(ctx); ext != nil {
			return ext
		}
	}
	return nil
}
