// Package podman implements the container engine driver for Podman through
// its Docker-compatible API socket.
package podman

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/container-census/containerwatch/internal/engines"
	"github.com/container-census/containerwatch/internal/engines/docker"
	"github.com/container-census/containerwatch/internal/models"
	log "github.com/sirupsen/logrus"
)

// EngineName identifies this driver in stats output and logs
const EngineName = "podman"

const rootfulSocket = "unix:///run/podman/podman.sock"

// Driver reuses the Docker-compatible calls but samples stats by polling
// once per watcher interval.
type Driver struct {
	*docker.Driver
}

var _ engines.Driver = (*Driver)(nil)

// NewDriver wraps a client connected to a Podman socket
func NewDriver(cli docker.EngineClient, interval time.Duration) *Driver {
	return &Driver{Driver: docker.NewDriver(cli, interval)}
}

// Connect opens the Podman socket named by cfg.Host, or the default one for
// the current user. It returns nil if Podman cannot be reached.
func Connect(ctx context.Context, cfg models.EngineConfig, opts models.ContainersConfig) engines.Extension {
	host := cfg.Host
	if host == "" {
		host = DefaultHost()
	}

	cli, err := docker.NewClient(host)
	if err != nil {
		log.Warnf("%s: failed to create client: %v", EngineName, err)
		return nil
	}

	if err := docker.Ping(ctx, cli, opts.ConnectTimeout()); err != nil {
		log.Infof("%s: engine not reachable at %s: %v", EngineName, host, err)
		cli.Close()
		return nil
	}

	log.Infof("%s: connected to %s", EngineName, host)
	return engines.NewSession(NewDriver(cli, opts.WatcherInterval()))
}

// DefaultHost returns the rootless socket under XDG_RUNTIME_DIR for
// non-root users and the system socket otherwise
func DefaultHost() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" && os.Getuid() != 0 {
		return "unix://" + filepath.Join(dir, "podman", "podman.sock")
	}
	return rootfulSocket
}

// Name returns "podman"
func (d *Driver) Name() string {
	return EngineName
}

// NewWatcher starts a polling watcher for c
func (d *Driver) NewWatcher(c models.Container) engines.Watcher {
	return engines.NewStatsWatcher(EngineName, c, d.PollCollector(c.ID), d.Interval())
}
