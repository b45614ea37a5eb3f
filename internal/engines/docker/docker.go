// Package docker implements the container engine driver for the Docker Engine API.
package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/container-census/containerwatch/internal/engines"
	"github.com/container-census/containerwatch/internal/models"
	"github.com/docker/docker/api/types"
	containertypes "github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	log "github.com/sirupsen/logrus"
)

// EngineName identifies this driver in stats output and logs
const EngineName = "docker"

// EngineClient is the subset of the Docker client used by the drivers
type EngineClient interface {
	Ping(ctx context.Context) (types.Ping, error)
	ContainerList(ctx context.Context, options containertypes.ListOptions) ([]containertypes.Summary, error)
	ContainerStats(ctx context.Context, containerID string, stream bool) (containertypes.StatsResponseReader, error)
	ServerVersion(ctx context.Context) (types.Version, error)
	Close() error
}

var _ EngineClient = (*client.Client)(nil)

// Driver talks to one Docker-compatible engine
type Driver struct {
	client   EngineClient
	interval time.Duration
}

var _ engines.Driver = (*Driver)(nil)

// NewDriver wraps a connected client. interval paces watcher restarts.
func NewDriver(cli EngineClient, interval time.Duration) *Driver {
	return &Driver{
		client:   cli,
		interval: interval,
	}
}

// Connect creates a client for cfg.Host and pings it. It returns nil if the
// engine cannot be reached so the caller can try the next candidate.
func Connect(ctx context.Context, cfg models.EngineConfig, opts models.ContainersConfig) engines.Extension {
	cli, err := NewClient(cfg.Host)
	if err != nil {
		log.Warnf("%s: failed to create client: %v", EngineName, err)
		return nil
	}

	if err := Ping(ctx, cli, opts.ConnectTimeout()); err != nil {
		log.Infof("%s: engine not reachable: %v", EngineName, err)
		cli.Close()
		return nil
	}

	log.Infof("%s: connected to %s", EngineName, cli.DaemonHost())
	return engines.NewSession(NewDriver(cli, opts.WatcherInterval()))
}

// NewClient creates a Docker client based on the address type
func NewClient(address string) (*client.Client, error) {
	switch {
	case address == "" || address == "local":
		// Local daemon, honouring DOCKER_HOST and friends
		return client.NewClientWithOpts(
			client.FromEnv,
			client.WithAPIVersionNegotiation(),
		)
	case strings.HasPrefix(address, "unix://"),
		strings.HasPrefix(address, "tcp://"),
		strings.HasPrefix(address, "ssh://"),
		strings.HasPrefix(address, "npipe://"):
		return client.NewClientWithOpts(
			client.WithHost(address),
			client.WithAPIVersionNegotiation(),
		)
	default:
		return nil, fmt.Errorf("unsupported address format: %s", address)
	}
}

// Ping checks the engine answers within timeout
func Ping(ctx context.Context, cli EngineClient, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := cli.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping engine: %w", err)
	}
	return nil
}

// Name returns "docker"
func (d *Driver) Name() string {
	return EngineName
}

// Client returns the underlying engine client
func (d *Driver) Client() EngineClient {
	return d.client
}

// Interval returns the watcher restart interval
func (d *Driver) Interval() time.Duration {
	return d.interval
}

// ListContainers returns the engine's containers, including stopped ones if all is set
func (d *Driver) ListContainers(ctx context.Context, all bool) ([]models.Container, error) {
	containers, err := d.client.ContainerList(ctx, containertypes.ListOptions{
		All: all,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	result := make([]models.Container, 0, len(containers))
	for _, c := range containers {
		result = append(result, toContainer(c))
	}
	return result, nil
}

// Version returns the engine's version document as a generic map
func (d *Driver) Version(ctx context.Context) (map[string]interface{}, error) {
	v, err := d.client.ServerVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get server version: %w", err)
	}
	return toMap(v)
}

// NewWatcher starts a streaming watcher for c
func (d *Driver) NewWatcher(c models.Container) engines.Watcher {
	return engines.NewStatsWatcher(d.Name(), c, d.StreamCollector(c.ID), d.interval)
}

// Close releases the client connection
func (d *Driver) Close() error {
	return d.client.Close()
}

func toContainer(c containertypes.Summary) models.Container {
	// Get container name (remove leading slash)
	var name string
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return models.Container{
		ID:      c.ID,
		Name:    name,
		Image:   c.Image,
		State:   string(c.State),
		Status:  c.Status,
		Command: c.Command,
		Created: time.Unix(c.Created, 0),
		Labels:  c.Labels,
	}
}

func toMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode version: %w", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode version: %w", err)
	}
	return m, nil
}
