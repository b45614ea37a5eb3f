package models

import "time"

// Container is the handle an engine reports for one container
type Container struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Image   string            `json:"image"`
	State   string            `json:"state"`  // running, exited, etc.
	Status  string            `json:"status"` // detailed status
	Command string            `json:"command"`
	Created time.Time         `json:"created"`
	Labels  map[string]string `json:"labels"`
}

// ComposeProject returns the Docker Compose project label, if any
func (c Container) ComposeProject() string {
	return c.Labels["com.docker.compose.project"]
}

// ShortID returns the first 12 characters of the container ID
func (c Container) ShortID() string {
	return ShortID(c.ID)
}

// ShortID truncates a container ID for log output
func ShortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// Snapshot is one stored row of container statistics
type Snapshot struct {
	ID            string    `json:"id"`
	Engine        string    `json:"engine"`
	ContainerID   string    `json:"container_id"`
	ContainerName string    `json:"container_name"`
	Image         string    `json:"image"`
	Status        string    `json:"status"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryUsage   int64     `json:"memory_usage"`
	MemoryLimit   int64     `json:"memory_limit"`
	NetworkRx     int64     `json:"network_rx"`
	NetworkTx     int64     `json:"network_tx"`
	IORead        int64     `json:"io_read"`
	IOWrite       int64     `json:"io_write"`
	CollectedAt   time.Time `json:"collected_at"`
	Payload       string    `json:"-"` // raw row, stored as JSON
}

// Config represents application configuration
type Config struct {
	Engines    []EngineConfig   `yaml:"engines"`
	Containers ContainersConfig `yaml:"containers"`
	Storage    StorageConfig    `yaml:"storage"`
}

// EngineConfig names one candidate container engine
type EngineConfig struct {
	Name string `yaml:"name"` // docker or podman
	Host string `yaml:"host"` // e.g., "unix:///var/run/docker.sock", "tcp://host:2376", "ssh://user@host"
}

// ContainersConfig contains collection settings
type ContainersConfig struct {
	All                    bool `yaml:"all"`
	PollIntervalSeconds    int  `yaml:"poll_interval_seconds"`
	WatcherIntervalSeconds int  `yaml:"watcher_interval_seconds"`
	ConnectTimeoutSeconds  int  `yaml:"connect_timeout_seconds"`
}

// PollInterval returns the host poll cadence
func (c ContainersConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// WatcherInterval returns the per-container sampling / retry interval
func (c ContainersConfig) WatcherInterval() time.Duration {
	return time.Duration(c.WatcherIntervalSeconds) * time.Second
}

// ConnectTimeout bounds the engine ping performed while connecting
func (c ContainersConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// StorageConfig contains snapshot database settings
type StorageConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Driver         string `yaml:"driver"` // sqlite3 or postgres
	DSN            string `yaml:"dsn"`
	RetentionHours int    `yaml:"retention_hours"`
}
