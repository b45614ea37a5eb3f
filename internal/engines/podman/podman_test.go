package podman

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/container-census/containerwatch/internal/models"
	"github.com/docker/docker/api/types"
	containertypes "github.com/docker/docker/api/types/container"
)

const sample = `{"read":"2024-01-01T00:00:00Z","cpu_stats":{"cpu_usage":{"total_usage":300},"system_cpu_usage":1500,"online_cpus":1},"precpu_stats":{"cpu_usage":{"total_usage":200},"system_cpu_usage":1000},"memory_stats":{"usage":512,"limit":1024}}`

type fakeClient struct {
	mu       sync.Mutex
	streamed []bool
	closed   int
}

func (f *fakeClient) Ping(ctx context.Context) (types.Ping, error) {
	return types.Ping{}, nil
}

func (f *fakeClient) ContainerList(ctx context.Context, options containertypes.ListOptions) ([]containertypes.Summary, error) {
	return []containertypes.Summary{{ID: "p1", Names: []string{"/db"}, State: "running"}}, nil
}

func (f *fakeClient) ContainerStats(ctx context.Context, containerID string, stream bool) (containertypes.StatsResponseReader, error) {
	f.mu.Lock()
	f.streamed = append(f.streamed, stream)
	f.mu.Unlock()

	return containertypes.StatsResponseReader{Body: io.NopCloser(strings.NewReader(sample))}, nil
}

func (f *fakeClient) ServerVersion(ctx context.Context) (types.Version, error) {
	return types.Version{Version: "5.2.0"}, nil
}

func (f *fakeClient) Close() error {
	f.closed++
	return nil
}

func (f *fakeClient) requests() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.streamed...)
}

func TestDriverName(t *testing.T) {
	d := NewDriver(&fakeClient{}, time.Second)
	if d.Name() != "podman" {
		t.Errorf("Expected podman, got %s", d.Name())
	}
}

func TestWatcherPolls(t *testing.T) {
	fake := &fakeClient{}
	d := NewDriver(fake, time.Millisecond)

	w := d.NewWatcher(models.Container{ID: "p1"})

	deadline := time.Now().Add(2 * time.Second)
	for len(fake.requests()) < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	w.Stop()

	requests := fake.requests()
	if len(requests) < 3 {
		t.Fatalf("Expected repeated polling, got %d requests", len(requests))
	}
	for i, stream := range requests {
		if stream {
			t.Errorf("Request %d used streaming stats", i)
		}
	}

	stats := w.ComputeActivityStats()
	memory, _ := stats["memory"].(map[string]interface{})
	if memory["usage"] != uint64(512) {
		t.Errorf("Expected memory usage 512, got %v", memory["usage"])
	}
}

func TestDefaultHost(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	if got := DefaultHost(); got != rootfulSocket {
		t.Errorf("Expected rootful socket without XDG_RUNTIME_DIR, got %s", got)
	}
}

func TestConnectUnreachable(t *testing.T) {
	cfg := models.EngineConfig{Name: "podman", Host: "unix:///nonexistent/podman.sock"}
	opts := models.ContainersConfig{ConnectTimeoutSeconds: 1, WatcherIntervalSeconds: 1}

	if ext := Connect(context.Background(), cfg, opts); ext != nil {
		t.Error("Expected nil session for unreachable engine")
		ext.Terminate()
	}
}
