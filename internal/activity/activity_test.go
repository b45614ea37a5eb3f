package activity

import (
	"math"
	"testing"
	"time"

	containertypes "github.com/docker/docker/api/types/container"
)

func sampleAt(at time.Time, total, system uint64, rx, tx, read, write uint64) *containertypes.StatsResponse {
	s := &containertypes.StatsResponse{}
	s.Read = at
	s.CPUStats.CPUUsage.TotalUsage = total
	s.CPUStats.SystemUsage = system
	s.CPUStats.OnlineCPUs = 2
	s.MemoryStats.Usage = 64 << 20
	s.MemoryStats.Limit = 512 << 20
	s.MemoryStats.Stats = map[string]uint64{"inactive_file": 4 << 20}
	s.Networks = map[string]containertypes.NetworkStats{
		"eth0": {RxBytes: rx, TxBytes: tx},
	}
	s.BlkioStats.IoServiceBytesRecursive = []containertypes.BlkioStatEntry{
		{Op: "read", Value: read},
		{Op: "write", Value: write},
	}
	return s
}

func TestComputeFirstSample(t *testing.T) {
	var tracker Tracker
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	stats := tracker.Compute(sampleAt(start, 100, 1000, 10, 20, 30, 40))

	memory := stats["memory"].(map[string]interface{})
	if memory["usage"] != uint64(64<<20) || memory["limit"] != uint64(512<<20) {
		t.Errorf("Unexpected memory stats: %v", memory)
	}
	if memory["inactive_file"] != uint64(4<<20) {
		t.Errorf("Expected inactive_file from cgroup v2 key, got %v", memory["inactive_file"])
	}

	if io := stats["io"].(map[string]interface{}); len(io) != 0 {
		t.Errorf("Expected no io deltas on first sample, got %v", io)
	}
	if network := stats["network"].(map[string]interface{}); len(network) != 0 {
		t.Errorf("Expected no network deltas on first sample, got %v", network)
	}
}

func TestComputeDeltas(t *testing.T) {
	var tracker Tracker
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tracker.Compute(sampleAt(start, 100, 1000, 1000, 2000, 300, 400))
	stats := tracker.Compute(sampleAt(start.Add(2*time.Second), 350, 2000, 1500, 2600, 300, 1400))

	// No PreCPUStats: baseline is the previous sample. 250/1000 * 2 CPUs * 100
	if got := CPUPercent(stats); math.Abs(got-50.0) > 1e-9 {
		t.Errorf("Expected 50%% CPU, got %v", got)
	}

	if got := Field(stats, "network", "rx"); got != 500 {
		t.Errorf("Expected rx 500, got %v", got)
	}
	if got := Field(stats, "network", "tx"); got != 600 {
		t.Errorf("Expected tx 600, got %v", got)
	}
	if got := Field(stats, "network", "cumulative_rx"); got != 1500 {
		t.Errorf("Expected cumulative rx 1500, got %v", got)
	}
	if got := Field(stats, "io", "iow"); got != 1000 {
		t.Errorf("Expected iow 1000, got %v", got)
	}
	if got := Field(stats, "io", "ior"); got != 0 {
		t.Errorf("Expected ior 0, got %v", got)
	}
	if got := Field(stats, "io", "time_since_update"); got != 2 {
		t.Errorf("Expected 2s since update, got %v", got)
	}
}

func TestComputeUsesPreCPUStats(t *testing.T) {
	var tracker Tracker

	s := sampleAt(time.Now(), 400, 2000, 0, 0, 0, 0)
	s.PreCPUStats.CPUUsage.TotalUsage = 200
	s.PreCPUStats.SystemUsage = 1000
	s.CPUStats.OnlineCPUs = 0
	s.CPUStats.CPUUsage.PercpuUsage = []uint64{1, 1, 1, 1}

	// 200/1000 * 4 CPUs (from per-CPU list) * 100
	if got := CPUPercent(tracker.Compute(s)); math.Abs(got-80.0) > 1e-9 {
		t.Errorf("Expected 80%% CPU, got %v", got)
	}
}

func TestComputeCounterReset(t *testing.T) {
	var tracker Tracker
	start := time.Now()

	tracker.Compute(sampleAt(start, 100, 1000, 5000, 5000, 0, 0))
	stats := tracker.Compute(sampleAt(start.Add(time.Second), 200, 2000, 100, 100, 0, 0))

	if got := Field(stats, "network", "rx"); got != 0 {
		t.Errorf("Expected reset counter to report 0, got %v", got)
	}
}

func TestComputeCgroupV1Fields(t *testing.T) {
	var tracker Tracker

	s := sampleAt(time.Now(), 0, 0, 0, 0, 0, 0)
	s.MemoryStats.Stats = map[string]uint64{"total_inactive_file": 7}
	s.BlkioStats.IoServiceBytesRecursive = []containertypes.BlkioStatEntry{
		{Op: "Read", Value: 3},
		{Op: "Write", Value: 4},
		{Op: "Total", Value: 7},
	}

	tracker.Compute(s)
	read, write := blockIO(s)

	if read != 3 || write != 4 {
		t.Errorf("Expected read=3 write=4, got %d %d", read, write)
	}
	if got := memory(s)["inactive_file"]; got != uint64(7) {
		t.Errorf("Expected total_inactive_file fallback, got %v", got)
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in   interface{}
		want float64
	}{
		{1.5, 1.5},
		{uint64(3), 3},
		{int64(-2), -2},
		{7, 7},
		{"nope", 0},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := Number(tt.in); got != tt.want {
			t.Errorf("Number(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
