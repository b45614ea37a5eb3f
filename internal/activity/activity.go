// Package activity turns consecutive Docker API stat samples into the
// cpu/memory/io/network figures reported for each container.
package activity

import (
	"strings"
	"time"

	containertypes "github.com/docker/docker/api/types/container"
)

// Tracker remembers the previous sample of one container so that counters
// can be reported as deltas. It is not safe for concurrent use.
type Tracker struct {
	prev   *containertypes.StatsResponse
	prevAt time.Time
	now    func() time.Time
}

// Compute returns the activity figures for sample, relative to the previous one
func (t *Tracker) Compute(sample *containertypes.StatsResponse) map[string]interface{} {
	at := sample.Read
	if at.IsZero() {
		at = t.clock()
	}

	stats := map[string]interface{}{
		"cpu":    t.cpu(sample),
		"memory": memory(sample),
	}

	io := map[string]interface{}{}
	network := map[string]interface{}{}

	ior, iow := blockIO(sample)
	rx, tx := networkBytes(sample)

	if t.prev != nil {
		elapsed := at.Sub(t.prevAt).Seconds()
		prevR, prevW := blockIO(t.prev)
		prevRx, prevTx := networkBytes(t.prev)

		io["time_since_update"] = elapsed
		io["ior"] = delta(ior, prevR)
		io["iow"] = delta(iow, prevW)
		io["cumulative_ior"] = ior
		io["cumulative_iow"] = iow

		network["time_since_update"] = elapsed
		network["rx"] = delta(rx, prevRx)
		network["tx"] = delta(tx, prevTx)
		network["cumulative_rx"] = rx
		network["cumulative_tx"] = tx
	}

	stats["io"] = io
	stats["network"] = network

	t.prev = sample
	t.prevAt = at

	return stats
}

func (t *Tracker) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}

// cpu computes usage percentage across all CPUs. Streaming samples carry
// their own PreCPUStats; one-shot samples may not, in which case the
// previous sample is used as the baseline.
func (t *Tracker) cpu(sample *containertypes.StatsResponse) map[string]interface{} {
	pre := sample.PreCPUStats
	if pre.SystemUsage == 0 && t.prev != nil {
		pre = t.prev.CPUStats
	}

	cpuDelta := float64(sample.CPUStats.CPUUsage.TotalUsage) - float64(pre.CPUUsage.TotalUsage)
	systemDelta := float64(sample.CPUStats.SystemUsage) - float64(pre.SystemUsage)

	numCPUs := uint64(sample.CPUStats.OnlineCPUs)
	if numCPUs == 0 {
		numCPUs = uint64(len(sample.CPUStats.CPUUsage.PercpuUsage))
	}
	if numCPUs == 0 {
		numCPUs = 1
	}

	var total float64
	if systemDelta > 0 && cpuDelta > 0 {
		total = (cpuDelta / systemDelta) * float64(numCPUs) * 100.0
	}

	return map[string]interface{}{"total": total}
}

func memory(sample *containertypes.StatsResponse) map[string]interface{} {
	m := sample.MemoryStats

	// cgroup v2 reports inactive_file, v1 total_inactive_file
	inactive, ok := m.Stats["inactive_file"]
	if !ok {
		inactive = m.Stats["total_inactive_file"]
	}

	return map[string]interface{}{
		"usage":         m.Usage,
		"limit":         m.Limit,
		"inactive_file": inactive,
	}
}

func blockIO(sample *containertypes.StatsResponse) (read, write uint64) {
	for _, entry := range sample.BlkioStats.IoServiceBytesRecursive {
		switch {
		case strings.EqualFold(entry.Op, "read"):
			read += entry.Value
		case strings.EqualFold(entry.Op, "write"):
			write += entry.Value
		}
	}
	return read, write
}

func networkBytes(sample *containertypes.StatsResponse) (rx, tx uint64) {
	for _, n := range sample.Networks {
		rx += n.RxBytes
		tx += n.TxBytes
	}
	return rx, tx
}

// delta treats a counter that went backwards (container restart) as a reset
func delta(cur, prev uint64) uint64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}

// CPUPercent extracts cpu.total from a computed row, or 0
func CPUPercent(row map[string]interface{}) float64 {
	cpu, _ := row["cpu"].(map[string]interface{})
	return Number(cpu["total"])
}

// Field extracts a numeric field from a nested section of a computed row, or 0
func Field(row map[string]interface{}, section, key string) float64 {
	m, _ := row[section].(map[string]interface{})
	return Number(m[key])
}

// Number converts the numeric types used in computed rows to float64
func Number(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case uint64:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case uint32:
		return float64(n)
	default:
		return 0
	}
}
