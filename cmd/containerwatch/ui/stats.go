package ui

import (
	"fmt"
	"time"

	"github.com/container-census/containerwatch/internal/activity"
	"github.com/container-census/containerwatch/internal/engines"
	"github.com/container-census/containerwatch/internal/models"
)

// StatsTable renders one Stats result, one row per container
func StatsTable(stats engines.ContainersStatistics, at time.Time) string {
	title := fmt.Sprintf("%s %s  %s  %d containers",
		Accent(stats.Engine), Muted(versionOf(stats.Version)), Muted(at.Format(time.TimeOnly)), len(stats.Containers))

	if len(stats.Containers) == 0 {
		return title
	}

	headers := []string{"NAME", "ID", "STATE", "CPU %", "MEMORY", "NET RX/TX", "IO R/W"}
	rows := make([][]string, 0, len(stats.Containers))
	for _, row := range stats.Containers {
		name, _ := row["name"].(string)
		id, _ := row["id"].(string)
		state, _ := row["status"].(string)

		rows = append(rows, []string{
			name,
			models.ShortID(id),
			State(state),
			fmt.Sprintf("%.1f", activity.CPUPercent(row)),
			fmt.Sprintf("%s / %s", Bytes(activity.Field(row, "memory", "usage")), Bytes(activity.Field(row, "memory", "limit"))),
			fmt.Sprintf("%s / %s", Bytes(activity.Field(row, "network", "rx")), Bytes(activity.Field(row, "network", "tx"))),
			fmt.Sprintf("%s / %s", Bytes(activity.Field(row, "io", "ior")), Bytes(activity.Field(row, "io", "iow"))),
		})
	}

	return title + "\n" + Table(headers, rows)
}

// HistoryTable renders stored snapshots, newest first
func HistoryTable(snapshots []models.Snapshot) string {
	headers := []string{"COLLECTED", "ENGINE", "STATE", "CPU %", "MEMORY", "NET RX/TX", "IO R/W"}
	rows := make([][]string, 0, len(snapshots))
	for _, s := range snapshots {
		rows = append(rows, []string{
			s.CollectedAt.Local().Format(time.DateTime),
			s.Engine,
			State(s.Status),
			fmt.Sprintf("%.1f", s.CPUPercent),
			fmt.Sprintf("%s / %s", Bytes(float64(s.MemoryUsage)), Bytes(float64(s.MemoryLimit))),
			fmt.Sprintf("%s / %s", Bytes(float64(s.NetworkRx)), Bytes(float64(s.NetworkTx))),
			fmt.Sprintf("%s / %s", Bytes(float64(s.IORead)), Bytes(float64(s.IOWrite))),
		})
	}

	title := Accent(snapshots[0].ContainerName) + " " + Muted(models.ShortID(snapshots[0].ContainerID))
	return title + "\n" + Table(headers, rows)
}

// Bytes formats a byte count with binary units
func Bytes(n float64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%.0fB", n)
	}
	div, exp := float64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", n/div, "KMGTPE"[exp])
}

func versionOf(info map[string]interface{}) string {
	if v, ok := info["Version"].(string); ok {
		return v
	}
	return "unknown"
}
