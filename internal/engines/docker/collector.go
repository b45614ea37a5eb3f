package docker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/container-census/containerwatch/internal/activity"
	"github.com/container-census/containerwatch/internal/engines"
	containertypes "github.com/docker/docker/api/types/container"
)

// streamCollector follows a container's streaming stats endpoint and
// publishes one computed sample per decoded document.
type streamCollector struct {
	client  EngineClient
	id      string
	tracker activity.Tracker
}

// StreamCollector returns a collector that keeps a stats stream open for id
func (d *Driver) StreamCollector(id string) engines.Collector {
	return &streamCollector{client: d.client, id: id}
}

func (c *streamCollector) Collect(ctx context.Context, publish func(map[string]interface{})) error {
	resp, err := c.client.ContainerStats(ctx, c.id, true)
	if err != nil {
		return fmt.Errorf("failed to open stats stream: %w", err)
	}
	defer resp.Body.Close()

	decoder := json.NewDecoder(resp.Body)
	for {
		var sample containertypes.StatsResponse
		if err := decoder.Decode(&sample); err != nil {
			return err
		}
		publish(c.tracker.Compute(&sample))
	}
}

// pollCollector takes a single stats sample per call
type pollCollector struct {
	client  EngineClient
	id      string
	tracker activity.Tracker
}

// PollCollector returns a collector that fetches one sample per call, for
// engines whose streaming endpoint is unreliable
func (d *Driver) PollCollector(id string) engines.Collector {
	return &pollCollector{client: d.client, id: id}
}

func (c *pollCollector) Collect(ctx context.Context, publish func(map[string]interface{})) error {
	resp, err := c.client.ContainerStats(ctx, c.id, false)
	if err != nil {
		return fmt.Errorf("failed to fetch stats: %w", err)
	}
	defer resp.Body.Close()

	var sample containertypes.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&sample); err != nil {
		return fmt.Errorf("failed to decode stats: %w", err)
	}

	publish(c.tracker.Compute(&sample))
	return nil
}
