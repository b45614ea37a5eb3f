package engines

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/container-census/containerwatch/internal/models"
	"github.com/containerd/errdefs"
	log "github.com/sirupsen/logrus"
)

// State is the lifecycle state of a StatsWatcher
type State int32

const (
	Active State = iota
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Collector pulls samples for one container and hands each computed sample
// to publish. It returns when its stream breaks or ctx is cancelled.
type Collector interface {
	Collect(ctx context.Context, publish func(map[string]interface{})) error
}

// CollectorFunc adapts a function to the Collector interface
type CollectorFunc func(ctx context.Context, publish func(map[string]interface{})) error

// Collect calls f(ctx, publish)
func (f CollectorFunc) Collect(ctx context.Context, publish func(map[string]interface{})) error {
	return f(ctx, publish)
}

// StatsWatcher runs a Collector in its own goroutine until stopped, keeping
// the latest published sample.
type StatsWatcher struct {
	engine    string
	container models.Container
	collector Collector
	interval  time.Duration

	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.RWMutex
	latest map[string]interface{}
	state  State
}

// minRetryInterval replaces a non-positive watcher interval
const minRetryInterval = time.Second

// NewStatsWatcher starts collecting for c immediately. interval paces the
// restarts of collector after it returns.
func NewStatsWatcher(engine string, c models.Container, collector Collector, interval time.Duration) *StatsWatcher {
	if interval <= 0 {
		interval = minRetryInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	w := &StatsWatcher{
		engine:    engine,
		container: c,
		collector: collector,
		interval:  interval,
		cancel:    cancel,
		done:      make(chan struct{}),
		state:     Active,
	}

	go w.run(ctx)
	return w
}

func (w *StatsWatcher) run(ctx context.Context) {
	defer close(w.done)

	for {
		err := w.collector.Collect(ctx, w.publish)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			w.logFailure(err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.interval):
		}
	}
}

func (w *StatsWatcher) publish(sample map[string]interface{}) {
	w.mu.Lock()
	w.latest = sample
	w.mu.Unlock()
}

func (w *StatsWatcher) logFailure(err error) {
	switch {
	case errdefs.IsNotFound(err):
		log.Debugf("%s: container %s is gone: %v", w.engine, w.container.ShortID(), err)
	case errors.Is(err, io.EOF):
		log.Debugf("%s: stats stream for container %s ended", w.engine, w.container.ShortID())
	default:
		log.Warnf("%s: failed to collect stats for container %s: %v", w.engine, w.container.ShortID(), err)
	}
}

// ComputeActivityStats returns a copy of the latest sample, or an empty map
// if nothing has been collected yet.
func (w *StatsWatcher) ComputeActivityStats() map[string]interface{} {
	w.mu.RLock()
	defer w.mu.RUnlock()

	stats := make(map[string]interface{}, len(w.latest))
	for k, v := range w.latest {
		stats[k] = v
	}
	return stats
}

// Stop cancels collection and waits for the goroutine to exit. Safe to call repeatedly.
func (w *StatsWatcher) Stop() {
	w.mu.Lock()
	if w.state == Active {
		w.state = Stopping
	}
	w.mu.Unlock()

	w.cancel()
	<-w.done

	w.mu.Lock()
	w.state = Stopped
	w.mu.Unlock()
}

// State reports the current lifecycle state
func (w *StatsWatcher) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// Container returns the container this watcher is bound to
func (w *StatsWatcher) Container() models.Container {
	return w.container
}
