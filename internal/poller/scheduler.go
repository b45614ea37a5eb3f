package poller

import (
	"context"
	"sync"
	"time"

	"github.com/container-census/containerwatch/internal/engines"
	"github.com/container-census/containerwatch/internal/models"
	log "github.com/sirupsen/logrus"
)

// Sink receives each collected statistics snapshot
type Sink interface {
	Consume(ctx context.Context, stats engines.ContainersStatistics, at time.Time) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(ctx context.Context, stats engines.ContainersStatistics, at time.Time) error

// Consume calls f(ctx, stats, at)
func (f SinkFunc) Consume(ctx context.Context, stats engines.ContainersStatistics, at time.Time) error {
	return f(ctx, stats, at)
}

// Scheduler polls one engine session from a single goroutine and fans the
// result out to sinks
type Scheduler struct {
	ext      engines.Extension
	all      bool
	interval time.Duration
	sinks    []Sink
	now      func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
}

// DefaultInterval is used when the configured poll interval is not positive
const DefaultInterval = 5 * time.Second

// NewScheduler creates a scheduler for ext using the collection settings in cfg
func NewScheduler(ext engines.Extension, cfg models.ContainersConfig, sinks ...Sink) *Scheduler {
	interval := cfg.PollInterval()
	if interval <= 0 {
		log.Warnf("Invalid poll interval %v, defaulting to %v", interval, DefaultInterval)
		interval = DefaultInterval
	}

	return &Scheduler{
		ext:      ext,
		all:      cfg.All,
		interval: interval,
		sinks:    sinks,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// Start collects immediately and then once per interval until Stop is
// called or ctx is cancelled
func (s *Scheduler) Start(ctx context.Context) {
	log.Infof("%s: polling every %v", s.ext.Engine(), s.interval)

	s.CollectNow(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.CollectNow(ctx)
		case <-s.stopChan:
			log.Debugln("Scheduler stopped")
			return
		case <-ctx.Done():
			log.Debugln("Scheduler context cancelled")
			return
		}
	}
}

// Stop ends the polling loop
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// CollectNow runs one Stats cycle and hands the result to every sink
func (s *Scheduler) CollectNow(ctx context.Context) engines.ContainersStatistics {
	stats := s.ext.Stats(ctx, s.all)
	at := s.now()

	for _, sink := range s.sinks {
		if err := sink.Consume(ctx, stats, at); err != nil {
			log.Warnf("%s: failed to deliver statistics: %v", s.ext.Engine(), err)
		}
	}

	return stats
}
