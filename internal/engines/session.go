package engines

import (
	"context"
	"sync"

	"github.com/container-census/containerwatch/internal/models"
	log "github.com/sirupsen/logrus"
)

// Session is one live connection to a container engine. It owns the watcher
// registry, the version cache and the driver's client connection.
type Session struct {
	driver   Driver
	registry *Registry
	versions *versionCache

	mu         sync.Mutex
	terminated bool
}

var _ Extension = (*Session)(nil)

// NewSession wraps a connected driver with an empty registry and an expired version cache
func NewSession(driver Driver) *Session {
	return &Session{
		driver:   driver,
		registry: NewRegistry(driver.Name(), driver.NewWatcher),
		versions: newVersionCache(VersionTTL),
	}
}

// Engine returns the driver name
func (s *Session) Engine() string {
	return s.driver.Name()
}

// Version returns the cached engine version data
func (s *Session) Version() map[string]interface{} {
	return s.versions.get()
}

// RefreshVersion refetches version data if the cached copy is older than VersionTTL.
// Failures are logged and leave an empty cache until the next TTL expiry.
func (s *Session) RefreshVersion(ctx context.Context) {
	s.versions.refresh(ctx, s.Engine(), s.driver.Version)
}

// Stats lists the engine's containers, reconciles watchers against them and
// returns each container's latest sample. A failed list call yields no
// containers and stops every watcher.
func (s *Session) Stats(ctx context.Context, all bool) ContainersStatistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	engine := s.Engine()
	result := ContainersStatistics{
		Engine:     engine,
		Containers: []map[string]interface{}{},
	}

	if s.terminated {
		result.Version = s.Version()
		return result
	}

	containers, err := s.driver.ListContainers(ctx, all)
	if err != nil {
		log.Errorf("%s: can't get containers list: %v", engine, err)
		containers = nil
	}

	created, stopped := s.registry.Reconcile(containers)
	if created > 0 || stopped > 0 {
		log.Debugf("%s: reconciled watchers (+%d -%d, %d active)", engine, created, stopped, s.registry.Len())
	}

	s.RefreshVersion(ctx)
	result.Version = s.Version()

	seen := make(map[string]struct{}, len(containers))
	for _, c := range containers {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}

		w, ok := s.registry.Get(c.ID)
		if !ok {
			continue
		}
		result.Containers = append(result.Containers, containerRow(engine, c, w.ComputeActivityStats()))
	}

	return result
}

// Terminate stops every watcher and then closes the driver. Later calls do nothing.
func (s *Session) Terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminated {
		return
	}
	s.terminated = true

	stopped := s.registry.StopAll()
	log.Debugf("%s: stopped %d watchers", s.Engine(), stopped)

	if err := s.driver.Close(); err != nil {
		log.Warnf("%s: failed to close client: %v", s.Engine(), err)
	}
}

func containerRow(engine string, c models.Container, activity map[string]interface{}) map[string]interface{} {
	row := map[string]interface{}{
		"key":             ContainersKey,
		"name":            c.Name,
		"id":              c.ID,
		"image":           c.Image,
		"status":          c.State,
		"created":         c.Created,
		"command":         c.Command,
		"engine":          engine,
		"compose_project": c.ComposeProject(),
	}
	for k, v := range activity {
		row[k] = v
	}
	return row
}
