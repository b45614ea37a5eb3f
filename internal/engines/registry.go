package engines

import (
	"sort"

	"github.com/container-census/containerwatch/internal/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentStops bounds how many watchers are torn down in parallel
const maxConcurrentStops = 8

// Registry maps container IDs to their watchers. It is not safe for
// concurrent use; Session serializes access.
type Registry struct {
	engine   string
	factory  func(models.Container) Watcher
	watchers map[string]Watcher
}

// NewRegistry returns an empty registry that builds watchers with factory
func NewRegistry(engine string, factory func(models.Container) Watcher) *Registry {
	return &Registry{
		engine:   engine,
		factory:  factory,
		watchers: make(map[string]Watcher),
	}
}

// Reconcile converges the registry onto containers: watchers are created for
// new IDs and stopped for absent ones. Existing watchers are left alone.
func (r *Registry) Reconcile(containers []models.Container) (created, stopped int) {
	observed := make(map[string]models.Container, len(containers))
	for _, c := range containers {
		observed[c.ID] = c
	}

	added := difference(observed, r.watchers)
	absent := difference(r.watchers, observed)

	for _, id := range added {
		log.Debugf("%s: creating watcher for container %s", r.engine, models.ShortID(id))
		r.watchers[id] = r.factory(observed[id])
	}

	r.stop(absent)

	return len(added), len(absent)
}

// StopAll stops and removes every watcher, returning how many were stopped
func (r *Registry) StopAll() int {
	ids := r.IDs()
	r.stop(ids)
	return len(ids)
}

func (r *Registry) stop(ids []string) {
	if len(ids) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrentStops)

	for _, id := range ids {
		w := r.watchers[id]
		log.Debugf("%s: stopping watcher for container %s", r.engine, models.ShortID(id))
		g.Go(func() error {
			w.Stop()
			return nil
		})
	}
	_ = g.Wait()

	for _, id := range ids {
		delete(r.watchers, id)
	}
}

// Get returns the watcher for id
func (r *Registry) Get(id string) (Watcher, bool) {
	w, ok := r.watchers[id]
	return w, ok
}

// Len returns the number of tracked containers
func (r *Registry) Len() int {
	return len(r.watchers)
}

// IDs returns the tracked container IDs in sorted order
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.watchers))
	for id := range r.watchers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// difference returns the keys of a that are not in b
func difference[A, B any](a map[string]A, b map[string]B) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}
