package engines

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// versionCache holds engine version data for ttl after each fetch attempt.
// A failed fetch empties the cache but still counts as an attempt.
type versionCache struct {
	mu        sync.RWMutex
	info      map[string]interface{}
	lastFetch time.Time
	ttl       time.Duration
	now       func() time.Time
}

func newVersionCache(ttl time.Duration) *versionCache {
	return &versionCache{
		info: map[string]interface{}{},
		ttl:  ttl,
		now:  time.Now,
	}
}

func (c *versionCache) get() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info := make(map[string]interface{}, len(c.info))
	for k, v := range c.info {
		info[k] = v
	}
	return info
}

func (c *versionCache) stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastFetch.IsZero() || c.now().Sub(c.lastFetch) >= c.ttl
}

// refresh calls fetch if the cache is stale and reports whether it did
func (c *versionCache) refresh(ctx context.Context, engine string, fetch func(context.Context) (map[string]interface{}, error)) bool {
	if !c.stale() {
		return false
	}

	info, err := fetch(ctx)
	if err != nil {
		log.Errorf("%s: version update failed: %v", engine, err)
		info = map[string]interface{}{}
	}
	if info == nil {
		info = map[string]interface{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.info = info
	if now := c.now(); now.After(c.lastFetch) {
		c.lastFetch = now
	}
	return true
}

func (c *versionCache) lastFetchTime() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastFetch
}
