// Package cache keeps recently read streak records in memory so repeated
// reads skip the store. Entries are dropped whenever a mutation commits.
package cache

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/julianstephens/streakline/internal/metrics"
	"github.com/julianstephens/streakline/internal/models"
)

// Loader reads a streak record from the store.
type Loader func(ctx context.Context) (models.StreakRecord, error)

type entry struct {
	userID string
	record models.StreakRecord
}

// StreakCache is an LRU of streak records keyed by habit ID. Concurrent
// misses for the same habit share one store read.
//
// Every Invalidate bumps a generation counter. A load that started before an
// invalidation is returned to its callers but never stored, so a slow read
// cannot put a stale record back after a commit.
type StreakCache struct {
	lru     *lru.Cache
	group   singleflight.Group
	gen     atomic.Uint64
	metrics *metrics.Metrics
}

func NewStreakCache(size int, m *metrics.Metrics) (*StreakCache, error) {
	l, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create streak cache: %w", err)
	}
	return &StreakCache{lru: l, metrics: m}, nil
}

// Get returns the cached record for habitID when it belongs to userID and
// falls back to load otherwise. A nil cache always loads.
func (c *StreakCache) Get(ctx context.Context, userID, habitID string, load Loader) (models.StreakRecord, error) {
	if c == nil {
		return load(ctx)
	}

	if v, ok := c.lru.Get(habitID); ok {
		if e := v.(entry); e.userID == userID {
			c.metrics.ObserveCacheLookup(true)
			return e.record, nil
		}
	}
	c.metrics.ObserveCacheLookup(false)

	gen := c.gen.Load()
	key := fmt.Sprintf("%d/%s/%s", gen, habitID, userID)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		rec, err := load(ctx)
		if err != nil {
			return models.StreakRecord{}, err
		}
		if c.gen.Load() == gen {
			c.lru.Add(habitID, entry{userID: userID, record: rec})
		}
		return rec, nil
	})
	if err != nil {
		return models.StreakRecord{}, err
	}
	return v.(models.StreakRecord), nil
}

// Invalidate drops the record for habitID and fences off in-flight loads.
func (c *StreakCache) Invalidate(habitID string) {
	if c == nil {
		return
	}
	c.gen.Add(1)
	c.lru.Remove(habitID)
}

// Len reports the number of cached records.
func (c *StreakCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
