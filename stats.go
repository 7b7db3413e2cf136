package entitycache

import (
	"sync/atomic"
	"time"
)

// Stats is a point-in-time snapshot. Counters are per process and reset on restart;
// under concurrency Hits and Misses may be read a few increments apart.
type Stats struct {
	Cache      string    `json:"cache"`
	Enabled    bool      `json:"enabled"`
	Loaded     bool      `json:"loaded"`
	Hits       uint64    `json:"hits"`
	Misses     uint64    `json:"misses"`
	HitRate    float64   `json:"hit_rate"` // hits/(hits+misses); 0 before any lookup
	Entities   int64     `json:"entities"`   // as of the last load
	Partitions int64     `json:"partitions"` // distinct partitions written by the last load
	Generation uint64    `json:"generation"` // store-wide load counter observed at the last load
	LoadedAt   time.Time `json:"loaded_at"`
}

// Lookups is the number of lookup calls counted so far.
func (s Stats) Lookups() uint64 { return s.Hits + s.Misses }

type counters struct {
	hits       atomic.Uint64
	misses     atomic.Uint64
	loaded     atomic.Bool
	entities   atomic.Int64
	partitions atomic.Int64
	generation atomic.Uint64
	loadedAt   atomic.Int64 // unix nanos
}

func (c *counters) hit()  { c.hits.Add(1) }
func (c *counters) miss() { c.misses.Add(1) }

func (c *counters) markLoaded(entities, partitions int, at time.Time) {
	c.entities.Store(int64(entities))
	c.partitions.Store(int64(partitions))
	c.loadedAt.Store(at.UnixNano())
	c.loaded.Store(true)
}

func (c *counters) markCleared() {
	c.loaded.Store(false)
	c.entities.Store(0)
	c.partitions.Store(0)
}

func (c *counters) snapshot() Stats {
	s := Stats{
		Loaded:     c.loaded.Load(),
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Entities:   c.entities.Load(),
		Partitions: c.partitions.Load(),
		Generation: c.generation.Load(),
	}
	if n := c.loadedAt.Load(); n != 0 {
		s.LoadedAt = time.Unix(0, n)
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}
