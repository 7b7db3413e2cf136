// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/entitycache/caches/apikeys"
//	"github.com/unkn0wn-root/entitycache/hooks/async"
//	"github.com/unkn0wn-root/entitycache/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    DecodeFailedEvery:   10, // sample logs: ~every 10th decode failure
//	    DanglingMemberEvery: 1,  // log every dangling member
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	keys, _ := apikeys.New(apikeys.Options{
//	    Namespace: "app:prod:",
//	    Provider:  provider,
//	    Hooks:     hooks, // or `raw` if you don’t want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"
	"time"

	ec "github.com/unkn0wn-root/entitycache"
)

type Hooks struct {
	inner   ec.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Uint64
}

var _ ec.Hooks = (*Hooks)(nil)

func New(inner ec.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped is the number of events discarded because the queue was full.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	defer func() {
		// send on closed queue
		if recover() != nil {
			h.dropped.Add(1)
		}
	}()
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) Cleared(c string, n int) { h.try(func() { h.inner.Cleared(c, n) }) }
func (h *Hooks) DecodeFailed(k string, err error) {
	h.try(func() { h.inner.DecodeFailed(k, err) })
}
func (h *Hooks) DanglingMember(p, id string) { h.try(func() { h.inner.DanglingMember(p, id) }) }
func (h *Hooks) Loaded(c string, e, p int, took time.Duration) {
	h.try(func() { h.inner.Loaded(c, e, p, took) })
}
func (h *Hooks) PartitionMigrated(k string, l, e int) {
	h.try(func() { h.inner.PartitionMigrated(k, l, e) })
}
