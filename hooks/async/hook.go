// Package asynchook moves callcache.Hooks callbacks off the calling goroutine.
//
//	raw := sloghook.New(slog.Default(), sloghook.Options{MissEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	c, _ := callcache.New(ctx, callcache.Options{Store: store, Hooks: hooks})
//
// Events are dropped, not blocked on, when the queue is full.
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/callcache"
)

type Hooks struct {
	inner   callcache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ callcache.Hooks = (*Hooks)(nil)

func New(inner callcache.Hooks, workers, qlen int) *Hooks {
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

// Close drains queued events and stops the workers. Later events are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) Flushed(db int)        { h.try(func() { h.inner.Flushed(db) }) }
func (h *Hooks) Called(op, out string) { h.try(func() { h.inner.Called(op, out) }) }
func (h *Hooks) Miss(key string)       { h.try(func() { h.inner.Miss(key) }) }
func (h *Hooks) TxFailed(op string, err error) {
	h.try(func() { h.inner.TxFailed(op, err) })
}
