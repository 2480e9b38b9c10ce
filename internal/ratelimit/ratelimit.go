// Package ratelimit gates room creation with a coarse fixed-window counter
// keyed by source address. Precision is deliberately low: the window is
// flushed wholesale on a fixed period rather than slid per request.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

type Window struct {
	mu     sync.Mutex
	counts map[string]int // sourceAddress -> creates in current window
	limit  int
	period time.Duration
}

func New(limit int, period time.Duration) *Window {
	if limit <= 0 {
		limit = 1
	}
	if period <= 0 {
		period = time.Minute
	}
	return &Window{counts: make(map[string]int), limit: limit, period: period}
}

// TryConsume разрешает запрос и инкрементит счётчик, либо отказывает.
func (w *Window) TryConsume(addr string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.counts[addr] >= w.limit {
		return false
	}
	w.counts[addr]++
	return true
}

// Reset сбрасывает все счётчики (начало нового окна).
func (w *Window) Reset() {
	w.mu.Lock()
	w.counts = make(map[string]int)
	w.mu.Unlock()
}

// Run flushes the window on every period tick until ctx is done.
func (w *Window) Run(ctx context.Context) {
	ticker := time.NewTicker(w.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Reset()
		case <-ctx.Done():
			return
		}
	}
}
