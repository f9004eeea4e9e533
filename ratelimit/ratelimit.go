// SPDX-License-Identifier: GPL-3.0-only

// Package ratelimit implements a fixed-window request counter keyed by
// a logical key such as "roadmap:<user_id>". It is a cheap abuse guard,
// not a billing-accurate limiter: bursts straddling a window boundary
// can pass up to twice the limit.
package ratelimit

import (
	"sync"
	"time"
)

type entry struct {
	count   int
	resetAt time.Time
}

type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type Options struct {
	Window time.Duration
	Limit  int
}

var (
	mu    sync.Mutex
	store = make(map[string]*entry)
)

// Check records one request against key and reports whether it fits in
// the current window. The first request for a key, or a request after
// the window expired, starts a fresh window. Stale keys are never
// evicted; long-lived processes with unbounded key cardinality leak.
func Check(key string, opts Options) Result {
	now := time.Now()

	mu.Lock()
	defer mu.Unlock()

	e, ok := store[key]
	if !ok || !e.resetAt.After(now) {
		e = &entry{resetAt: now.Add(opts.Window)}
		store[key] = e
	}
	e.count++

	remaining := opts.Limit - e.count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   e.count <= opts.Limit,
		Remaining: remaining,
		ResetAt:   e.resetAt,
	}
}

// Reset clears all windows. Test hook.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	store = make(map[string]*entry)
}
