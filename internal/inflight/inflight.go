// Package inflight provides a keyed single-flight table for coalescing
// duplicate in-flight requests. Unlike a cache, entries live only while the
// underlying call is unsettled: they are removed the instant the call
// completes, success or failure, so a later call for the same key always
// executes again.
package inflight

import (
	"context"
	"sync"
)

// call is an active unit of work shared between an owner and any waiters.
type call struct {
	done chan struct{}
	val  any
	err  error
}

// Table maps keys to in-flight calls. Safe for concurrent use.
type Table struct {
	mu    sync.Mutex
	calls map[string]*call
}

// New creates an empty table.
func New() *Table {
	return &Table{calls: make(map[string]*call)}
}

// Do executes fn for the first caller of key and hands every concurrent
// caller of the same key the identical result. The third return reports
// whether the result was shared from another caller's execution. Insertion
// and removal are atomic with respect to other callers: there is no window
// in which two callers both own the same key, and no window in which a
// post-settle caller can attach to a finished call.
//
// A waiter's ctx cancels only that waiter; the owning execution continues
// for any remaining waiters.
func (t *Table) Do(ctx context.Context, key string, fn func() (any, error)) (any, error, bool) {
	t.mu.Lock()
	if c, ok := t.calls[key]; ok {
		t.mu.Unlock()
		select {
		case <-c.done:
			return c.val, c.err, true
		case <-ctx.Done():
			return nil, ctx.Err(), true
		}
	}

	c := &call{done: make(chan struct{})}
	t.calls[key] = c
	t.mu.Unlock()

	c.val, c.err = fn()

	// Remove before releasing waiters so a caller arriving after the
	// settle always starts a fresh call.
	t.mu.Lock()
	delete(t.calls, key)
	t.mu.Unlock()
	close(c.done)

	return c.val, c.err, false
}

// Len reports the number of unsettled calls, for diagnostics and tests.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}
