// Package state holds screen-local view state fed by live collection
// subscriptions: each snapshot wholesale-replaces the previous one, and a
// load tracker combines several subscriptions into a single loading flag.
package state

import (
	"sync"

	"github.com/yhamdani/locadrive/internal/docstore"
)

// Collection holds the latest snapshot of one subscribed collection.
// Each delivery replaces the previous result set; there is no diffing.
type Collection struct {
	mu   sync.Mutex
	snap docstore.Snapshot
}

// Replace installs a new snapshot, discarding the previous one.
func (c *Collection) Replace(snap docstore.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = snap
}

// Snapshot returns the current snapshot. The returned slice must be treated
// as read-only; it is shared with the subscription callback.
func (c *Collection) Snapshot() docstore.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Len returns the current record count.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.snap)
}

// LoadTracker combines several subscriptions into one loading flag. Loading
// starts true and flips false once every tracked name has reported done,
// in any arrival order. An errored subscription counts as done, so partial
// data surfaces instead of a spinner that never resolves.
type LoadTracker struct {
	mu      sync.Mutex
	pending map[string]bool
}

// NewLoadTracker tracks the given subscription names.
func NewLoadTracker(names ...string) *LoadTracker {
	pending := make(map[string]bool, len(names))
	for _, n := range names {
		pending[n] = true
	}
	return &LoadTracker{pending: pending}
}

// Done marks one subscription as having delivered (or failed). Unknown
// names and repeat calls are no-ops.
func (t *LoadTracker) Done(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, name)
}

// Loading reports whether any tracked subscription has yet to deliver.
func (t *LoadTracker) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending) > 0
}

// Bind subscribes target to a collection: every snapshot wholesale-replaces
// the collection state and marks the tracker done; an error also marks done.
// The returned handle must be called on teardown or the listener leaks.
func Bind(store docstore.Store, collection string, q docstore.Query, target *Collection, tracker *LoadTracker) docstore.UnsubscribeFunc {
	return store.Subscribe(collection, q,
		func(snap docstore.Snapshot) {
			target.Replace(snap)
			if tracker != nil {
				tracker.Done(collection)
			}
		},
		func(error) {
			if tracker != nil {
				tracker.Done(collection)
			}
		},
	)
}
