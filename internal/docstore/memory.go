package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store with live watcher fan-out. It backs the
// reference server (as the hot cache in front of persistence) and serves as
// a fixture for client-layer tests.
//
// Snapshot callbacks run on the mutating goroutine while the store lock is
// held, so listeners must return quickly and must not call back into the
// store. In exchange, once Unsubscribe returns no further callback can fire.
type MemoryStore struct {
	mu        sync.Mutex
	docs      map[string]map[string]Document
	order     map[string][]string
	watchers  map[int]*watcher
	nextWatch int
}

type watcher struct {
	collection string
	q          Query
	onData     func(Snapshot)
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[string]map[string]Document),
		order:    make(map[string][]string),
		watchers: make(map[int]*watcher),
	}
}

// Subscribe registers a listener and synchronously delivers the current
// snapshot before returning.
func (m *MemoryStore) Subscribe(collection string, q Query, onData func(Snapshot), onError func(error)) UnsubscribeFunc {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextWatch
	m.nextWatch++
	m.watchers[id] = &watcher{collection: collection, q: q, onData: onData}

	onData(m.snapshotLocked(collection, q))

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.watchers, id)
	}
}

// Create adds a document under a fresh uuid and notifies listeners.
func (m *MemoryStore) Create(_ context.Context, collection string, data Document) (string, error) {
	id := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putLocked(collection, id, data.Clone())
	m.notifyLocked(collection)
	return id, nil
}

// Patch merges fields into an existing document and notifies listeners.
func (m *MemoryStore) Patch(_ context.Context, collection, id string, fields Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[collection][id]
	if !ok {
		return fmt.Errorf("patch %s/%s: %w", collection, id, ErrNotFound)
	}
	for k, v := range fields {
		doc[k] = v
	}
	m.notifyLocked(collection)
	return nil
}

// Remove deletes a document and notifies listeners. Removing an unknown id
// is not an error.
func (m *MemoryStore) Remove(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[collection][id]; !ok {
		return nil
	}
	delete(m.docs[collection], id)
	ids := m.order[collection]
	for i, existing := range ids {
		if existing == id {
			m.order[collection] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	m.notifyLocked(collection)
	return nil
}

// Put upserts a document under a known id, notifying listeners. Used to seed
// the store from persistence and to apply repository-confirmed writes.
func (m *MemoryStore) Put(collection, id string, data Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putLocked(collection, id, data.Clone())
	m.notifyLocked(collection)
}

// Snapshot returns the current result set of a collection without
// registering a listener.
func (m *MemoryStore) Snapshot(collection string, q Query) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(collection, q)
}

// Get returns a copy of a single document, or ok=false if absent.
func (m *MemoryStore) Get(collection, id string) (Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[collection][id]
	if !ok {
		return nil, false
	}
	return doc.Clone(), true
}

func (m *MemoryStore) putLocked(collection, id string, data Document) {
	byID, ok := m.docs[collection]
	if !ok {
		byID = make(map[string]Document)
		m.docs[collection] = byID
	}
	if _, exists := byID[id]; !exists {
		m.order[collection] = append(m.order[collection], id)
	}
	data[IDField] = id
	byID[id] = data
}

func (m *MemoryStore) notifyLocked(collection string) {
	for _, w := range m.watchers {
		if w.collection != collection {
			continue
		}
		w.onData(m.snapshotLocked(collection, w.q))
	}
}

func (m *MemoryStore) snapshotLocked(collection string, q Query) Snapshot {
	ids := m.order[collection]
	snap := make(Snapshot, 0, len(ids))
	for _, id := range ids {
		snap = append(snap, m.docs[collection][id].Clone())
	}
	if q.OrderBy != "" {
		sort.SliceStable(snap, func(i, j int) bool {
			if q.Descending {
				return fieldLess(snap[j][q.OrderBy], snap[i][q.OrderBy])
			}
			return fieldLess(snap[i][q.OrderBy], snap[j][q.OrderBy])
		})
	}
	return snap
}

// fieldLess orders two field values: numerically when both are numbers,
// lexically otherwise.
func fieldLess(a, b any) bool {
	if isNumeric(a) && isNumeric(b) {
		return Number(a) < Number(b)
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func isNumeric(v any) bool {
	switch v.(type) {
	case float64, float32, int, int32, int64:
		return true
	default:
		return false
	}
}
