// Package docstore defines the client-facing contract of the document
// backend: schemaless records grouped into named collections, plain CRUD
// mutations and live subscriptions that deliver the full result set on
// every change.
package docstore

import (
	"context"
	"errors"
	"strconv"
)

// ErrNotFound reports a patch against a document that does not exist.
var ErrNotFound = errors.New("document not found")

// IDField is the document field carrying the record identifier.
const IDField = "id"

// Document is a schemaless backend record tagged with its identifier.
type Document map[string]any

// ID returns the document identifier, or "" if absent.
func (d Document) ID() string {
	return String(d[IDField])
}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Snapshot is the complete current result set of a subscribed collection,
// delivered on every change.
type Snapshot []Document

// Clone returns a copy of the snapshot with each document shallow-copied.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for i, d := range s {
		out[i] = d.Clone()
	}
	return out
}

// Query describes optional single-field ordering for a subscription.
// Ordering is applied by the backend; clients do no sorting of their own.
type Query struct {
	// OrderBy names the field to order by. Empty means backend default order.
	OrderBy string
	// Descending reverses the order when OrderBy is set.
	Descending bool
}

// UnsubscribeFunc detaches a live subscription. After it returns, no further
// callbacks fire for that subscription. Failing to call it on teardown leaks
// a live listener.
type UnsubscribeFunc func()

// Store is the document backend boundary: live subscriptions plus
// create/patch/remove mutations. Mutations are fire-and-forget from the
// caller's perspective; the next subscription snapshot is the confirmation.
type Store interface {
	// Subscribe registers a listener on a collection. onData receives the
	// entire current result set immediately and again after every change.
	// onError receives backend errors once, with no retry.
	Subscribe(collection string, q Query, onData func(Snapshot), onError func(error)) UnsubscribeFunc

	// Create adds a new document and returns its generated id.
	Create(ctx context.Context, collection string, data Document) (string, error)

	// Patch merges the given fields into an existing document.
	Patch(ctx context.Context, collection, id string, fields Document) error

	// Remove deletes a document by id.
	Remove(ctx context.Context, collection, id string) error
}

// String coerces a document field to a string. Non-strings degrade to "".
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Number coerces a document field to a float64. Numeric strings are parsed;
// anything unparseable or missing degrades to 0.
func Number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Bool coerces a document field to a bool. Non-bools degrade to false.
func Bool(v any) bool {
	b, _ := v.(bool)
	return b
}
