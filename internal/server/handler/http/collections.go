package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yhamdani/locadrive/internal/docstore"
)

// DocumentBroker defines the document-store operations required by the
// collection handlers.
type DocumentBroker interface {
	Subscribe(collection string, q docstore.Query, onData func(docstore.Snapshot), onError func(error)) docstore.UnsubscribeFunc
	Snapshot(collection string, q docstore.Query) docstore.Snapshot
	Create(ctx context.Context, collection string, data docstore.Document) (string, error)
	Patch(ctx context.Context, collection, id string, fields docstore.Document) error
	Remove(ctx context.Context, collection, id string) error
}

// CollectionHandler serves CRUD and live-watch requests for named
// collections.
type CollectionHandler struct {
	Docs DocumentBroker
	Log  *zap.Logger
}

// queryFromRequest reads optional ordering parameters:
// ?orderBy=<field>&dir=desc
func queryFromRequest(r *http.Request) docstore.Query {
	return docstore.Query{
		OrderBy:    r.URL.Query().Get("orderBy"),
		Descending: r.URL.Query().Get("dir") == "desc",
	}
}

// List returns the current result set of a collection.
func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	snap := h.Docs.Snapshot(collection, queryFromRequest(r))
	if snap == nil {
		snap = docstore.Snapshot{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}

// Create adds a document and returns its generated id.
func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	var data docstore.Document
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	id, err := h.Docs.Create(r.Context(), collection, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"id": id})
}

// Patch merges fields into a document.
func (h *CollectionHandler) Patch(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")
	var fields docstore.Document
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := h.Docs.Patch(r.Context(), collection, id, fields); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Remove deletes a document.
func (h *CollectionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")
	if err := h.Docs.Remove(r.Context(), collection, id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Watch streams full collection snapshots over server-sent events: one
// `data:` event per change, an `error` event if the stream fails, then the
// connection closes. The listener is detached when the client disconnects.
func (h *CollectionHandler) Watch(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	collection := chi.URLParam(r, "collection")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Latest-wins buffer: onData runs serially under the store lock, so a
	// full channel means the consumer is behind and the stale snapshot can
	// be dropped.
	snaps := make(chan docstore.Snapshot, 1)
	errs := make(chan error, 1)

	unsub := h.Docs.Subscribe(collection, queryFromRequest(r),
		func(s docstore.Snapshot) {
			for {
				select {
				case snaps <- s:
					return
				default:
					select {
					case <-snaps:
					default:
					}
				}
			}
		},
		func(err error) {
			select {
			case errs <- err:
			default:
			}
		},
	)
	defer unsub()

	for {
		select {
		case <-r.Context().Done():
			return
		case err := <-errs:
			fmt.Fprintf(w, "event: error\ndata: %s\n\n", err.Error())
			flusher.Flush()
			return
		case snap := <-snaps:
			payload, err := json.Marshal(snap)
			if err != nil {
				h.Log.Error("failed to encode snapshot", zap.String("collection", collection), zap.Error(err))
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
