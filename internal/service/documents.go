// Package service provides business logic for the document store and
// authentication, delegating persistence to repository interfaces.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yhamdani/locadrive/internal/docstore"
	"github.com/yhamdani/locadrive/internal/repository"
)

// DocumentRepository defines the persistence operations required by the
// DocumentService.
type DocumentRepository interface {
	// LoadAll returns every live document for seeding the in-memory store.
	LoadAll(ctx context.Context) ([]repository.StoredDocument, error)
	// Insert stores a new document.
	Insert(ctx context.Context, collection, id string, data docstore.Document) error
	// Update replaces the payload of an existing document.
	Update(ctx context.Context, collection, id string, data docstore.Document) error
	// SoftDelete marks a document deleted.
	SoftDelete(ctx context.Context, collection, id string) error
}

// DocumentService keeps the live in-memory store and persistence in step:
// every write goes to the repository first and is applied to the in-memory
// store once confirmed, which is what fans the new snapshot out to
// subscribers. It implements docstore.Store.
type DocumentService struct {
	repo DocumentRepository
	live *docstore.MemoryStore
	log  *zap.Logger
}

// NewDocumentService constructs a DocumentService using the provided
// repository.
func NewDocumentService(repo DocumentRepository, log *zap.Logger) *DocumentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentService{repo: repo, live: docstore.NewMemoryStore(), log: log}
}

// Start seeds the in-memory store from persistence. Call once before
// serving.
func (s *DocumentService) Start(ctx context.Context) error {
	docs, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("seed documents: %w", err)
	}
	for _, d := range docs {
		s.live.Put(d.Collection, d.ID, d.Data)
	}
	s.log.Info("document store seeded", zap.Int("documents", len(docs)))
	return nil
}

// Subscribe registers a live listener on a collection.
func (s *DocumentService) Subscribe(collection string, q docstore.Query, onData func(docstore.Snapshot), onError func(error)) docstore.UnsubscribeFunc {
	return s.live.Subscribe(collection, q, onData, onError)
}

// Snapshot returns the current result set of a collection.
func (s *DocumentService) Snapshot(collection string, q docstore.Query) docstore.Snapshot {
	return s.live.Snapshot(collection, q)
}

// Get returns a single live document.
func (s *DocumentService) Get(collection, id string) (docstore.Document, bool) {
	return s.live.Get(collection, id)
}

// Create persists a new document under a fresh id and publishes it.
func (s *DocumentService) Create(ctx context.Context, collection string, data docstore.Document) (string, error) {
	id := uuid.NewString()
	doc := data.Clone()
	delete(doc, docstore.IDField)
	if err := s.repo.Insert(ctx, collection, id, doc); err != nil {
		return "", err
	}
	s.live.Put(collection, id, doc)
	return id, nil
}

// Patch merges fields into an existing document and publishes the result.
func (s *DocumentService) Patch(ctx context.Context, collection, id string, fields docstore.Document) error {
	existing, ok := s.live.Get(collection, id)
	if !ok {
		return fmt.Errorf("patch %s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	for k, v := range fields {
		if k == docstore.IDField {
			continue
		}
		existing[k] = v
	}
	delete(existing, docstore.IDField)
	if err := s.repo.Update(ctx, collection, id, existing); err != nil {
		return err
	}
	s.live.Put(collection, id, existing)
	return nil
}

// Remove soft-deletes a document and publishes its disappearance.
func (s *DocumentService) Remove(ctx context.Context, collection, id string) error {
	if err := s.repo.SoftDelete(ctx, collection, id); err != nil {
		return err
	}
	return s.live.Remove(ctx, collection, id)
}
