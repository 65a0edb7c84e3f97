package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/yhamdani/locadrive/internal/docstore"
	"github.com/yhamdani/locadrive/internal/repository"
	"github.com/yhamdani/locadrive/internal/service"
)

type mockDocRepo struct {
	LoadAllFunc    func(ctx context.Context) ([]repository.StoredDocument, error)
	InsertFunc     func(ctx context.Context, collection, id string, data docstore.Document) error
	UpdateFunc     func(ctx context.Context, collection, id string, data docstore.Document) error
	SoftDeleteFunc func(ctx context.Context, collection, id string) error
}

func (m *mockDocRepo) LoadAll(ctx context.Context) ([]repository.StoredDocument, error) {
	if m.LoadAllFunc == nil {
		return nil, nil
	}
	return m.LoadAllFunc(ctx)
}

func (m *mockDocRepo) Insert(ctx context.Context, collection, id string, data docstore.Document) error {
	if m.InsertFunc == nil {
		return nil
	}
	return m.InsertFunc(ctx, collection, id, data)
}

func (m *mockDocRepo) Update(ctx context.Context, collection, id string, data docstore.Document) error {
	if m.UpdateFunc == nil {
		return nil
	}
	return m.UpdateFunc(ctx, collection, id, data)
}

func (m *mockDocRepo) SoftDelete(ctx context.Context, collection, id string) error {
	if m.SoftDeleteFunc == nil {
		return nil
	}
	return m.SoftDeleteFunc(ctx, collection, id)
}

func TestStart_SeedsLiveStore(t *testing.T) {
	repo := &mockDocRepo{
		LoadAllFunc: func(context.Context) ([]repository.StoredDocument, error) {
			return []repository.StoredDocument{
				{Collection: "cars", ID: "c1", Data: docstore.Document{"model": "Clio"}},
				{Collection: "cars", ID: "c2", Data: docstore.Document{"model": "208"}},
			}, nil
		},
	}
	svc := service.NewDocumentService(repo, nil)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if got := len(svc.Snapshot("cars", docstore.Query{})); got != 2 {
		t.Errorf("expected 2 seeded cars, got %d", got)
	}
}

func TestStart_RepoError(t *testing.T) {
	wantErr := errors.New("db down")
	repo := &mockDocRepo{
		LoadAllFunc: func(context.Context) ([]repository.StoredDocument, error) {
			return nil, wantErr
		},
	}
	svc := service.NewDocumentService(repo, nil)
	if err := svc.Start(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("Start error = %v; want %v", err, wantErr)
	}
}

func TestCreate_PersistsThenPublishes(t *testing.T) {
	var insertedID string
	repo := &mockDocRepo{
		InsertFunc: func(_ context.Context, collection, id string, data docstore.Document) error {
			if collection != "cars" {
				t.Errorf("Insert collection = %q; want cars", collection)
			}
			insertedID = id
			return nil
		},
	}
	svc := service.NewDocumentService(repo, nil)

	var snaps []docstore.Snapshot
	unsub := svc.Subscribe("cars", docstore.Query{}, func(s docstore.Snapshot) { snaps = append(snaps, s) }, nil)
	defer unsub()

	id, err := svc.Create(context.Background(), "cars", docstore.Document{"model": "Megane"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if id != insertedID {
		t.Errorf("returned id %q does not match persisted id %q", id, insertedID)
	}
	if len(snaps) != 2 || len(snaps[1]) != 1 {
		t.Fatalf("expected snapshot after create, got %d snapshots", len(snaps))
	}
	if snaps[1][0].ID() != id {
		t.Errorf("published document id = %q; want %q", snaps[1][0].ID(), id)
	}
}

func TestCreate_RepoErrorDoesNotPublish(t *testing.T) {
	wantErr := errors.New("insert failed")
	repo := &mockDocRepo{
		InsertFunc: func(context.Context, string, string, docstore.Document) error {
			return wantErr
		},
	}
	svc := service.NewDocumentService(repo, nil)

	calls := 0
	unsub := svc.Subscribe("cars", docstore.Query{}, func(docstore.Snapshot) { calls++ }, nil)
	defer unsub()

	_, err := svc.Create(context.Background(), "cars", docstore.Document{"model": "C3"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Create error = %v; want %v", err, wantErr)
	}
	if calls != 1 {
		t.Errorf("failed write must not publish a snapshot; got %d callbacks", calls)
	}
}

func TestPatch_MergesAndPersists(t *testing.T) {
	var updated docstore.Document
	repo := &mockDocRepo{
		UpdateFunc: func(_ context.Context, _, _ string, data docstore.Document) error {
			updated = data
			return nil
		},
	}
	svc := service.NewDocumentService(repo, nil)
	id, err := svc.Create(context.Background(), "rentals", docstore.Document{"status": "Pending", "customer": "Awa"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	err = svc.Patch(context.Background(), "rentals", id, docstore.Document{"status": "Active"})
	if err != nil {
		t.Fatalf("Patch error: %v", err)
	}
	if updated["status"] != "Active" || updated["customer"] != "Awa" {
		t.Errorf("persisted payload missing merged fields: %+v", updated)
	}
}

func TestPatch_UnknownDocument(t *testing.T) {
	svc := service.NewDocumentService(&mockDocRepo{}, nil)
	if err := svc.Patch(context.Background(), "rentals", "missing", docstore.Document{"status": "Active"}); err == nil {
		t.Fatal("expected error for unknown document")
	}
}

func TestRemove_PublishesDisappearance(t *testing.T) {
	deleted := false
	repo := &mockDocRepo{
		SoftDeleteFunc: func(_ context.Context, collection, id string) error {
			deleted = true
			return nil
		},
	}
	svc := service.NewDocumentService(repo, nil)
	id, err := svc.Create(context.Background(), "cars", docstore.Document{"model": "Zoe"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := svc.Remove(context.Background(), "cars", id); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if !deleted {
		t.Error("expected SoftDelete to be called")
	}
	if got := len(svc.Snapshot("cars", docstore.Query{})); got != 0 {
		t.Errorf("expected empty snapshot after remove, got %d", got)
	}
}
