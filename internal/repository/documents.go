// Package repository provides PostgreSQL persistence for the document store
// and account lookups.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yhamdani/locadrive/internal/docstore"
)

// StoredDocument is one persisted record with its collection and identifier.
type StoredDocument struct {
	Collection string
	ID         string
	Data       docstore.Document
}

// PostgresDocumentRepository persists schemaless documents in a single
// JSONB-backed table.
type PostgresDocumentRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresDocumentRepository creates a repository over the given
// database connection.
func NewPostgresDocumentRepository(db *sql.DB) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{DB: db}
}

// LoadAll returns every live document across all collections, oldest write
// first, for seeding the in-memory store at startup.
func (r *PostgresDocumentRepository) LoadAll(ctx context.Context) ([]StoredDocument, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT collection, id, data FROM documents WHERE deleted = false ORDER BY updated_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("LoadAll: %w", err)
	}
	defer rows.Close()

	var docs []StoredDocument
	for rows.Next() {
		var (
			doc StoredDocument
			raw []byte
		)
		if err := rows.Scan(&doc.Collection, &doc.ID, &raw); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if err := json.Unmarshal(raw, &doc.Data); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", doc.Collection, doc.ID, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Insert stores a new document.
func (r *PostgresDocumentRepository) Insert(ctx context.Context, collection, id string, data docstore.Document) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, updated_at, deleted)
		VALUES ($1, $2, $3, $4, false)
	`, collection, id, raw, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update replaces the stored payload of an existing document.
func (r *PostgresDocumentRepository) Update(ctx context.Context, collection, id string, data docstore.Document) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE documents SET data = $3, updated_at = $4 WHERE collection = $1 AND id = $2 AND deleted = false
	`, collection, id, raw, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SoftDelete marks a document deleted; the cleaner purges it later.
func (r *PostgresDocumentRepository) SoftDelete(ctx context.Context, collection, id string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE documents SET deleted = true, updated_at = $3 WHERE collection = $1 AND id = $2
	`, collection, id, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}
