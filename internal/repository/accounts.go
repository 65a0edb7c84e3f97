package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/yhamdani/locadrive/internal/docstore"
)

// PostgresAccountRepository answers account lookups against the documents
// table, querying the JSONB payload by username.
type PostgresAccountRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAccountRepository creates a repository over the given
// database connection.
func NewPostgresAccountRepository(db *sql.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{DB: db}
}

// UsernameExists reports whether an account with the given username exists
// in the collection.
func (r *PostgresAccountRepository) UsernameExists(ctx context.Context, collection, username string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM documents WHERE collection = $1 AND data->>'username' = $2 AND deleted = false)
	`, collection, username).Scan(&exists)
	return exists, err
}

// FindByUsername returns the account document matching the username.
// Returns sql.ErrNoRows when no account matches.
func (r *PostgresAccountRepository) FindByUsername(ctx context.Context, collection, username string) (docstore.Document, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, data FROM documents WHERE collection = $1 AND data->>'username' = $2 AND deleted = false
	`, collection, username)
	return scanDocument(row)
}

// FindByID returns the account document with the given id.
// Returns sql.ErrNoRows when no account matches.
func (r *PostgresAccountRepository) FindByID(ctx context.Context, collection, id string) (docstore.Document, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, data FROM documents WHERE collection = $1 AND id = $2 AND deleted = false
	`, collection, id)
	return scanDocument(row)
}

func scanDocument(row *sql.Row) (docstore.Document, error) {
	var (
		id  string
		raw []byte
	)
	if err := row.Scan(&id, &raw); err != nil {
		return nil, err
	}
	var doc docstore.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode account %s: %w", id, err)
	}
	doc[docstore.IDField] = id
	return doc, nil
}
