package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func setupAccountsMock(t *testing.T) (*PostgresAccountRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresAccountRepository(db)
	cleanup := func() {
		db.Close()
	}
	return repo, mock, cleanup
}

func TestUsernameExists(t *testing.T) {
	repo, mock, cleanup := setupAccountsMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM documents WHERE collection = $1 AND data->>'username' = $2`)).
		WithArgs("employees", "admin").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.UsernameExists(context.Background(), "employees", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected username to exist")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestFindByUsername_Success(t *testing.T) {
	repo, mock, cleanup := setupAccountsMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, data FROM documents WHERE collection = $1 AND data->>'username' = $2`)).
		WithArgs("utilisateurs", "karim").
		WillReturnRows(sqlmock.NewRows([]string{"id", "data"}).
			AddRow("u7", []byte(`{"username":"karim","role":"utilisateur"}`)))

	doc, err := repo.FindByUsername(context.Background(), "utilisateurs", "karim")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID() != "u7" || doc["username"] != "karim" {
		t.Errorf("unexpected document: %+v", doc)
	}
}

func TestFindByUsername_NotFound(t *testing.T) {
	repo, mock, cleanup := setupAccountsMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, data FROM documents`)).
		WithArgs("utilisateurs", "ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "utilisateurs", "ghost")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestFindByID_Success(t *testing.T) {
	repo, mock, cleanup := setupAccountsMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, data FROM documents WHERE collection = $1 AND id = $2`)).
		WithArgs("employees", "e1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "data"}).
			AddRow("e1", []byte(`{"username":"admin","role":"admin"}`)))

	doc, err := repo.FindByID(context.Background(), "employees", "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc["role"] != "admin" {
		t.Errorf("unexpected document: %+v", doc)
	}
}
