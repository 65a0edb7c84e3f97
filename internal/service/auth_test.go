package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/yhamdani/locadrive/internal/crypto"
	"github.com/yhamdani/locadrive/internal/docstore"
	"github.com/yhamdani/locadrive/internal/models"
	"github.com/yhamdani/locadrive/internal/service"
)

type mockAccounts struct {
	UsernameExistsFunc func(ctx context.Context, collection, username string) (bool, error)
	FindByUsernameFunc func(ctx context.Context, collection, username string) (docstore.Document, error)
	FindByIDFunc       func(ctx context.Context, collection, id string) (docstore.Document, error)
}

func (m *mockAccounts) UsernameExists(ctx context.Context, collection, username string) (bool, error) {
	return m.UsernameExistsFunc(ctx, collection, username)
}

func (m *mockAccounts) FindByUsername(ctx context.Context, collection, username string) (docstore.Document, error) {
	return m.FindByUsernameFunc(ctx, collection, username)
}

func (m *mockAccounts) FindByID(ctx context.Context, collection, id string) (docstore.Document, error) {
	return m.FindByIDFunc(ctx, collection, id)
}

type mockCreator struct {
	CreateFunc func(ctx context.Context, collection string, data docstore.Document) (string, error)
}

func (m *mockCreator) Create(ctx context.Context, collection string, data docstore.Document) (string, error) {
	return m.CreateFunc(ctx, collection, data)
}

func TestRegister_NewCustomer(t *testing.T) {
	accounts := &mockAccounts{
		UsernameExistsFunc: func(_ context.Context, collection, username string) (bool, error) {
			if collection != models.CollectionCustomers {
				t.Errorf("collection = %q; want %q", collection, models.CollectionCustomers)
			}
			return false, nil
		},
	}
	var created docstore.Document
	creator := &mockCreator{
		CreateFunc: func(_ context.Context, collection string, data docstore.Document) (string, error) {
			created = data
			return "u1", nil
		},
	}
	svc := service.NewAuthService(accounts, creator, "secret", time.Hour)

	id, err := svc.Register(context.Background(), "karim", "pass123", "utilisateur")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if id != "u1" {
		t.Errorf("id = %q; want u1", id)
	}
	if created["password"] != crypto.Digest("pass123") {
		t.Error("stored password is not the SHA-256 digest")
	}
	if created["password"] == "pass123" {
		t.Error("plaintext password stored")
	}
}

func TestRegister_AdminGoesToEmployees(t *testing.T) {
	accounts := &mockAccounts{
		UsernameExistsFunc: func(_ context.Context, collection, _ string) (bool, error) {
			if collection != models.CollectionEmployees {
				t.Errorf("collection = %q; want %q", collection, models.CollectionEmployees)
			}
			return false, nil
		},
	}
	creator := &mockCreator{
		CreateFunc: func(_ context.Context, collection string, _ docstore.Document) (string, error) {
			if collection != models.CollectionEmployees {
				t.Errorf("create collection = %q; want %q", collection, models.CollectionEmployees)
			}
			return "e1", nil
		},
	}
	svc := service.NewAuthService(accounts, creator, "secret", time.Hour)
	if _, err := svc.Register(context.Background(), "admin", "admin", "admin"); err != nil {
		t.Fatalf("Register error: %v", err)
	}
}

func TestRegister_Conflict(t *testing.T) {
	accounts := &mockAccounts{
		UsernameExistsFunc: func(context.Context, string, string) (bool, error) {
			return true, nil
		},
	}
	svc := service.NewAuthService(accounts, &mockCreator{}, "secret", time.Hour)
	_, err := svc.Register(context.Background(), "karim", "x", "utilisateur")
	if !errors.Is(err, service.ErrUserExists) {
		t.Fatalf("error = %v; want ErrUserExists", err)
	}
}

func TestLogin_Success(t *testing.T) {
	accounts := &mockAccounts{
		FindByUsernameFunc: func(context.Context, string, string) (docstore.Document, error) {
			return docstore.Document{
				"id":       "e1",
				"username": "admin",
				"password": crypto.Digest("admin"),
				"role":     "admin",
			}, nil
		},
	}
	svc := service.NewAuthService(accounts, nil, "secret", time.Hour)

	account, token, err := svc.Login(context.Background(), models.CollectionEmployees, "admin", "admin")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if account.Role != "admin" || token == "" {
		t.Errorf("unexpected result: account=%+v token=%q", account, token)
	}
}

func TestLogin_UnknownUserDistinctFromBadPassword(t *testing.T) {
	accounts := &mockAccounts{
		FindByUsernameFunc: func(context.Context, string, string) (docstore.Document, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := service.NewAuthService(accounts, nil, "secret", time.Hour)
	_, _, err := svc.Login(context.Background(), models.CollectionCustomers, "ghost", "x")
	if !errors.Is(err, service.ErrUnknownUser) {
		t.Fatalf("error = %v; want ErrUnknownUser", err)
	}

	accounts.FindByUsernameFunc = func(context.Context, string, string) (docstore.Document, error) {
		return docstore.Document{"id": "u1", "username": "karim", "password": crypto.Digest("right")}, nil
	}
	_, _, err = svc.Login(context.Background(), models.CollectionCustomers, "karim", "wrong")
	if !errors.Is(err, service.ErrBadPassword) {
		t.Fatalf("error = %v; want ErrBadPassword", err)
	}
}

func TestAccountByID(t *testing.T) {
	accounts := &mockAccounts{
		FindByIDFunc: func(_ context.Context, collection, id string) (docstore.Document, error) {
			if collection != models.CollectionCustomers || id != "u9" {
				t.Errorf("lookup = %s/%s; want %s/u9", collection, id, models.CollectionCustomers)
			}
			return docstore.Document{"id": "u9", "username": "nina", "role": "utilisateur"}, nil
		},
	}
	svc := service.NewAuthService(accounts, nil, "secret", time.Hour)

	account, err := svc.AccountByID(context.Background(), models.CollectionCustomers, "u9")
	if err != nil {
		t.Fatalf("AccountByID error: %v", err)
	}
	if account.ID != "u9" || account.Username != "nina" {
		t.Errorf("unexpected account: %+v", account)
	}
}

func TestAccountByID_Gone(t *testing.T) {
	accounts := &mockAccounts{
		FindByIDFunc: func(context.Context, string, string) (docstore.Document, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := service.NewAuthService(accounts, nil, "secret", time.Hour)
	if _, err := svc.AccountByID(context.Background(), models.CollectionCustomers, "gone"); !errors.Is(err, service.ErrUnknownUser) {
		t.Fatalf("error = %v; want ErrUnknownUser", err)
	}
}
