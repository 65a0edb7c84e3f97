package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/yhamdani/locadrive/internal/auth"
	"github.com/yhamdani/locadrive/internal/crypto"
	"github.com/yhamdani/locadrive/internal/docstore"
	"github.com/yhamdani/locadrive/internal/models"
)

// Authentication outcomes. Unknown username and wrong password stay
// distinguishable; the login handler reports them separately.
var (
	ErrUserExists  = errors.New("user already exists")
	ErrUnknownUser = errors.New("unknown username")
	ErrBadPassword = errors.New("wrong password")
)

// AccountRepository defines the lookups required by the AuthService.
type AccountRepository interface {
	// UsernameExists returns true if an account with the given username
	// exists in the collection.
	UsernameExists(ctx context.Context, collection, username string) (bool, error)
	// FindByUsername returns the account document, or sql.ErrNoRows.
	FindByUsername(ctx context.Context, collection, username string) (docstore.Document, error)
	// FindByID returns the account document, or sql.ErrNoRows.
	FindByID(ctx context.Context, collection, id string) (docstore.Document, error)
}

// DocumentCreator is the slice of the document store the AuthService needs
// to register accounts, so new accounts flow to live subscribers like any
// other document.
type DocumentCreator interface {
	Create(ctx context.Context, collection string, data docstore.Document) (string, error)
}

// AuthService implements account registration and password login with
// access-token issuance.
type AuthService struct {
	accounts AccountRepository
	docs     DocumentCreator
	secret   string
	tokenTTL time.Duration
}

// NewAuthService constructs an AuthService. secret signs access tokens;
// ttl bounds their validity.
func NewAuthService(accounts AccountRepository, docs DocumentCreator, secret string, ttl time.Duration) *AuthService {
	return &AuthService{accounts: accounts, docs: docs, secret: secret, tokenTTL: ttl}
}

// CollectionForRole maps a role string to the account collection it lives
// in: admin/staff accounts are employees, everyone else is a customer.
func CollectionForRole(role string) string {
	if role == "admin" || role == "staff" {
		return models.CollectionEmployees
	}
	return models.CollectionCustomers
}

// Register creates an account with a SHA-256 password digest. Returns
// ErrUserExists when the username is taken in the target collection.
func (s *AuthService) Register(ctx context.Context, username, password, role string) (string, error) {
	collection := CollectionForRole(role)
	exists, err := s.accounts.UsernameExists(ctx, collection, username)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrUserExists
	}
	return s.docs.Create(ctx, collection, docstore.Document{
		"username":  username,
		"password":  crypto.Digest(password),
		"role":      role,
		"status":    "Active",
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	})
}

// Login verifies the password digest and issues an access token. The error
// distinguishes an unknown username from a wrong password.
func (s *AuthService) Login(ctx context.Context, collection, username, password string) (models.Account, string, error) {
	doc, err := s.accounts.FindByUsername(ctx, collection, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, "", ErrUnknownUser
		}
		return models.Account{}, "", err
	}

	account := models.AccountFromDocument(doc)
	if !crypto.Matches(account.Password, password) {
		return models.Account{}, "", ErrBadPassword
	}

	token, err := auth.NewAccessToken(s.secret, account.ID, s.tokenTTL, auth.Claims{
		Username:   account.Username,
		Role:       account.Role,
		Collection: collection,
	})
	if err != nil {
		return models.Account{}, "", err
	}
	return account, token, nil
}

// AccountByID returns the current account record behind a verified token
// subject. Returns ErrUnknownUser when the account no longer exists.
func (s *AuthService) AccountByID(ctx context.Context, collection, id string) (models.Account, error) {
	doc, err := s.accounts.FindByID(ctx, collection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, ErrUnknownUser
		}
		return models.Account{}, err
	}
	return models.AccountFromDocument(doc), nil
}

// TokenSecret exposes the signing secret for the auth middleware.
func (s *AuthService) TokenSecret() string {
	return s.secret
}
