package store

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/yhamdani/locadrive/internal/docstore"
	"github.com/yhamdani/locadrive/internal/models"
	"github.com/yhamdani/locadrive/internal/session"
)

// Identity is the server's view of an account.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Register creates an account and returns its id. Role selects the account
// collection on the server side.
func (c *Client) Register(ctx context.Context, username, password, role string) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	body := map[string]string{"username": username, "password": password, "role": role}
	if err := c.do(ctx, http.MethodPost, "/api/register", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Login authenticates and installs the issued bearer token on the client.
func (c *Client) Login(ctx context.Context, username, password, role string) (Identity, error) {
	var resp struct {
		Token string   `json:"token"`
		User  Identity `json:"user"`
	}
	body := map[string]string{"username": username, "password": password, "role": role}
	if err := c.do(ctx, http.MethodPost, "/api/login", body, &resp); err != nil {
		return Identity{}, err
	}
	c.SetToken(resp.Token)
	return resp.User, nil
}

// Logout drops the bearer token.
func (c *Client) Logout() {
	c.SetToken("")
}

// Me returns the identity behind the installed token.
func (c *Client) Me(ctx context.Context) (Identity, error) {
	var id Identity
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &id); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// CurrentUser implements session.Authenticator: nil with a nil error when
// no token is installed or the server no longer recognizes it.
func (c *Client) CurrentUser(ctx context.Context) (*session.AuthUser, error) {
	if c.bearer() == "" {
		return nil, nil
	}
	id, err := c.Me(ctx)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
			return nil, nil
		}
		return nil, err
	}
	return &session.AuthUser{ID: id.ID, Display: id.Username}, nil
}

// Profile implements session.ProfileDirectory by scanning the profile
// collection for the given account id.
func (c *Client) Profile(ctx context.Context, id string) (docstore.Document, error) {
	var snap docstore.Snapshot
	if err := c.do(ctx, http.MethodGet, "/api/collections/"+url.PathEscape(models.CollectionProfiles), nil, &snap); err != nil {
		return nil, err
	}
	for _, doc := range snap {
		if doc.ID() == id {
			return doc, nil
		}
	}
	return nil, nil
}
