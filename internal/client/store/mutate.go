package store

import (
	"context"
	"net/http"
	"net/url"

	"github.com/yhamdani/locadrive/internal/docstore"
)

// Create adds a document to a collection and returns its generated id.
func (c *Client) Create(ctx context.Context, collection string, data docstore.Document) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	path := "/api/collections/" + url.PathEscape(collection)
	if err := c.do(ctx, http.MethodPost, path, data, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Patch merges fields into an existing document.
func (c *Client) Patch(ctx context.Context, collection, id string, fields docstore.Document) error {
	path := "/api/collections/" + url.PathEscape(collection) + "/" + url.PathEscape(id)
	err := c.do(ctx, http.MethodPatch, path, fields, nil)
	if apiErr, ok := err.(*APIError); ok && apiErr.Status == http.StatusNotFound {
		return docstore.ErrNotFound
	}
	return err
}

// Remove deletes a document by id.
func (c *Client) Remove(ctx context.Context, collection, id string) error {
	path := "/api/collections/" + url.PathEscape(collection) + "/" + url.PathEscape(id)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// List fetches the current result set of a collection once, without
// subscribing.
func (c *Client) List(ctx context.Context, collection string, q docstore.Query) (docstore.Snapshot, error) {
	var snap docstore.Snapshot
	path := "/api/collections/" + url.PathEscape(collection) + queryString(q)
	if err := c.do(ctx, http.MethodGet, path, nil, &snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func queryString(q docstore.Query) string {
	if q.OrderBy == "" {
		return ""
	}
	v := url.Values{"orderBy": {q.OrderBy}}
	if q.Descending {
		v.Set("dir", "desc")
	}
	return "?" + v.Encode()
}
