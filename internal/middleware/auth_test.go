package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yhamdani/locadrive/internal/auth"
)

func TestTokenAuth_ValidToken(t *testing.T) {
	token, err := auth.NewAccessToken("secret", "u1", time.Minute, auth.Claims{Username: "admin", Role: "admin"})
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}

	var gotUser, gotRole string
	handler := TokenAuth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUserIDFromContext(r.Context())
		if c := GetClaimsFromContext(r.Context()); c != nil {
			gotRole = c.Role
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if gotUser != "u1" || gotRole != "admin" {
		t.Errorf("context carried user=%q role=%q", gotUser, gotRole)
	}
}

func TestTokenAuth_MissingHeader(t *testing.T) {
	handler := TokenAuth("secret")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", rec.Code)
	}
}

func TestTokenAuth_BadToken(t *testing.T) {
	handler := TokenAuth("secret")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", rec.Code)
	}
}

func TestGetUserIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetUserIDFromContext(req.Context()); got != "" {
		t.Errorf("expected empty user id, got %q", got)
	}
}
