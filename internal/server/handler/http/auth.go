package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yhamdani/locadrive/internal/middleware"
	"github.com/yhamdani/locadrive/internal/models"
	"github.com/yhamdani/locadrive/internal/service"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Register creates an account for the given role's collection.
	Register(ctx context.Context, username, password, role string) (string, error)
	// Login verifies credentials and issues an access token.
	Login(ctx context.Context, collection, username, password string) (models.Account, string, error)
	// AccountByID returns the current account behind a token subject.
	AccountByID(ctx context.Context, collection, id string) (models.Account, error)
}

// AuthHandler handles HTTP requests for registration, login and identity.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

// RegisterRequest represents the JSON payload for account registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// Role selects the account collection: admin/staff accounts land in
	// employees, anything else in utilisateurs.
	Role string `json:"role"`
}

// Register handles account registration requests. It expects a JSON body
// with non-empty username and password.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Role == "" {
		req.Role = "utilisateur"
	}

	id, err := h.AuthService.Register(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			http.Error(w, "user already exists", http.StatusConflict)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"id": id})
}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// Role selects which account collection to authenticate against,
	// mirroring the employee/customer toggle on the login screen.
	Role string `json:"role"`
}

// LoginResponse carries the issued token and the account identity.
type LoginResponse struct {
	Token string       `json:"token"`
	User  identityBody `json:"user"`
}

type identityBody struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Login handles password login. An unknown username and a wrong password
// produce different messages, matching the app's observed behavior.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	collection := service.CollectionForRole(req.Role)
	account, token, err := h.AuthService.Login(r.Context(), collection, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownUser):
			http.Error(w, "nom d'utilisateur incorrect", http.StatusUnauthorized)
		case errors.Is(err, service.ErrBadPassword):
			http.Error(w, "mot de passe incorrect", http.StatusUnauthorized)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(LoginResponse{
		Token: token,
		User:  identityBody{ID: account.ID, Username: account.Username, Role: account.Role},
	})
}

// Me returns the identity behind the verified bearer token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	account, err := h.AuthService.AccountByID(r.Context(), claims.Collection, claims.Subject)
	if err != nil {
		if errors.Is(err, service.ErrUnknownUser) {
			http.Error(w, "user not found", http.StatusForbidden)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(identityBody{ID: account.ID, Username: account.Username, Role: account.Role})
}
