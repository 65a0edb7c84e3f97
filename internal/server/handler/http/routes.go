// Package http provides HTTP routing and middleware configuration
// for the document backend.
package http

import (
	"net/http"

	"github.com/yhamdani/locadrive/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the
// document backend API.
//
// Routes:
//
//	POST   /api/register                          → authHandler.Register
//	POST   /api/login                             → authHandler.Login
//	GET    /api/me                                → authHandler.Me (bearer token)
//	GET    /api/collections/{collection}          → collections.List
//	GET    /api/collections/{collection}/watch    → collections.Watch (SSE)
//	POST   /api/collections/{collection}          → collections.Create
//	PATCH  /api/collections/{collection}/{id}     → collections.Patch
//	DELETE /api/collections/{collection}/{id}     → collections.Remove
//
// The collection endpoints carry no authentication: access control lives in
// the clients, mirroring the open read/write posture of the backing store.
func NewRouter(
	authHandler *AuthHandler,
	collections *CollectionHandler,
	tokenSecret string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		// Auth endpoints take JSON bodies only
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.TokenAuth(tokenSecret))
			r.Get("/me", authHandler.Me)
		})

		r.Route("/collections/{collection}", func(r chi.Router) {
			r.Get("/", collections.List)
			r.Get("/watch", collections.Watch)
			r.Post("/", collections.Create)
			r.Patch("/{id}", collections.Patch)
			r.Delete("/{id}", collections.Remove)
		})
	})

	return r
}
