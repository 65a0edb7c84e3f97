package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/yhamdani/locadrive/internal/docstore"
)

// AuthUser is the backend auth service's view of the signed-in user.
type AuthUser struct {
	// ID is the server-assigned account identifier.
	ID string
	// Display is the account's display name or email, when the service
	// exposes one.
	Display string
}

// Authenticator looks up the currently authenticated backend user.
// A nil user with a nil error means nobody is signed in.
type Authenticator interface {
	CurrentUser(ctx context.Context) (*AuthUser, error)
}

// ProfileDirectory performs the best-effort role lookup against the
// profile collection, keyed by the resolved account id.
type ProfileDirectory interface {
	Profile(ctx context.Context, id string) (docstore.Document, error)
}

// Actor describes the active identity after resolution.
type Actor struct {
	ID      string
	Display string
	// Role is the profile role when the lookup succeeded, otherwise the
	// role claim carried by a local session, otherwise "".
	Role string
	// Local marks a client-only identity: an unverified session blob
	// rather than a server-authenticated user.
	Local bool
}

// Verified reports whether the actor's identity was confirmed by the
// backend auth service.
func (a *Actor) Verified() bool {
	return a != nil && !a.Local
}

// CanAdminister reports whether the actor may perform privileged console
// operations. Local sessions never qualify: their role claim is stored
// client-side and verified by nothing.
func (a *Actor) CanAdminister() bool {
	if !a.Verified() {
		return false
	}
	return a.Role == "admin" || a.Role == "staff"
}

// Resolver determines the active actor, checking the backend auth service
// first and the locally persisted session second.
type Resolver struct {
	auth     Authenticator
	local    *FileStore
	profiles ProfileDirectory
	log      *zap.Logger
}

// NewResolver constructs a Resolver. profiles may be nil to skip role
// lookups; log may be nil.
func NewResolver(auth Authenticator, local *FileStore, profiles ProfileDirectory, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{auth: auth, local: local, profiles: profiles, log: log}
}

// Resolve returns the active actor, or nil when neither the auth service
// nor the local store has an identity. Role resolution failures are
// non-fatal: the actor degrades to an ordinary authenticated user carrying
// whatever identifying string was available.
func (r *Resolver) Resolve(ctx context.Context) (*Actor, error) {
	if r.auth != nil {
		user, err := r.auth.CurrentUser(ctx)
		if err != nil {
			r.log.Warn("auth lookup failed, falling back to local session", zap.Error(err))
		} else if user != nil {
			actor := &Actor{ID: user.ID, Display: user.Display}
			r.attachProfile(ctx, actor)
			return actor, nil
		}
	}

	if r.local != nil {
		if s, ok := r.local.LoadSession(); ok {
			display := s.Username
			if display == "" {
				display = s.ID
			}
			return &Actor{ID: s.ID, Display: display, Role: s.Role, Local: true}, nil
		}
	}

	return nil, nil
}

// attachProfile fills the actor's role and display name from the profile
// collection. Lookup failures leave the actor as-is.
func (r *Resolver) attachProfile(ctx context.Context, actor *Actor) {
	if r.profiles == nil {
		return
	}
	profile, err := r.profiles.Profile(ctx, actor.ID)
	if err != nil {
		r.log.Warn("profile lookup failed", zap.String("id", actor.ID), zap.Error(err))
		return
	}
	if profile == nil {
		return
	}
	if role := docstore.String(profile["role"]); role != "" {
		actor.Role = role
	}
	if actor.Display == "" {
		if name := docstore.String(profile["name"]); name != "" {
			actor.Display = name
		} else if email := docstore.String(profile["email"]); email != "" {
			actor.Display = email
		}
	}
}
