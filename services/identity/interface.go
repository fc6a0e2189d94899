package identity

import (
	"context"
	"time"

	"sparkathon/models"
)

// Gateway is the identity contract consumed by the presentation shell.
type Gateway interface {
	SignIn(ctx context.Context, email, password string) (*models.AuthResponse, error)
	SignUp(ctx context.Context, email, password string) (*models.AuthResponse, error)
	SignOut(ctx context.Context, sessionID string) error
	CurrentUser(ctx context.Context, sessionID string) (*models.User, error)
	// ObserveSession yields the current user (nil when signed out) and then
	// every change, including expiry, until ctx ends.
	ObserveSession(ctx context.Context, sessionID string) (<-chan *models.User, error)
	// Authenticate resolves an app session token to its live session.
	Authenticate(ctx context.Context, token string) (*models.AuthSession, error)
}

// Credentials are returned by a Provider after a successful password flow.
type Credentials struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string
}

// Provider is the external identity service.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Credentials, error)
	SignUpWithPassword(ctx context.Context, email, password string) (*Credentials, error)
	RevokeSessions(ctx context.Context, uid string) error
}

// SessionStore keeps signed-in sessions and fans out their changes.
type SessionStore interface {
	Save(ctx context.Context, session models.AuthSession, ttl time.Duration) error
	Get(ctx context.Context, id string) (*models.AuthSession, error)
	Delete(ctx context.Context, id string) error
	// Publish announces the session's current user; nil means signed out.
	Publish(ctx context.Context, id string, user *models.User) error
	// Subscribe delivers published changes for id until the returned stop
	// function is called or ctx ends.
	Subscribe(ctx context.Context, id string) (<-chan *models.User, func(), error)
}
