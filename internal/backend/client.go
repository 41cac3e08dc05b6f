package backend

import (
	"context"

	"farmdash/internal/models"
)

// AuthEventType labels a session-change notification.
type AuthEventType string

const (
	EventInitialSession AuthEventType = "INITIAL_SESSION"
	EventSignedIn       AuthEventType = "SIGNED_IN"
	EventSignedOut      AuthEventType = "SIGNED_OUT"
	EventTokenRefreshed AuthEventType = "TOKEN_REFRESHED"
)

// AuthEvent is one session-change notification. Session is nil for
// signed-out events.
type AuthEvent struct {
	Type    AuthEventType
	Session *models.Session
}

// IBackendClient is the contract the state containers consume. The hosted
// service behind it owns authentication, the profile row store and blob
// storage; this client only transports requests and responses.
type IBackendClient interface {
	// GetSession returns the current session, or nil when no session is
	// held. An expired session is refreshed before being returned.
	GetSession(ctx context.Context) (*models.Session, error)

	// OnAuthStateChange registers for session-change notifications. The
	// returned subscription must be unsubscribed when the consumer is
	// torn down; Unsubscribe is idempotent.
	OnAuthStateChange() *AuthSubscription

	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)

	// SignUp creates an account. The backend may require confirmation, so
	// a successful sign-up does not imply a session.
	SignUp(ctx context.Context, email, password string) (*models.Identity, error)

	SignOut(ctx context.Context) error

	// GetProfileByUserID returns (nil, nil) when no row exists for the
	// user. Absence is valid empty state, not an error.
	GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error)

	InsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)

	// UpdateProfile merges the patch into the stored row and returns the
	// written row.
	UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error)
}
