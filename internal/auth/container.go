package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"path/filepath"
	"sync"
	"time"

	"farmdash/internal/backend"
	"farmdash/internal/event"
	"farmdash/internal/models"
	"farmdash/internal/storage"
)

// ErrNotAuthenticated is returned by mutating operations invoked with no
// signed-in identity. No backend call is made in that case.
var ErrNotAuthenticated = errors.New("User not authenticated")

// State is the container's top-level lifecycle state.
type State string

const (
	StateInitializing  State = "initializing"
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

// Container is the single source of truth for the signed-in identity and
// its profile. All backend access for auth and profile data goes through
// it; consumers read state through the accessors and never mutate it
// directly.
type Container struct {
	backend  backend.IBackendClient
	storage  storage.IObjectStorage
	notifier event.INotifier

	mu             sync.RWMutex
	state          State
	user           *models.Identity
	profile        *models.Profile
	sessionLoading bool
	profileLoading bool

	sub       *backend.AuthSubscription
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewContainer wires a container. Call Start to resolve the initial
// session and begin consuming session-change events, and Close to release
// the subscription.
func NewContainer(client backend.IBackendClient, store storage.IObjectStorage, notifier event.INotifier) *Container {
	return &Container{
		backend:        client,
		storage:        store,
		notifier:       notifier,
		state:          StateInitializing,
		sessionLoading: true,
		done:           make(chan struct{}),
	}
}

// Start subscribes to session-change notifications and resolves any
// existing session. A failed lookup fails open to the anonymous state; it
// never aborts startup.
//
// The initial lookup and the first change notification can interleave;
// whichever resolves last wins. That matches the source behavior of the
// hosted client and is deliberately left unsequenced.
func (c *Container) Start(ctx context.Context) {
	c.sub = c.backend.OnAuthStateChange()
	c.wg.Add(1)
	go c.watchAuthEvents()

	session, err := c.backend.GetSession(ctx)
	if err != nil {
		log.Printf("Session lookup failed, continuing signed out: %v", err)
		c.applySession(ctx, nil)
		return
	}
	c.applySession(ctx, session)
}

// Close releases the session-change subscription and stops the event
// watcher. Safe to call more than once.
func (c *Container) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.sub != nil {
			c.sub.Unsubscribe()
		}
		c.wg.Wait()
	})
}

func (c *Container) watchAuthEvents() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case ev, ok := <-c.sub.Events():
			if !ok {
				return
			}
			c.applySession(context.Background(), ev.Session)
		}
	}
}

// applySession runs the shared transition logic for both the initial
// lookup and every change notification.
func (c *Container) applySession(ctx context.Context, session *models.Session) {
	if session == nil {
		c.mu.Lock()
		c.state = StateAnonymous
		c.user = nil
		c.profile = nil
		c.sessionLoading = false
		c.profileLoading = false
		c.mu.Unlock()
		return
	}

	user := session.User
	c.mu.Lock()
	c.state = StateAuthenticated
	c.user = &user
	c.sessionLoading = false
	c.profileLoading = true
	c.mu.Unlock()

	profile, err := c.backend.GetProfileByUserID(ctx, user.ID)
	if err != nil {
		log.Printf("Error fetching profile for user %s: %v", user.ID, err)
		profile = nil
	}

	c.mu.Lock()
	c.profile = profile
	c.profileLoading = false
	c.mu.Unlock()
}

// SignIn authenticates with the backend and, on success, loads the
// profile for the returned identity. On failure state is left unchanged.
func (c *Container) SignIn(ctx context.Context, email, password string) error {
	session, err := c.backend.SignInWithPassword(ctx, email, password)
	if err != nil {
		return err
	}
	c.applySession(ctx, session)
	return nil
}

// SignUp creates an account. It does not sign the user in; the backend
// may require confirmation before a session can be issued.
func (c *Container) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	return c.backend.SignUp(ctx, email, password)
}

// SignOut terminates the backend session. Identity and profile are
// cleared only on confirmed success; a failed sign-out leaves state
// unchanged.
func (c *Container) SignOut(ctx context.Context) error {
	if err := c.backend.SignOut(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	c.state = StateAnonymous
	c.user = nil
	c.profile = nil
	c.mu.Unlock()
	return nil
}

// FetchUserProfile reads the profile row for a user. An absent row is
// valid empty state: the call resolves to (nil, nil), distinct from a
// backend failure.
func (c *Container) FetchUserProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return c.backend.GetProfileByUserID(ctx, userID)
}

// UpdateUserProfile merges the patch into the stored profile row,
// inserting the row if this is the first save. The in-memory profile is
// refreshed from the write result, and the outcome is raised as a
// notification either way.
func (c *Container) UpdateUserProfile(ctx context.Context, patch models.ProfilePatch) error {
	c.mu.RLock()
	user := c.user
	c.mu.RUnlock()
	if user == nil {
		return ErrNotAuthenticated
	}

	written, err := c.writeProfile(ctx, user.ID, patch)
	if err != nil {
		c.notifier.Publish(event.Error("Profile update failed", err.Error()))
		return err
	}

	if written == nil {
		// The write went through but returned no row; re-fetch so the
		// container stays authoritative.
		written, err = c.backend.GetProfileByUserID(ctx, user.ID)
		if err != nil {
			log.Printf("Error re-fetching profile after write: %v", err)
		}
	}

	c.mu.Lock()
	if written != nil {
		c.profile = written
	}
	c.mu.Unlock()

	c.notifier.Publish(event.Success("Profile updated", "Your profile has been saved"))
	return nil
}

func (c *Container) writeProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	existing, err := c.backend.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if existing != nil {
		patch.UpdatedAt = &now
		return c.backend.UpdateProfile(ctx, userID, patch)
	}

	row := models.Profile{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	patch.Apply(&row)
	return c.backend.InsertProfile(ctx, &row)
}

// UploadProfileImage stores an avatar image and persists its public URL
// on the profile. The object name is derived from the user id, the upload
// time and the file's extension; a missing extension is accepted as-is.
func (c *Container) UploadProfileImage(ctx context.Context, fileName string, reader io.Reader, size int64) (string, error) {
	c.mu.RLock()
	user := c.user
	c.mu.RUnlock()
	if user == nil {
		return "", ErrNotAuthenticated
	}

	ext := filepath.Ext(fileName)
	objectName := fmt.Sprintf("%s/avatar-%d%s", user.ID, time.Now().UnixNano(), ext)
	contentType := mime.TypeByExtension(ext)

	if err := c.storage.Upload(ctx, objectName, contentType, reader, size); err != nil {
		log.Printf("Error uploading avatar for user %s: %v", user.ID, err)
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	url := c.storage.PublicURL(objectName)
	if err := c.UpdateUserProfile(ctx, models.ProfilePatch{AvatarURL: &url}); err != nil {
		return "", err
	}
	return url, nil
}

// IsProfileComplete reports whether the current profile carries a full
// name, farm name and location.
func (c *Container) IsProfileComplete() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile.IsComplete()
}

// State returns the container's lifecycle state.
func (c *Container) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// User returns the signed-in identity, or nil when anonymous.
func (c *Container) User() *models.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// Profile returns the loaded profile, or nil when none exists yet.
func (c *Container) Profile() *models.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

// SessionLoading reports whether the initial session lookup is still in
// flight.
func (c *Container) SessionLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionLoading
}

// ProfileLoading reports whether a profile fetch is in flight for the
// authenticated identity.
func (c *Container) ProfileLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profileLoading
}
