package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"farmdash/internal/config"
	"farmdash/internal/models"
)

// HTTPClient talks to the hosted backend service over its auth and row
// store endpoints. It holds the current session in memory and publishes
// session-change events to subscribers.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	hub     *AuthStateHub

	mu      sync.Mutex
	session *models.Session
}

var _ IBackendClient = (*HTTPClient)(nil)

func NewHTTPClient(cfg config.BackendConfig) *HTTPClient {
	return &HTTPClient{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{},
		hub:     NewAuthStateHub(),
	}
}

// apiError is the error body the hosted service returns. Field names vary
// between the auth and row-store endpoints, so all known spellings are
// collected and the first non-empty one wins.
type apiError struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorCode        string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e *apiError) text() string {
	for _, m := range []string{e.Message, e.Msg, e.ErrorDescription, e.ErrorCode} {
		if m != "" {
			return m
		}
	}
	return ""
}

type tokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int64           `json:"expires_in"`
	User         models.Identity `json:"user"`
}

// OnAuthStateChange registers a new subscriber on the session-change
// stream.
func (c *HTTPClient) OnAuthStateChange() *AuthSubscription {
	return c.hub.Subscribe()
}

// RestoreSession seeds the client with a previously issued token pair,
// e.g. one persisted by an earlier run. The rebuilt session is announced
// as an initial-session event.
func (c *HTTPClient) RestoreSession(accessToken, refreshToken string) error {
	session, err := sessionFromTokens(accessToken, refreshToken)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	c.hub.Publish(AuthEvent{Type: EventInitialSession, Session: session})
	return nil
}

// GetSession returns the held session, refreshing it first when the
// access token has expired and a refresh token is available.
func (c *HTTPClient) GetSession(ctx context.Context) (*models.Session, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil {
		return nil, nil
	}
	if expired(session, time.Now()) && session.RefreshToken != "" {
		refreshed, err := c.refreshSession(ctx, session.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh session: %w", err)
		}
		return refreshed, nil
	}
	return session, nil
}

func (c *HTTPClient) refreshSession(ctx context.Context, refreshToken string) (*models.Session, error) {
	var tokens tokenResponse
	body := map[string]string{"refresh_token": refreshToken}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token", url.Values{"grant_type": {"refresh_token"}}, body, &tokens, ""); err != nil {
		return nil, err
	}
	session := c.storeSession(&tokens)
	c.hub.Publish(AuthEvent{Type: EventTokenRefreshed, Session: session})
	return session, nil
}

func (c *HTTPClient) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	var tokens tokenResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token", url.Values{"grant_type": {"password"}}, body, &tokens, ""); err != nil {
		return nil, err
	}
	session := c.storeSession(&tokens)
	c.hub.Publish(AuthEvent{Type: EventSignedIn, Session: session})
	return session, nil
}

func (c *HTTPClient) storeSession(tokens *tokenResponse) *models.Session {
	session := &models.Session{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         tokens.User,
	}
	if tokens.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	}
	if session.User.ID == "" {
		// Some token grants omit the user object; recover it from the
		// access token claims.
		if decoded, err := sessionFromTokens(tokens.AccessToken, tokens.RefreshToken); err == nil {
			session.User = decoded.User
			if session.ExpiresAt.IsZero() {
				session.ExpiresAt = decoded.ExpiresAt
			}
		}
	}
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	return session
}

func (c *HTTPClient) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	var created struct {
		ID    string           `json:"id"`
		Email string           `json:"email"`
		User  *models.Identity `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", nil, body, &created, ""); err != nil {
		return nil, err
	}
	if created.User != nil {
		return created.User, nil
	}
	return &models.Identity{ID: created.ID, Email: created.Email}, nil
}

// SignOut terminates the backend session. The held session is cleared
// only after the backend confirms.
func (c *HTTPClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == nil {
		return nil
	}

	if err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, nil, nil, ""); err != nil {
		return err
	}

	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	c.hub.Publish(AuthEvent{Type: EventSignedOut, Session: nil})
	return nil
}

func (c *HTTPClient) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var rows []models.Profile
	query := url.Values{"user_id": {"eq." + userID}}
	if err := c.do(ctx, http.MethodGet, "/rest/v1/profiles", query, nil, &rows, ""); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *HTTPClient) InsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	var rows []models.Profile
	if err := c.do(ctx, http.MethodPost, "/rest/v1/profiles", nil, profile, &rows, "return=representation"); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert returned no profile row")
	}
	return &rows[0], nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	var rows []models.Profile
	query := url.Values{"user_id": {"eq." + userID}}
	if err := c.do(ctx, http.MethodPatch, "/rest/v1/profiles", query, patch, &rows, "return=representation"); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no profile row matched user %s", userID)
	}
	return &rows[0], nil
}

// do performs one JSON round trip against the backend. A non-2xx status
// is surfaced as an error carrying the backend's own message when one is
// present in the body.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, in, out any, prefer string) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearerToken())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("Error calling backend %s %s: %v", method, path, err)
		return fmt.Errorf("failed to reach backend service")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Error reading backend response: %v", err)
		return fmt.Errorf("failed to read backend response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var backendErr apiError
		if err := json.Unmarshal(body, &backendErr); err == nil {
			if msg := backendErr.text(); msg != "" {
				return fmt.Errorf("%s", msg)
			}
		}
		log.Printf("Backend returned status %d for %s %s: %s", resp.StatusCode, method, path, string(body))
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			log.Printf("Error unmarshaling backend response: %v", err)
			return fmt.Errorf("failed to parse backend response")
		}
	}
	return nil
}

// bearerToken is the session access token when signed in, the service
// api key otherwise.
func (c *HTTPClient) bearerToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return c.session.AccessToken
	}
	return c.apiKey
}
