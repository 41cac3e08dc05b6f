package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmdash/internal/config"
	"farmdash/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPClient(config.BackendConfig{URL: server.URL, APIKey: "anon-key"})
}

func signedToken(t *testing.T, subject, email string, expiresAt time.Time) string {
	t.Helper()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: email,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestSignInWithPassword_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "farmer@example.com", body["email"])

		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"expires_in":    3600,
			"user":          map[string]string{"id": "user-1", "email": "farmer@example.com"},
		})
	})

	client := newTestClient(t, mux)
	session, err := client.SignInWithPassword(context.Background(), "farmer@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.User.ID)
	assert.Equal(t, "access-1", session.AccessToken)
	assert.False(t, session.ExpiresAt.IsZero())

	held, err := client.GetSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, held)
	assert.Equal(t, "user-1", held.User.ID)
}

func TestSignInWithPassword_SurfacesBackendMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_grant",
			"error_description": "Invalid login credentials",
		})
	})

	client := newTestClient(t, mux)
	_, err := client.SignInWithPassword(context.Background(), "farmer@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid login credentials", err.Error())
}

func TestGetSession_NoSessionIsNilNotError(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	session, err := client.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestGetSession_RefreshesExpiredSession(t *testing.T) {
	var grants []string
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		grants = append(grants, r.URL.Query().Get("grant_type"))
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  signedToken(t, "user-1", "farmer@example.com", time.Now().Add(time.Hour)),
			"refresh_token": "refresh-2",
			"expires_in":    3600,
			"user":          map[string]string{"id": "user-1", "email": "farmer@example.com"},
		})
	})

	client := newTestClient(t, mux)
	expiredToken := signedToken(t, "user-1", "farmer@example.com", time.Now().Add(-time.Hour))
	require.NoError(t, client.RestoreSession(expiredToken, "refresh-1"))

	session, err := client.GetSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, []string{"refresh_token"}, grants)
	assert.Equal(t, "refresh-2", session.RefreshToken)
	assert.True(t, session.ExpiresAt.After(time.Now()))
}

func TestRestoreSession_DecodesIdentityFromToken(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())

	sub := client.OnAuthStateChange()
	defer sub.Unsubscribe()

	token := signedToken(t, "user-7", "grace@example.com", time.Now().Add(time.Hour))
	require.NoError(t, client.RestoreSession(token, "refresh-7"))

	session, err := client.GetSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "user-7", session.User.ID)
	assert.Equal(t, "grace@example.com", session.User.Email)

	select {
	case ev := <-sub.Events():
		assert.Equal(t, EventInitialSession, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("expected an initial-session event")
	}
}

func TestRestoreSession_RejectsGarbageToken(t *testing.T) {
	client := newTestClient(t, http.NewServeMux())
	assert.Error(t, client.RestoreSession("not-a-jwt", ""))
}

func TestSignOut_ClearsSessionAndPublishes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-1", "refresh_token": "r", "expires_in": 3600,
			"user": map[string]string{"id": "user-1", "email": "farmer@example.com"},
		})
	})
	mux.HandleFunc("/auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	client := newTestClient(t, mux)
	_, err := client.SignInWithPassword(context.Background(), "farmer@example.com", "secret")
	require.NoError(t, err)

	sub := client.OnAuthStateChange()
	defer sub.Unsubscribe()

	require.NoError(t, client.SignOut(context.Background()))

	session, err := client.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)

	select {
	case ev := <-sub.Events():
		assert.Equal(t, EventSignedOut, ev.Type)
		assert.Nil(t, ev.Session)
	case <-time.After(time.Second):
		t.Fatal("expected a signed-out event")
	}
}

func TestSignOut_FailureKeepsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-1", "expires_in": 3600,
			"user": map[string]string{"id": "user-1", "email": "farmer@example.com"},
		})
	})
	mux.HandleFunc("/auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"message": "service unavailable"})
	})

	client := newTestClient(t, mux)
	_, err := client.SignInWithPassword(context.Background(), "farmer@example.com", "secret")
	require.NoError(t, err)

	err = client.SignOut(context.Background())
	require.Error(t, err)
	assert.Equal(t, "service unavailable", err.Error())

	session, err := client.GetSession(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, session, "a failed sign-out must leave the session in place")
}

func TestSignUp_ReturnsIdentityWithoutSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/signup", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "new-user", "email": "new@example.com"})
	})

	client := newTestClient(t, mux)
	identity, err := client.SignUp(context.Background(), "new@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "new-user", identity.ID)

	session, err := client.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session, "sign-up must not imply a session")
}

func TestGetProfileByUserID_AbsentRowIsNilNil(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/profiles", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.user-1", r.URL.Query().Get("user_id"))
		w.Write([]byte("[]"))
	})

	client := newTestClient(t, mux)
	profile, err := client.GetProfileByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestGetProfileByUserID_ReturnsRow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/profiles", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.Profile{
			{UserID: "user-1", FullName: "Ada", FarmName: "Green Acres", Location: "Springfield"},
		})
	})

	client := newTestClient(t, mux)
	profile, err := client.GetProfileByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "Ada", profile.FullName)
}

func TestUpdateProfile_SendsPatchAndReturnsRow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/profiles", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var sent map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		assert.Equal(t, "555-0101", sent["phone"])
		assert.NotContains(t, sent, "full_name", "nil patch fields must stay out of the body")

		json.NewEncoder(w).Encode([]models.Profile{{UserID: "user-1", Phone: "555-0101"}})
	})

	client := newTestClient(t, mux)
	phone := "555-0101"
	profile, err := client.UpdateProfile(context.Background(), "user-1", models.ProfilePatch{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "555-0101", profile.Phone)
}

func TestInsertProfile_ReturnsWrittenRow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/profiles", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var sent models.Profile
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		json.NewEncoder(w).Encode([]models.Profile{sent})
	})

	client := newTestClient(t, mux)
	written, err := client.InsertProfile(context.Background(), &models.Profile{UserID: "user-1", FullName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", written.FullName)
}
