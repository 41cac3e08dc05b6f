package backend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmdash/internal/models"
)

func TestSessionFromTokens(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, "user-3", "ada@example.com", expiry)

	session, err := sessionFromTokens(token, "refresh-3")
	require.NoError(t, err)
	assert.Equal(t, "user-3", session.User.ID)
	assert.Equal(t, "ada@example.com", session.User.Email)
	assert.Equal(t, "refresh-3", session.RefreshToken)
	assert.WithinDuration(t, expiry, session.ExpiresAt, time.Second)
}

func TestSessionFromTokens_MissingSubject(t *testing.T) {
	token := signedToken(t, "", "ada@example.com", time.Now().Add(time.Hour))
	_, err := sessionFromTokens(token, "")
	assert.Error(t, err)
}

func TestExpired(t *testing.T) {
	now := time.Now()

	assert.False(t, expired(nil, now), "nil session never expires")
	assert.False(t, expired(&models.Session{}, now), "no expiry claim means no client-side expiry")
	assert.False(t, expired(&models.Session{ExpiresAt: now.Add(time.Minute)}, now))
	assert.True(t, expired(&models.Session{ExpiresAt: now.Add(-time.Minute)}, now))
}
