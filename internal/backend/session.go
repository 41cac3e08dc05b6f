package backend

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"farmdash/internal/models"
)

// accessClaims are the claims the hosted service puts in its access
// tokens. The client cannot verify the signature (it never holds the
// signing secret), so tokens are decoded unverified and trusted only for
// identity display and expiry bookkeeping.
type accessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// sessionFromTokens rebuilds a session from a stored token pair by
// decoding the access token's claims.
func sessionFromTokens(accessToken, refreshToken string) (*models.Session, error) {
	parser := jwt.NewParser()
	claims := &accessClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("error decoding access token: %w", err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("access token carries no subject")
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return &models.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User: models.Identity{
			ID:    claims.Subject,
			Email: claims.Email,
		},
	}, nil
}

// expired reports whether the session's access token has passed its
// expiry. Sessions without an expiry claim never expire client side.
func expired(s *models.Session, now time.Time) bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return false
	}
	return now.After(s.ExpiresAt)
}
