package services

import (
	"testing"
	"time"

	"empowerpwd/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	ts := NewTokenService("secret", time.Hour)
	token, err := ts.Issue(&models.User{ID: 42, Role: models.RoleEmployer})
	require.NoError(t, err)

	claims, err := ts.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, models.RoleEmployer, claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestTokenRejected(t *testing.T) {
	ts := NewTokenService("secret", time.Hour)
	token, err := ts.Issue(&models.User{ID: 1, Role: models.RoleJobSeeker})
	require.NoError(t, err)

	other := NewTokenService("another-secret", time.Hour)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	expired := NewTokenService("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Parse(token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = ts.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
