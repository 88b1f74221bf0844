package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestIssueAndParse(t *testing.T) {
	raw, err := Issue(secret, 42, "acme", RoleAdmin, time.Hour, time.Now())
	require.NoError(t, err)

	claims, err := Parse(secret, raw)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "acme", claims.Scope)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestParseRejects(t *testing.T) {
	expired, err := Issue(secret, 1, "acme", "", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	forged, err := Issue([]byte("other"), 1, "acme", "", time.Hour, time.Now())
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"uid": 1}).SignedString(secret)
	require.NoError(t, err)

	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"expired": expired,
		"forged":  forged,
		"no exp":  noExp,
		"no user": noUser,
		"garbage": "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(secret, raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestIssueRequiresUser(t *testing.T) {
	_, err := Issue(secret, 0, "acme", "", time.Hour, time.Now())
	assert.Error(t, err)
}
