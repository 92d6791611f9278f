package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RoundTrip(t *testing.T) {
	svc := NewAuthService("secret", time.Hour)

	token, err := svc.IssueToken("user-42", "Ana")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID())
	assert.Equal(t, "Ana", claims.Name)
}

func TestAuthService_Rejects(t *testing.T) {
	svc := NewAuthService("secret", time.Hour)
	other := NewAuthService("other-secret", time.Hour)
	expired := NewAuthService("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	foreign, err := other.IssueToken("user-1", "")
	require.NoError(t, err)
	old, err := expired.IssueToken("user-1", "")
	require.NoError(t, err)
	anonymous, err := svc.IssueToken("", "")
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":       "not-a-jwt",
		"wrong secret":  foreign,
		"expired":       old,
		"empty subject": anonymous,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
