package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	tokens := NewTokens("secret", "campus-flow", time.Hour)

	token, err := tokens.Issue(7, "organizer")
	require.NoError(t, err)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, 7, claims.UserID)
	require.Equal(t, "organizer", claims.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokens("secret-a", "campus-flow", time.Hour).Issue(7, "student")
	require.NoError(t, err)

	_, err = NewTokens("secret-b", "campus-flow", time.Hour).Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	token, err := NewTokens("secret", "campus-flow", -time.Minute).Issue(7, "student")
	require.NoError(t, err)

	_, err = NewTokens("secret", "campus-flow", time.Hour).Verify(token)
	require.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	require.NotEqual(t, "hunter22", hash)

	require.True(t, CheckPassword(hash, "hunter22"))
	require.False(t, CheckPassword(hash, "hunter23"))
}
