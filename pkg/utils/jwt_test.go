package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "u1", time.Hour, time.Now())
	require.NoError(t, err)

	claims, err := ValidateToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "u1", SubjectFromClaims(claims))
}

func TestValidateTokenRejects(t *testing.T) {
	token, err := GenerateToken("secret", "u1", time.Hour, time.Now())
	require.NoError(t, err)
	_, err = ValidateToken("other", token)
	assert.Error(t, err)

	expired, err := GenerateToken("secret", "u1", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = ValidateToken("secret", expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = ValidateToken("secret", "not-a-token")
	assert.Error(t, err)
}

func TestSubjectFromClaims(t *testing.T) {
	assert.Equal(t, "u2", SubjectFromClaims(jwt.MapClaims{"sub": "u2"}))
	assert.Equal(t, "u1", SubjectFromClaims(jwt.MapClaims{"sub": "u2", "user_id": "u1"}))
	assert.Empty(t, SubjectFromClaims(jwt.MapClaims{}))
}
