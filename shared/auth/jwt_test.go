package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	jwtAuth := NewJWTAuthenticator("test-secret", "moodsync-api", time.Hour)

	token, err := jwtAuth.GenerateToken("user-123", "alice@example.com", "user")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtAuth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	jwtAuth := NewJWTAuthenticator("test-secret", "moodsync-api", -time.Minute)

	token, err := jwtAuth.GenerateToken("user-123", "alice@example.com", "user")
	require.NoError(t, err)

	_, err = jwtAuth.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTAuthenticator("test-secret", "moodsync-api", time.Hour)
	verifier := NewJWTAuthenticator("other-secret", "moodsync-api", time.Hour)

	token, err := issuer.GenerateToken("user-123", "alice@example.com", "user")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongIssuer(t *testing.T) {
	issuer := NewJWTAuthenticator("test-secret", "someone-else", time.Hour)
	verifier := NewJWTAuthenticator("test-secret", "moodsync-api", time.Hour)

	token, err := issuer.GenerateToken("user-123", "alice@example.com", "user")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	jwtAuth := NewJWTAuthenticator("test-secret", "moodsync-api", time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := jwtAuth.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}
