package auth

import (
	"testing"

	"appraisal-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokenRoundTrip(t *testing.T) {
	secret := "test-secret-at-least-32-characters!!"
	user := &models.User{
		Name:  "Aigul",
		Email: "aigul@example.com",
		Role:  models.RoleAppraiser,
	}
	user.ID = 7

	tokenStr, err := GenerateToken(secret, user)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	token, err := jwt.ParseWithClaims(tokenStr, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(*JWTCustomClaims)
	require.True(t, ok)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "aigul@example.com", claims.Email)
	assert.Equal(t, models.RoleAppraiser, claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	user := &models.User{Email: "aigul@example.com", Role: models.RoleAppraiser}

	tokenStr, err := GenerateToken("test-secret-at-least-32-characters!!", user)
	require.NoError(t, err)

	_, err = jwt.ParseWithClaims(tokenStr, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte("another-secret-also-32-characters!!!"), nil
	})
	assert.Error(t, err)
}
