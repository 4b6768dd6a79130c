package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("+5511912345678", RoleAdmin, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "+5511912345678", claims.Phone)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestJWTRejectsWrongSecretAndExpiry(t *testing.T) {
	token, err := GenerateJWT("5511912345678", "", "secret", time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(token, "other")
	assert.Error(t, err)

	expired, err := GenerateJWT("5511912345678", "", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret")
	assert.Error(t, err)
}
