package jwtutil

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pastelaria-service/pkg/config"
)

func TestGenerateAndValidate(t *testing.T) {
	j := NewJWTUtil(&config.JWTConfig{SigningKey: "secret", ExpirationHours: 1})

	token, err := j.GenerateToken("admin@pastelaria.test", 7, "admin")
	require.NoError(t, err)

	claims, err := j.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@pastelaria.test", claims.Email)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidate_Rejects(t *testing.T) {
	j := NewJWTUtil(&config.JWTConfig{SigningKey: "secret", ExpirationHours: 1})

	other, err := NewJWTUtil(&config.JWTConfig{SigningKey: "other", ExpirationHours: 1}).GenerateToken("x@y", 1, "")
	require.NoError(t, err)
	_, err = j.ValidateToken(other)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	expired, err := NewJWTUtil(&config.JWTConfig{SigningKey: "secret", ExpirationHours: -1}).GenerateToken("x@y", 1, "")
	require.NoError(t, err)
	_, err = j.ValidateToken(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = j.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestMissingConfiguration(t *testing.T) {
	_, err := NewJWTUtil(nil).GenerateToken("x@y", 1, "")
	assert.Error(t, err)
	_, err = NewJWTUtil(&config.JWTConfig{}).ValidateToken("a.b.c")
	assert.Error(t, err)
}
