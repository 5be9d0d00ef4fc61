package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWTToken(42, "teacher", "s3cret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWTToken(BearerToken("Bearer "+token), "s3cret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "teacher", claims.Role)
}

func TestJWTRejectsWrongSecretAndExpiry(t *testing.T) {
	token, err := GenerateJWTToken(1, "student", "s3cret", time.Hour)
	require.NoError(t, err)
	_, err = ParseJWTToken(token, "other")
	assert.Error(t, err)

	expired, err := GenerateJWTToken(1, "student", "s3cret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWTToken(expired, "s3cret")
	assert.Error(t, err)

	_, err = ParseJWTToken("", "s3cret")
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Equal(t, "abc", BearerToken("abc"))
	assert.Equal(t, "", BearerToken(""))
}
