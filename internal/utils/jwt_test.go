package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	InitJWT("test-secret", 1)

	token, err := GenerateToken("user-123", "小明", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "小明", claims.Username)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseInvalidToken(t *testing.T) {
	InitJWT("test-secret", 1)

	_, err := ParseToken("not-a-token")
	assert.Error(t, err)

	// 換密鑰後舊 token 失效
	token, err := GenerateToken("user-123", "小明", "player")
	require.NoError(t, err)

	InitJWT("another-secret", 1)
	_, err = ParseToken(token)
	assert.Error(t, err)
}
