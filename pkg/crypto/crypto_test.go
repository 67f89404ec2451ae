package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	require.True(t, VerifyPassword(hash, "correct horse battery staple"))
	require.False(t, VerifyPassword(hash, "wrong password"))
	require.False(t, VerifyPassword("", "anything"))
	require.False(t, VerifyPassword(hash, ""))
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := HashPassword("")
	require.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	first, err := GenerateToken(32)
	require.NoError(t, err)
	require.Len(t, first, 64)

	second, err := GenerateToken(32)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// Non-positive lengths fall back to 32 bytes.
	fallback, err := GenerateToken(0)
	require.NoError(t, err)
	require.Len(t, fallback, 64)
}

func TestGenerateNumericCode(t *testing.T) {
	code, err := GenerateNumericCode(6)
	require.NoError(t, err)
	require.Len(t, code, 6)
	require.Empty(t, strings.Trim(code, "0123456789"))

	_, err = GenerateNumericCode(0)
	require.Error(t, err)
	_, err = GenerateNumericCode(19)
	require.Error(t, err)
}
