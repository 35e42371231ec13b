package keys

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecret(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(secret, SecretPrefix))
	assert.Len(t, secret, len(SecretPrefix)+32)

	for _, c := range secret[len(SecretPrefix):] {
		assert.Contains(t, secretAlphabet, string(c))
	}
}

func TestGenerateSecretIsNotRepeated(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		secret, err := GenerateSecret()
		require.NoError(t, err)
		assert.False(t, seen[secret])
		seen[secret] = true
	}
}
