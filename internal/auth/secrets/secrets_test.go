package secrets

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "unique/pkg/domain-errors"
)

func TestGenerate(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	raw, err := base64.RawURLEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
	assert.NotContains(t, a, "=")
}

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	t.Run("matching secret verifies", func(t *testing.T) {
		require.NoError(t, Verify("s3cret", hash))
	})

	t.Run("wrong secret is invalid_client", func(t *testing.T) {
		err := Verify("nope", hash)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidClient))
	})

	t.Run("empty secret is invalid_client", func(t *testing.T) {
		err := Verify("", hash)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidClient))
	})

	t.Run("empty secret cannot be hashed", func(t *testing.T) {
		_, err := Hash("")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("oversized secret cannot be hashed", func(t *testing.T) {
		_, err := Hash(strings.Repeat("a", 80))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
