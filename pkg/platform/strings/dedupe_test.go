package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanList(t *testing.T) {
	t.Run("nil becomes empty", func(t *testing.T) {
		got := CleanList(nil)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("trims and drops blanks", func(t *testing.T) {
		assert.Equal(t, []string{"openid", "email"}, CleanList([]string{" openid", "", "  ", "email "}))
	})

	t.Run("keeps first of repeats", func(t *testing.T) {
		got := CleanList([]string{
			"https://cb.example/cb",
			"https://cb.example/cb/",
			" https://cb.example/cb",
		})
		assert.Equal(t, []string{"https://cb.example/cb", "https://cb.example/cb/"}, got)
	})

	t.Run("case is significant", func(t *testing.T) {
		assert.Equal(t, []string{"Profile", "profile"}, CleanList([]string{"Profile", "profile"}))
	})
}
