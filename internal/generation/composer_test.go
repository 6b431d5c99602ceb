package generation_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smart-card/smartcard-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposerCompose(t *testing.T) {
	t.Parallel()

	c := generation.NewComposer()

	got, err := c.Compose("Explain goroutines")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, "Explain goroutines"))
	assert.Greater(t, len(got), len("Explain goroutines"), "directive should precede the user text")
	assert.NotEmpty(t, c.SystemPrompt())

	_, err = c.Compose("  \n")
	assert.ErrorIs(t, err, generation.ErrEmptyPrompt)
}

func TestLoadComposer(t *testing.T) {
	t.Parallel()

	t.Run("empty path uses built-in directive", func(t *testing.T) {
		c, err := generation.LoadComposer("")
		require.NoError(t, err)
		got, err := c.Compose("x")
		require.NoError(t, err)
		builtin, _ := generation.NewComposer().Compose("x")
		assert.Equal(t, builtin, got)
	})

	t.Run("file directive", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "directive.txt")
		require.NoError(t, os.WriteFile(path, []byte("Make a card: "), 0600))

		c, err := generation.LoadComposer(path)
		require.NoError(t, err)
		got, err := c.Compose("cats")
		require.NoError(t, err)
		assert.Equal(t, "Make a card: cats", got)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := generation.LoadComposer(filepath.Join(t.TempDir(), "nope.txt"))
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})

	t.Run("blank file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blank.txt")
		require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0600))
		_, err := generation.LoadComposer(path)
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})
}
