package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FileAppendsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notehub.log")

	l, closer, err := New(Options{Path: path, Level: "debug"})
	require.NoError(t, err)
	l.Debug().Str("key", "notes[page=1]").Msg("fetching")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"message":"fetching"`)
	assert.Contains(t, string(b), `"level":"debug"`)
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := New(Options{Console: &buf, Level: "warn"})
	require.NoError(t, err)

	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_DiscardsByDefault(t *testing.T) {
	l, closer, err := New(Options{})
	require.NoError(t, err)
	l.Error().Msg("nowhere")
	assert.NoError(t, closer.Close())
}

func TestNew_BadLevel(t *testing.T) {
	_, _, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}
