package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New().FromWriter(&buf).Level("debug").Make()
	require.NoError(t, err)

	log.Logger.Debug().Str("layer", "0").Msg("hello")
	assert.Contains(t, buf.String(), `"layer":"0"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
	assert.NoError(t, log.Close())
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := New().FromWriter(&buf).Level("WARN").Make()
	require.NoError(t, err)

	log.Logger.Info().Msg("dropped")
	assert.Empty(t, buf.String())
	log.Logger.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestUnknownLevelKeepsInfo(t *testing.T) {
	var buf bytes.Buffer
	log, err := New().FromWriter(&buf).Level("chatty").Make()
	require.NoError(t, err)

	log.Logger.Debug().Msg("dropped")
	log.Logger.Info().Msg("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "otcad.log")
	log, err := New().FromPath(path).Console(true).Make()
	require.NoError(t, err)

	log.Logger.Info().Msg("to file")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestFromPathError(t *testing.T) {
	_, err := New().FromPath(filepath.Join(t.TempDir(), "missing", "x.log")).Make()
	assert.Error(t, err)
}
