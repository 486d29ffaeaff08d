package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  addr: \":9000\"\n"))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 130.0, cfg.Script.WordsPerMinute)
	assert.Equal(t, 0.15, cfg.Script.DurationTolerance)
	assert.Equal(t, "line", cfg.Captions.Granularity)
	assert.Equal(t, 42, cfg.Captions.MaxCharsPerLine)
	assert.Equal(t, 3, cfg.Limits.MaxAttempts)
	assert.Equal(t, 4, cfg.Limits.SegmentConcurrency)
	assert.Equal(t, 24, cfg.Video.FPS)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
script:
  duration_tolerance: 0.25
captions:
  granularity: "word"
limits:
  segment_concurrency: 2
`))
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Script.DurationTolerance)
	assert.Equal(t, "word", cfg.Captions.Granularity)
	assert.Equal(t, 2, cfg.Limits.SegmentConcurrency)
}

func TestLoadRejectsBadGranularity(t *testing.T) {
	_, err := Load(writeConfig(t, "captions:\n  granularity: \"sentence\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "granularity")
}

func TestLoadRejectsBadTolerance(t *testing.T) {
	_, err := Load(writeConfig(t, "script:\n  duration_tolerance: 1.5\n"))
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, os.IsNotExist(err))
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "tts-kokoro", cfg.TTS.Model)
	assert.Equal(t, "am_adam", cfg.TTS.Voice)
	assert.Equal(t, "fluently-xl", cfg.Visuals.Model)
}
