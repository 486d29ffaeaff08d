package captions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainrotify/types"
)

func TestWriteSRT(t *testing.T) {
	cues := []types.CaptionCue{
		{Text: "First line", StartSeconds: 0, EndSeconds: 1.5},
		{Text: "Second line", StartSeconds: 1.5, EndSeconds: 3.25},
	}

	path := filepath.Join(t.TempDir(), "segment.srt")
	require.NoError(t, WriteSRT(cues, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "1\n00:00:00,000 --> 00:00:01,500\nFirst line\n")
	assert.Contains(t, content, "2\n00:00:01,500 --> 00:00:03,250\nSecond line\n")
}

func TestSRTTimestampRollover(t *testing.T) {
	assert.Equal(t, "00:00:00,000", srtTimestamp(0))
	assert.Equal(t, "00:01:01,250", srtTimestamp(61.25))
	assert.Equal(t, "01:00:00,001", srtTimestamp(3600.001))
}
