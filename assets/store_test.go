package assets

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutAndRelease(t *testing.T) {
	base := t.TempDir()
	store, err := NewStore(base)
	require.NoError(t, err)
	require.NotEmpty(t, store.RequestID())

	asset, err := store.Put("segment_000.mp3", "audio/mpeg", []byte("audio-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", asset.ContentType)
	assert.Contains(t, asset.ID, store.RequestID())

	data, err := os.ReadFile(asset.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio-bytes"), data)

	require.NoError(t, store.Release())
	_, err = os.Stat(asset.Path)
	assert.True(t, os.IsNotExist(err))

	// Release is safe to call twice.
	require.NoError(t, store.Release())
}

func TestStoresAreScopedPerRequest(t *testing.T) {
	base := t.TempDir()
	first, err := NewStore(base)
	require.NoError(t, err)
	second, err := NewStore(base)
	require.NoError(t, err)

	assert.NotEqual(t, first.Dir(), second.Dir())

	a, err := first.Put("x.bin", "application/octet-stream", []byte("1"))
	require.NoError(t, err)

	require.NoError(t, second.Release())
	_, err = os.Stat(a.Path)
	assert.NoError(t, err, "releasing one request's store must not touch another's assets")
}
