package fsbridge

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorage(t *testing.T) {
	tests := []struct {
		name      string
		cacheSize int
	}{
		{name: "explicit cache size", cacheSize: 16},
		{name: "zero cache size uses default", cacheSize: 0},
		{name: "negative cache size uses default", cacheSize: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memFS := memfs.New()
			storage := NewStorage(memFS, tt.cacheSize)
			require.NotNil(t, storage)
			assert.Equal(t, memFS, storage.Filesystem())
		})
	}
}

func TestNewStorage_RoundTrip(t *testing.T) {
	storage := NewStorage(memfs.New(), 1)
	require.NoError(t, storage.Init())

	obj := storage.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	w, err := obj.Writer()
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	hash, err := storage.SetEncodedObject(obj)
	require.NoError(t, err)

	got, err := storage.EncodedObject(plumbing.BlobObject, hash)
	require.NoError(t, err)
	assert.Equal(t, hash, got.Hash())
	assert.NoError(t, storage.Close())
}
