package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir, "http://localhost:8080/media/")
	ctx := context.Background()

	url, err := store.Upload(ctx, "abc.jpg", strings.NewReader("payload"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/abc.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "abc.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, store.Delete(ctx, "abc.jpg"))
	_, err = os.Stat(filepath.Join(dir, "abc.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileStoreDeleteMissingIsNoop(t *testing.T) {
	store := NewFileStore(t.TempDir(), "http://localhost:8080/media")

	assert.NoError(t, store.Delete(context.Background(), "never-uploaded.jpg"))
}

func TestKeyFromURL(t *testing.T) {
	store := NewFileStore(t.TempDir(), "http://localhost:8080/media")

	tests := []struct {
		name    string
		url     string
		wantKey string
		wantOK  bool
	}{
		{
			name:    "own url maps back to key",
			url:     "http://localhost:8080/media/abc.jpg",
			wantKey: "abc.jpg",
			wantOK:  true,
		},
		{
			name:   "foreign url is rejected",
			url:    "https://cdn.example.com/abc.jpg",
			wantOK: false,
		},
		{
			name:   "bare base url has no key",
			url:    "http://localhost:8080/media/",
			wantOK: false,
		},
		{
			name:   "path escape is rejected",
			url:    "http://localhost:8080/media/../secrets",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := store.KeyFromURL(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantKey, key)
			}
		})
	}
}
