package token

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	s := NewMemoryStore()

	_, ok := s.Get()
	assert.False(t, ok, "fresh store should be empty")

	require.NoError(t, s.Set("tok-123"))
	got, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, "tok-123", got)

	require.NoError(t, s.Clear())
	_, ok = s.Get()
	assert.False(t, ok, "cleared store should be empty")
}

func TestFileStoreLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	s := NewFileStore(path)

	_, ok := s.Get()
	assert.False(t, ok)

	require.NoError(t, s.Set("persisted-token"))

	// A second store over the same path sees the token.
	s2 := NewFileStore(path)
	got, ok := s2.Get()
	assert.True(t, ok)
	assert.Equal(t, "persisted-token", got)

	require.NoError(t, s.Clear())
	_, ok = s2.Get()
	assert.False(t, ok)

	// Clearing twice is fine.
	require.NoError(t, s.Clear())
}

func TestDecorate(t *testing.T) {
	s := NewMemoryStore()

	req, err := http.NewRequest(http.MethodGet, "http://example.com/me", nil)
	require.NoError(t, err)

	Decorate(req, s)
	assert.Empty(t, req.Header.Get("Authorization"), "no token, no header")

	require.NoError(t, s.Set("abc"))
	Decorate(req, s)
	assert.Equal(t, "Bearer abc", req.Header.Get("Authorization"))
}
