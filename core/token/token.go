// Package token holds the bearer token used to decorate outgoing requests.
//
// The browser keeps this in local storage; here it is an injectable
// provider so handlers and tests can substitute an in-memory fake, and
// the CLI client can persist the token between runs.
package token

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Provider stores one opaque bearer token. Implementations must be safe
// for concurrent use; unlike the browser original, the gateway serves
// requests from many goroutines.
type Provider interface {
	// Get returns the stored token, or "" and false when none is set.
	Get() (string, bool)
	// Set stores a token until Clear or until the backing store is wiped.
	Set(token string) error
	// Clear removes the token.
	Clear() error
}

// Decorate attaches the stored token to req as a bearer credential. When
// no token is present the request is left unmodified and the upstream's
// unauthenticated response is the caller's problem.
func Decorate(req *http.Request, p Provider) {
	if tok, ok := p.Get(); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *MemoryStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// FileStore persists the token to a single file so the CLI client keeps
// its login across invocations.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by the file at path. The file is
// created on first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultTokenPath places the token file under the user config directory.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "doccast", "token"), nil
}

func (s *FileStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	tok := strings.TrimSpace(string(data))
	return tok, tok != ""
}

func (s *FileStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token+"\n"), 0600)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
