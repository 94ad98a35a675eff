package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionDocument is the per-browser-session scratch state the quiz and
// podcast pages read: the most recently extracted text and generated
// script. It replaces the sessionStorage keys the web client used to keep
// and is cleared when the user starts a new chat.
type SessionDocument struct {
	ExtractedText string `json:"extracted_text"`
	PodcastScript string `json:"podcast_script"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// DocumentStore keeps one SessionDocument per session ID with a bounded
// lifetime. A miss returns (nil, nil).
type DocumentStore interface {
	Get(ctx context.Context, sessionID string) (*SessionDocument, error)
	Put(ctx context.Context, sessionID string, doc SessionDocument) error
	Delete(ctx context.Context, sessionID string) error
}

func documentKey(sessionID string) string {
	return fmt.Sprintf("session:%s:document", sessionID)
}

// RedisDocumentStore backs the session documents with Redis.
type RedisDocumentStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDocumentStore wraps a connected Redis client. Each Put resets
// the entry's TTL.
func NewRedisDocumentStore(client *redis.Client, ttl time.Duration) *RedisDocumentStore {
	return &RedisDocumentStore{client: client, ttl: ttl}
}

func (s *RedisDocumentStore) Get(ctx context.Context, sessionID string) (*SessionDocument, error) {
	val, err := s.client.Get(ctx, documentKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session document: %w", err)
	}

	var doc SessionDocument
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session document: %w", err)
	}
	return &doc, nil
}

func (s *RedisDocumentStore) Put(ctx context.Context, sessionID string, doc SessionDocument) error {
	doc.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal session document: %w", err)
	}
	if err := s.client.Set(ctx, documentKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session document: %w", err)
	}
	return nil
}

func (s *RedisDocumentStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, documentKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session document: %w", err)
	}
	return nil
}

// MemoryDocumentStore is an in-process DocumentStore used in tests and
// when the gateway runs without Redis. Entries expire lazily on read.
type MemoryDocumentStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

type memoryEntry struct {
	doc     SessionDocument
	expires time.Time
}

// NewMemoryDocumentStore creates an empty in-memory store.
func NewMemoryDocumentStore(ttl time.Duration) *MemoryDocumentStore {
	return &MemoryDocumentStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryDocumentStore) Get(ctx context.Context, sessionID string) (*SessionDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[sessionID]
	if !ok {
		return nil, nil
	}
	if time.Now().After(entry.expires) {
		delete(s.entries, sessionID)
		return nil, nil
	}
	doc := entry.doc
	return &doc, nil
}

func (s *MemoryDocumentStore) Put(ctx context.Context, sessionID string, doc SessionDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	s.entries[sessionID] = memoryEntry{doc: doc, expires: time.Now().Add(s.ttl)}
	return nil
}

func (s *MemoryDocumentStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}
