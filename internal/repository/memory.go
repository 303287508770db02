package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for test runs and deployments without
// Redis. Entries expire lazily on read; there is no size bound beyond the
// time-based staleness, so many distinct argument tuples grow the map.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	sets  map[string]map[string]bool
}

type memoryItem struct {
	data   []byte
	expiry time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		sets:  make(map[string]map[string]bool),
	}
}

// Get retrieves a value, treating expired entries as misses
func (s *MemoryStore) Get(ctx context.Context, key string, dest interface{}) error {
	s.mu.RLock()
	item, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return ErrCacheMiss
	}
	if time.Now().After(item.expiry) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return ErrCacheMiss
	}

	return json.Unmarshal(item.data, dest)
}

// Set stores a value with the given TTL. Zero TTL falls back to an hour.
func (s *MemoryStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	s.mu.Lock()
	s.items[key] = memoryItem{data: data, expiry: time.Now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Delete removes keys. A key naming a tag set drops the whole set.
func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.items, key)
		delete(s.sets, key)
	}
	s.mu.Unlock()
	return nil
}

// AddToSet registers members under a tag set
func (s *MemoryStore) AddToSet(ctx context.Context, set string, members ...string) error {
	s.mu.Lock()
	if s.sets[set] == nil {
		s.sets[set] = make(map[string]bool)
	}
	for _, m := range members {
		s.sets[set][m] = true
	}
	s.mu.Unlock()
	return nil
}

// SetMembers returns all members of a tag set
func (s *MemoryStore) SetMembers(ctx context.Context, set string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members := make([]string, 0, len(s.sets[set]))
	for m := range s.sets[set] {
		members = append(members, m)
	}
	return members, nil
}
