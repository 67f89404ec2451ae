package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

type memoryCounter struct {
	count     int64
	expiresAt time.Time
}

type memoryStore struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	counters map[string]memoryCounter
	now      func() time.Time
}

// NewMemoryStore returns an in-process Store used when Redis is not
// configured. Suitable for a single instance only.
func NewMemoryStore() Store {
	return &memoryStore{
		entries:  make(map[string]memoryEntry),
		counters: make(map[string]memoryCounter),
		now:      time.Now,
	}
}

func (s *memoryStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	counter, ok := s.counters[key]
	if !ok || !counter.expiresAt.After(now) {
		counter = memoryCounter{expiresAt: now.Add(window)}
	}

	counter.count++
	s.counters[key] = counter

	return counter.count, counter.expiresAt.Sub(now), nil
}

func (s *memoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expires := s.now().Add(ttl)
	if ttl <= 0 {
		expires = s.now().Add(24 * time.Hour)
	}

	buf := make([]byte, len(value))
	copy(buf, value)
	s.entries[key] = memoryEntry{value: buf, expiresAt: expires}
	return nil
}

func (s *memoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.After(s.now()) {
		delete(s.entries, key)
		return nil, false, nil
	}

	buf := make([]byte, len(entry.value))
	copy(buf, entry.value)
	return buf, true, nil
}

func (s *memoryStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.entries, key)
		delete(s.counters, key)
	}
	return nil
}

func (s *memoryStore) Close() error {
	return nil
}
