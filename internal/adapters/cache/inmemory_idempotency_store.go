package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	portssvc "github.com/propfolio/property_mgmt_app/internal/core/ports/services"
)

type storedEntry struct {
	value     json.RawMessage
	expiresAt time.Time
}

// InMemoryIdempotencyStore implements IdempotencyStore with a map, for
// single-instance deployments and tests. A background loop evicts expired
// entries so a long-running process does not accumulate dead keys.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	entries   map[string]storedEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates the store and starts its cleanup loop.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		entries:  make(map[string]storedEntry),
		stopChan: make(chan struct{}),
	}
	store.wg.Add(1)
	go store.cleanupLoop()
	return store
}

var _ portssvc.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

// Get returns the stored response for a key; expired entries are a miss.
func (s *InMemoryIdempotencyStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[key]
	if !exists || time.Now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.value, true, nil
}

// Put stores the response if the key is absent or its entry has expired.
func (s *InMemoryIdempotencyStore) Put(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.entries[key]; exists && time.Now().Before(e.expiresAt) {
		return false, nil
	}
	s.entries[key] = storedEntry{
		value:     append(json.RawMessage(nil), value...),
		expiresAt: time.Now().Add(ttl),
	}
	return true, nil
}

// Close stops the cleanup loop. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of live entries, for tests and monitoring.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *InMemoryIdempotencyStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}
