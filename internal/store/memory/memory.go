package memory

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vnykmshr/pviewgroups/internal/entry"
	"github.com/vnykmshr/pviewgroups/internal/store"
)

// Store implements an in-memory LRU cache with TTL support and a tag index
type Store struct {
	cache           *lru.Cache[string, *entry.Entry]
	tagIndex        map[string]map[string]struct{}
	mutex           sync.Mutex
	evictCallback   store.EvictCallback
	cleanupCallback store.EvictCallback
	cleanupTicker   *time.Ticker
	stopCleanup     chan struct{}
	closeOnce       sync.Once
	capacity        int

	// explicit is set while the store removes keys itself, so that the
	// LRU callback only maintains the index instead of reporting an eviction
	explicit bool
}

// New creates a new memory store with the specified capacity
func New(capacity int) (*Store, error) {
	s := &Store{
		capacity:    capacity,
		tagIndex:    make(map[string]map[string]struct{}),
		stopCleanup: make(chan struct{}),
	}

	cache, err := lru.NewWithEvict[string, *entry.Entry](capacity, s.onRemoved)
	if err != nil {
		return nil, err
	}

	s.cache = cache
	return s, nil
}

// NewWithCleanup creates a new memory store with automatic TTL cleanup
func NewWithCleanup(capacity int, cleanupInterval time.Duration) (*Store, error) {
	s, err := New(capacity)
	if err != nil {
		return nil, err
	}

	if cleanupInterval > 0 {
		s.startCleanup(cleanupInterval)
	}

	return s, nil
}

// onRemoved runs inside lru calls, which only happen while s.mutex is held
func (s *Store) onRemoved(key string, e *entry.Entry) {
	s.unindex(key, e)
	if !s.explicit && s.evictCallback != nil {
		s.evictCallback(key, e)
	}
}

// Get retrieves an entry by key
func (s *Store) Get(key string) (*entry.Entry, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	e, found := s.cache.Get(key)
	if !found {
		return nil, false
	}

	if e.IsExpired() {
		s.remove(key)
		if s.cleanupCallback != nil {
			s.cleanupCallback(key, e)
		}
		return nil, false
	}

	e.Touch()
	return e, true
}

// Set stores an entry with the given key
func (s *Store) Set(key string, e *entry.Entry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if old, ok := s.cache.Peek(key); ok {
		s.unindex(key, old)
	}
	s.cache.Add(key, e)
	for _, tag := range e.Tags {
		keys, ok := s.tagIndex[tag]
		if !ok {
			keys = make(map[string]struct{})
			s.tagIndex[tag] = keys
		}
		keys[key] = struct{}{}
	}
	return nil
}

// Delete removes an entry by key
func (s *Store) Delete(key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.remove(key)
	return nil
}

// Clean removes entries selected by mode and tags
func (s *Store) Clean(mode store.CleanMode, tags []string) ([]string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var victims []string
	switch mode {
	case store.CleanAll:
		victims = s.cache.Keys()
	case store.CleanMatchingAnyTag:
		seen := make(map[string]struct{})
		for _, tag := range tags {
			for key := range s.tagIndex[tag] {
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				victims = append(victims, key)
			}
		}
	case store.CleanMatchingTag:
		if len(tags) == 0 {
			return nil, nil
		}
		for key := range s.tagIndex[tags[0]] {
			if e, ok := s.cache.Peek(key); ok && e.MatchesAll(tags) {
				victims = append(victims, key)
			}
		}
	}

	for _, key := range victims {
		s.remove(key)
	}
	return victims, nil
}

// Keys returns all non-expired keys currently in the store
func (s *Store) Keys() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	keys := s.cache.Keys()
	valid := make([]string, 0, len(keys))
	for _, key := range keys {
		if e, found := s.cache.Peek(key); found && !e.IsExpired() {
			valid = append(valid, key)
		}
	}
	return valid
}

// Len returns the current number of non-expired entries in the store
func (s *Store) Len() int {
	return len(s.Keys())
}

// TagCount returns the number of keys indexed under tag
func (s *Store) TagCount(tag string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.tagIndex[tag])
}

// Close stops the cleanup loop and purges the store
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.cleanupTicker != nil {
			s.cleanupTicker.Stop()
		}
		close(s.stopCleanup)
	})

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.explicit = true
	s.cache.Purge()
	s.explicit = false
	s.tagIndex = make(map[string]map[string]struct{})
	return nil
}

// SetEvictCallback sets the callback for LRU evictions
func (s *Store) SetEvictCallback(callback store.EvictCallback) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.evictCallback = callback
}

// SetCleanupCallback sets the callback for TTL cleanup
func (s *Store) SetCleanupCallback(callback store.EvictCallback) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.cleanupCallback = callback
}

// Capacity returns the maximum number of entries the store can hold
func (s *Store) Capacity() int {
	return s.capacity
}

// Cleanup removes expired entries and returns the number of entries removed
func (s *Store) Cleanup() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	removed := 0
	for _, key := range s.cache.Keys() {
		if e, found := s.cache.Peek(key); found && e.IsExpired() {
			s.remove(key)
			removed++

			if s.cleanupCallback != nil {
				s.cleanupCallback(key, e)
			}
		}
	}

	return removed
}

// remove must be called with s.mutex held
func (s *Store) remove(key string) {
	s.explicit = true
	s.cache.Remove(key)
	s.explicit = false
}

func (s *Store) unindex(key string, e *entry.Entry) {
	for _, tag := range e.Tags {
		keys := s.tagIndex[tag]
		delete(keys, key)
		if len(keys) == 0 {
			delete(s.tagIndex, tag)
		}
	}
}

func (s *Store) startCleanup(interval time.Duration) {
	s.cleanupTicker = time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-s.cleanupTicker.C:
				s.Cleanup()
			case <-s.stopCleanup:
				return
			}
		}
	}()
}

var (
	_ store.Store    = (*Store)(nil)
	_ store.LRUStore = (*Store)(nil)
	_ store.TTLStore = (*Store)(nil)
)
