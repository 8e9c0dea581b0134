package store

import (
	"github.com/vnykmshr/pviewgroups/internal/entry"
)

// CleanMode selects which entries a tag clean removes
type CleanMode int

const (
	// CleanAll removes every entry regardless of tags
	CleanAll CleanMode = iota

	// CleanMatchingTag removes entries carrying all of the given tags
	CleanMatchingTag

	// CleanMatchingAnyTag removes entries carrying at least one of the given tags
	CleanMatchingAnyTag
)

// String returns the string representation of the clean mode
func (m CleanMode) String() string {
	switch m {
	case CleanAll:
		return "all"
	case CleanMatchingTag:
		return "matching_tag"
	case CleanMatchingAnyTag:
		return "matching_any_tag"
	default:
		return "unknown"
	}
}

// Store defines the interface for tagged cache storage backends.
// This abstraction allows for different implementations (memory, Redis, etc.)
type Store interface {
	// Get retrieves an entry by key
	// Returns the entry and true if found, nil and false if not found
	Get(key string) (*entry.Entry, bool)

	// Set stores an entry with the given key and indexes its tags
	Set(key string, entry *entry.Entry) error

	// Delete removes an entry by key
	Delete(key string) error

	// Clean removes entries selected by mode and tags and returns the removed keys.
	// Implementations resolve tags through a tag index, never by scanning values.
	Clean(mode CleanMode, tags []string) ([]string, error)

	// Keys returns all keys currently in the store
	Keys() []string

	// Len returns the current number of entries in the store
	Len() int

	// Close closes the store and cleans up resources
	Close() error
}

// EvictCallback is called when an entry is evicted from the store
type EvictCallback func(key string, e *entry.Entry)

// LRUStore extends Store with LRU-specific functionality
type LRUStore interface {
	Store

	// SetEvictCallback sets a callback invoked when entries are evicted
	// due to the LRU policy
	SetEvictCallback(callback EvictCallback)

	// Capacity returns the maximum number of entries the store can hold
	Capacity() int
}

// TTLStore extends Store with TTL cleanup functionality
type TTLStore interface {
	Store

	// Cleanup removes expired entries
	// Returns the number of entries removed
	Cleanup() int

	// SetCleanupCallback sets a callback invoked when entries are
	// removed during cleanup
	SetCleanupCallback(callback EvictCallback)
}
