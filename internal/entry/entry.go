package entry

import (
	"sync"
	"time"
)

// Entry represents a tagged cache entry holding a serialized payload
type Entry struct {
	// Value is the stored payload (compressed if IsCompressed is true)
	Value []byte

	// Tags are the invalidation labels attached to this entry
	Tags []string

	// ExpiresAt indicates when this entry expires (nil means no expiration)
	ExpiresAt *time.Time

	// CreatedAt is when this entry was created
	CreatedAt time.Time

	// AccessedAt is when this entry was last accessed (for LRU)
	// Protected by mu for concurrent access
	AccessedAt time.Time
	mu         sync.RWMutex

	// Compression metadata
	IsCompressed   bool
	CompressorName string
	OriginalSize   int
}

// New creates a new cache entry with the given payload, tags and TTL
func New(value []byte, tags []string, ttl time.Duration) *Entry {
	now := time.Now()
	e := &Entry{
		Value:      value,
		Tags:       normalizeTags(tags),
		CreatedAt:  now,
		AccessedAt: now,
	}

	if ttl > 0 {
		expiry := now.Add(ttl)
		e.ExpiresAt = &expiry
	}

	return e
}

// IsExpired returns true if the entry has expired
func (e *Entry) IsExpired() bool {
	if e.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*e.ExpiresAt)
}

// TTL returns the time remaining until expiration.
// Returns 0 if the entry has no expiration or has already expired.
func (e *Entry) TTL() time.Duration {
	if e.ExpiresAt == nil {
		return 0
	}

	remaining := time.Until(*e.ExpiresAt)
	if remaining < 0 {
		return 0
	}

	return remaining
}

// Age returns how long ago this entry was created
func (e *Entry) Age() time.Duration {
	return time.Since(e.CreatedAt)
}

// Touch updates the last accessed time to now
func (e *Entry) Touch() {
	e.mu.Lock()
	e.AccessedAt = time.Now()
	e.mu.Unlock()
}

// LastAccess returns the last accessed time
func (e *Entry) LastAccess() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.AccessedAt
}

// HasExpiry returns true if the entry has an expiration time set
func (e *Entry) HasExpiry() bool {
	return e.ExpiresAt != nil
}

// HasTag reports whether the entry carries the given tag
func (e *Entry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// MatchesAny reports whether the entry carries at least one of tags
func (e *Entry) MatchesAny(tags []string) bool {
	for _, tag := range tags {
		if e.HasTag(tag) {
			return true
		}
	}
	return false
}

// MatchesAll reports whether the entry carries every tag in tags
func (e *Entry) MatchesAll(tags []string) bool {
	if len(tags) == 0 {
		return false
	}
	for _, tag := range tags {
		if !e.HasTag(tag) {
			return false
		}
	}
	return true
}

// SetCompressionInfo sets compression metadata for the entry
func (e *Entry) SetCompressionInfo(compressorName string, originalSize int) {
	e.IsCompressed = true
	e.CompressorName = compressorName
	e.OriginalSize = originalSize
}

// String returns a string representation of the entry (for debugging)
func (e *Entry) String() string {
	status := "Entry{"
	if e.IsCompressed {
		status += "compressed, "
	}
	if e.ExpiresAt == nil {
		status += "no-expiry}"
	} else {
		status += "expires: " + e.ExpiresAt.Format(time.RFC3339) + "}"
	}
	return status
}

// normalizeTags drops empty and duplicate tags, keeping first-seen order
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
