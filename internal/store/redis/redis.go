package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/pviewgroups/internal/entry"
	"github.com/vnykmshr/pviewgroups/internal/store"
)

const (
	entrySegment = "k:"
	tagSegment   = "t:"
)

// Store implements a Redis-backed tagged cache store.
//
// Entries live under <prefix>k:<key>. Every tag owns a set under
// <prefix>t:<tag> listing the keys that carry it, so tag cleans resolve
// keys with SUNION/SINTER instead of scanning values.
type Store struct {
	client          redis.Cmdable
	keyPrefix       string
	defaultTTL      time.Duration
	cleanupCallback store.EvictCallback
	mu              sync.RWMutex
	ctx             context.Context
}

// Config holds Redis store configuration
type Config struct {
	// Client is the Redis client to use
	Client redis.Cmdable

	// KeyPrefix is prepended to all cache keys to avoid conflicts
	KeyPrefix string

	// DefaultTTL is the default TTL for entries without explicit expiration
	DefaultTTL time.Duration

	// Context for Redis operations
	Context context.Context
}

// SerializedEntry represents an entry as stored in Redis
type SerializedEntry struct {
	Value          []byte     `json:"value"`
	Tags           []string   `json:"tags,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	IsCompressed   bool       `json:"compressed,omitempty"`
	CompressorName string     `json:"compressor,omitempty"`
	OriginalSize   int        `json:"original_size,omitempty"`
}

// New creates a new Redis store with the given configuration
func New(config *Config) (*Store, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	ctx := config.Context
	if ctx == nil {
		ctx = context.Background()
	}

	keyPrefix := config.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "pview:"
	}

	return &Store{
		client:     config.Client,
		keyPrefix:  keyPrefix,
		defaultTTL: config.DefaultTTL,
		ctx:        ctx,
	}, nil
}

// Get retrieves an entry by key
func (s *Store) Get(key string) (*entry.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	redisKey := s.entryKey(key)
	data, err := s.client.Get(s.ctx, redisKey).Bytes()
	if err != nil {
		// redis.Nil and transport errors are both treated as a miss
		return nil, false
	}

	e, err := s.deserializeEntry(data)
	if err != nil {
		s.client.Del(s.ctx, redisKey)
		return nil, false
	}

	if e.IsExpired() {
		s.client.Del(s.ctx, redisKey)
		if s.cleanupCallback != nil {
			s.cleanupCallback(key, e)
		}
		return nil, false
	}

	return e, true
}

// Set stores an entry and registers its key in each tag set
func (s *Store) Set(key string, e *entry.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.serializeEntry(e)
	if err != nil {
		return err
	}

	ttl := s.defaultTTL
	if e.HasExpiry() {
		ttl = e.TTL()
		if ttl <= 0 {
			return s.client.Del(s.ctx, s.entryKey(key)).Err()
		}
	}

	redisKey := s.entryKey(key)
	_, err = s.client.TxPipelined(s.ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(s.ctx, redisKey, data, ttl)
		for _, tag := range e.Tags {
			tagKey := s.tagKey(tag)
			pipe.SAdd(s.ctx, tagKey, key)
			if ttl > 0 {
				pipe.ExpireNX(s.ctx, tagKey, ttl)
				pipe.ExpireGT(s.ctx, tagKey, ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store entry %s: %w", key, err)
	}
	return nil
}

// Delete removes an entry by key
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.client.Del(s.ctx, s.entryKey(key)).Err()
}

// Clean removes entries selected by mode and tags
func (s *Store) Clean(mode store.CleanMode, tags []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mode == store.CleanAll {
		return s.cleanAll()
	}
	if len(tags) == 0 {
		return nil, nil
	}

	tagKeys := make([]string, len(tags))
	for i, tag := range tags {
		tagKeys[i] = s.tagKey(tag)
	}

	var members []string
	var err error
	switch mode {
	case store.CleanMatchingAnyTag:
		members, err = s.client.SUnion(s.ctx, tagKeys...).Result()
	case store.CleanMatchingTag:
		members, err = s.client.SInter(s.ctx, tagKeys...).Result()
	default:
		return nil, fmt.Errorf("unsupported clean mode: %v", mode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tags %v: %w", tags, err)
	}

	removed, err := s.deleteKeys(members)
	if err != nil {
		return nil, err
	}

	// Only the resolved members leave the tag sets. Entries tagged by another
	// client after the lookup keep their membership.
	if len(members) > 0 {
		_, err = s.client.Pipelined(s.ctx, func(pipe redis.Pipeliner) error {
			for _, tagKey := range tagKeys {
				pipe.SRem(s.ctx, tagKey, toAny(members)...)
			}
			return nil
		})
		if err != nil {
			return removed, fmt.Errorf("failed to update tag sets: %w", err)
		}
	}

	return removed, nil
}

// Keys returns all keys currently in the store
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	redisKeys, err := s.scan(s.entryKey("*"))
	if err != nil {
		return []string{}
	}

	keys := make([]string, 0, len(redisKeys))
	for _, redisKey := range redisKeys {
		if key := strings.TrimPrefix(redisKey, s.keyPrefix+entrySegment); key != redisKey {
			keys = append(keys, key)
		}
	}
	return keys
}

// Len returns the current number of entries in the store
func (s *Store) Len() int {
	return len(s.Keys())
}

// Close is a no-op: entries are shared with other processes and the client is managed externally
func (s *Store) Close() error {
	return nil
}

// SetCleanupCallback sets the callback for expired entries found on read
func (s *Store) SetCleanupCallback(callback store.EvictCallback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupCallback = callback
}

// Cleanup is a no-op: Redis expires keys on its own
func (s *Store) Cleanup() int {
	return 0
}

func (s *Store) cleanAll() ([]string, error) {
	redisKeys, err := s.scan(s.keyPrefix + "*")
	if err != nil {
		return nil, err
	}
	if len(redisKeys) == 0 {
		return nil, nil
	}
	if err := s.client.Del(s.ctx, redisKeys...).Err(); err != nil {
		return nil, fmt.Errorf("failed to clear store: %w", err)
	}

	var removed []string
	for _, redisKey := range redisKeys {
		if key := strings.TrimPrefix(redisKey, s.keyPrefix+entrySegment); key != redisKey {
			removed = append(removed, key)
		}
	}
	return removed, nil
}

// deleteKeys deletes entries and reports the keys that actually existed
func (s *Store) deleteKeys(keys []string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.IntCmd, len(keys))
	_, err := s.client.Pipelined(s.ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.Del(s.ctx, s.entryKey(key))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete tagged entries: %w", err)
	}

	removed := make([]string, 0, len(keys))
	for i, cmd := range cmds {
		if cmd.Val() > 0 {
			removed = append(removed, keys[i])
		}
	}
	return removed, nil
}

func (s *Store) scan(pattern string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(s.ctx, 0, pattern, 100).Iterator()
	for iter.Next(s.ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", pattern, err)
	}
	return keys, nil
}

func (s *Store) entryKey(key string) string {
	return s.keyPrefix + entrySegment + key
}

func (s *Store) tagKey(tag string) string {
	return s.keyPrefix + tagSegment + tag
}

func (s *Store) serializeEntry(e *entry.Entry) ([]byte, error) {
	serialized := SerializedEntry{
		Value:          e.Value,
		Tags:           e.Tags,
		CreatedAt:      e.CreatedAt,
		ExpiresAt:      e.ExpiresAt,
		IsCompressed:   e.IsCompressed,
		CompressorName: e.CompressorName,
		OriginalSize:   e.OriginalSize,
	}
	data, err := json.Marshal(serialized)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entry: %w", err)
	}
	return data, nil
}

func (s *Store) deserializeEntry(data []byte) (*entry.Entry, error) {
	var serialized SerializedEntry
	if err := json.Unmarshal(data, &serialized); err != nil {
		return nil, fmt.Errorf("failed to unmarshal serialized entry: %w", err)
	}

	e := entry.New(serialized.Value, serialized.Tags, 0)
	e.CreatedAt = serialized.CreatedAt
	e.ExpiresAt = serialized.ExpiresAt
	if serialized.IsCompressed {
		e.SetCompressionInfo(serialized.CompressorName, serialized.OriginalSize)
	}
	return e, nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

var (
	_ store.Store    = (*Store)(nil)
	_ store.TTLStore = (*Store)(nil)
)
