package tagcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/pviewgroups/internal/entry"
	"github.com/vnykmshr/pviewgroups/internal/store"
	"github.com/vnykmshr/pviewgroups/internal/store/memory"
	redisstore "github.com/vnykmshr/pviewgroups/internal/store/redis"
	"github.com/vnykmshr/pviewgroups/pkg/compression"
	"github.com/vnykmshr/pviewgroups/pkg/metrics"
)

// CleanMode selects which entries a clean removes
type CleanMode = store.CleanMode

const (
	// CleanAll removes every entry regardless of tags
	CleanAll = store.CleanAll

	// CleanMatchingTag removes entries carrying all of the given tags
	CleanMatchingTag = store.CleanMatchingTag

	// CleanMatchingAnyTag removes entries carrying at least one of the given tags
	CleanMatchingAnyTag = store.CleanMatchingAnyTag
)

func (c *Cache) rlock(fn func()) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn()
}

func (c *Cache) lock(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

// Cache is a tagged byte cache with LRU and TTL support
type Cache struct {
	config *Config
	store  store.Store
	stats  *Stats
	hooks  *Hooks
	logger Logger
	mu     sync.RWMutex

	compressor compression.Compressor

	metricsExporter metrics.Exporter
	metricsLabels   metrics.Labels
	metricsStop     chan struct{}
	metricsWg       sync.WaitGroup
}

// New creates a new Cache instance with the given configuration
func New(config *Config) (*Cache, error) {
	if config == nil {
		config = NewDefaultConfig()
	}

	var cacheStore store.Store
	var err error

	switch config.StoreType {
	case StoreTypeMemory:
		cacheStore, err = createMemoryStore(config)
	case StoreTypeRedis:
		cacheStore, err = createRedisStore(config)
	default:
		return nil, fmt.Errorf("unsupported store type: %v", config.StoreType)
	}
	if err != nil {
		return nil, err
	}

	cache := &Cache{
		config: config,
		store:  cacheStore,
		stats:  &Stats{},
		hooks:  config.Hooks,
		logger: config.Logger,
	}
	if cache.hooks == nil {
		cache.hooks = &Hooks{}
	}
	if cache.logger == nil {
		cache.logger = NewNoOpLogger()
	}

	if err := cache.initializeCompression(); err != nil {
		return nil, fmt.Errorf("failed to initialize compression: %w", err)
	}

	cache.initializeMetrics()

	if lruStore, ok := cacheStore.(store.LRUStore); ok {
		lruStore.SetEvictCallback(func(key string, _ *entry.Entry) {
			cache.evicted(key, EvictReasonLRU)
		})
	}

	if ttlStore, ok := cacheStore.(store.TTLStore); ok {
		ttlStore.SetCleanupCallback(func(key string, _ *entry.Entry) {
			cache.evicted(key, EvictReasonTTL)
		})
	}

	return cache, nil
}

func createMemoryStore(config *Config) (store.Store, error) {
	if config.MaxEntries <= 0 {
		return nil, fmt.Errorf("max entries must be positive, got %d", config.MaxEntries)
	}
	if config.CleanupInterval > 0 {
		return memory.NewWithCleanup(config.MaxEntries, config.CleanupInterval)
	}
	return memory.New(config.MaxEntries)
}

func createRedisStore(config *Config) (store.Store, error) {
	if config.Redis == nil {
		return nil, fmt.Errorf("redis configuration is required when using StoreTypeRedis")
	}

	redisConfig := &redisstore.Config{
		DefaultTTL: config.DefaultTTL,
		KeyPrefix:  config.Redis.KeyPrefix,
		Context:    context.Background(),
	}

	if config.Redis.Client != nil {
		redisConfig.Client = config.Redis.Client
	} else {
		client := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Addr,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})

		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}

		redisConfig.Client = client
	}

	return redisstore.New(redisConfig)
}

// Load returns the payload saved under key
func (c *Cache) Load(key string) ([]byte, bool) {
	start := time.Now()

	var data []byte
	var found bool

	c.rlock(func() {
		e, ok := c.store.Get(key)
		if !ok {
			return
		}

		if e.IsCompressed && e.CompressorName != c.compressor.Name() {
			c.logger.Warn("compressed entry written with another compressor",
				F("key", key), F("compressor", e.CompressorName))
			return
		}

		restored, err := compression.Restore(e.Value, e.IsCompressed, c.compressor)
		if err != nil {
			c.logger.Warn("failed to restore cached payload", F("key", key), F("error", err))
			return
		}

		data = restored
		found = true
	})

	if found {
		c.stats.incHits()
		c.hooks.invokeOnHit(key, len(data))
		c.recordOperation(metrics.OperationLoad, metrics.ResultHit, start)
	} else {
		c.stats.incMisses()
		c.hooks.invokeOnMiss(key)
		c.recordOperation(metrics.OperationLoad, metrics.ResultMiss, start)
	}

	return data, found
}

// Save stores data under key with the given tags. A non-positive ttl uses the default TTL.
func (c *Cache) Save(data []byte, key string, tags []string, ttl time.Duration) error {
	start := time.Now()

	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}

	e, err := c.newEntry(data, tags, ttl)
	if err != nil {
		c.recordOperation(metrics.OperationSave, metrics.ResultError, start)
		return fmt.Errorf("failed to create entry: %w", err)
	}

	var setErr error
	c.lock(func() {
		setErr = c.store.Set(key, e)
		if setErr == nil {
			c.updateKeyCount()
		}
	})

	if setErr != nil {
		c.logger.Error("failed to save cache entry", F("key", key), F("error", setErr))
		c.recordOperation(metrics.OperationSave, metrics.ResultError, start)
		return setErr
	}

	c.recordOperation(metrics.OperationSave, metrics.ResultOK, start)
	return nil
}

// Remove deletes a single key
func (c *Cache) Remove(key string) error {
	start := time.Now()

	var err error
	c.lock(func() {
		err = c.store.Delete(key)
		if err == nil {
			c.stats.addInvalidations(1)
			c.updateKeyCount()
		}
	})

	if err != nil {
		c.recordOperation(metrics.OperationDelete, metrics.ResultError, start)
		return err
	}

	c.hooks.invokeOnInvalidate(key)
	c.recordOperation(metrics.OperationDelete, metrics.ResultOK, start)
	return nil
}

// Clean removes every entry carrying at least one of tags
func (c *Cache) Clean(tags []string) error {
	return c.CleanMatching(CleanMatchingAnyTag, tags)
}

// CleanMatching removes entries selected by mode and tags
func (c *Cache) CleanMatching(mode CleanMode, tags []string) error {
	start := time.Now()

	var removed []string
	var err error
	c.lock(func() {
		removed, err = c.store.Clean(mode, tags)
		if err == nil {
			c.stats.addInvalidations(len(removed))
			c.updateKeyCount()
		}
	})

	if err != nil {
		c.logger.Error("cache clean failed", F("mode", mode.String()), F("tags", tags), F("error", err))
		c.recordOperation(metrics.OperationClean, metrics.ResultError, start)
		return fmt.Errorf("failed to clean tags %v: %w", tags, err)
	}

	for _, key := range removed {
		c.hooks.invokeOnInvalidate(key)
	}
	c.hooks.invokeOnClean(mode, tags, len(removed))
	c.recordOperation(metrics.OperationClean, metrics.ResultOK, start)
	return nil
}

// Stats returns the current cache statistics
func (c *Cache) Stats() *Stats {
	c.rlock(c.updateKeyCount)
	return c.stats
}

// Keys returns all current cache keys
func (c *Cache) Keys() []string {
	var keys []string
	c.rlock(func() {
		keys = c.store.Keys()
	})
	return keys
}

// Len returns the current number of entries in the cache
func (c *Cache) Len() int {
	var length int
	c.rlock(func() {
		length = c.store.Len()
	})
	return length
}

// Has checks if a key exists in the cache without touching statistics
func (c *Cache) Has(key string) bool {
	var exists bool
	c.rlock(func() {
		_, exists = c.store.Get(key)
	})
	return exists
}

// TTL returns the remaining TTL for a key
func (c *Cache) TTL(key string) (time.Duration, bool) {
	var ttl time.Duration
	var found bool
	c.rlock(func() {
		e, ok := c.store.Get(key)
		if ok {
			ttl = e.TTL()
			found = true
		}
	})
	return ttl, found
}

// Cleanup removes expired entries and returns count removed
func (c *Cache) Cleanup() int {
	start := time.Now()

	var removed int
	c.lock(func() {
		if ttlStore, ok := c.store.(store.TTLStore); ok {
			removed = ttlStore.Cleanup()
			c.updateKeyCount()
		}
	})

	c.recordOperation(metrics.OperationCleanup, metrics.ResultOK, start)
	return removed
}

// Close stops background work and releases the store
func (c *Cache) Close() error {
	var err error
	c.lock(func() {
		if c.metricsStop != nil {
			close(c.metricsStop)
			c.metricsWg.Wait()
			c.metricsStop = nil
		}
		if c.metricsExporter != nil {
			_ = c.metricsExporter.Close()
		}
		err = c.store.Close()
	})
	return err
}

// evicted runs from store callbacks, which fire while the cache lock is held
func (c *Cache) evicted(key string, reason EvictReason) {
	c.stats.incEvictions()
	c.hooks.invokeOnEvict(key, reason)
	if c.metricsExporter != nil {
		_ = c.metricsExporter.RecordEviction(reason.String(), c.metricsLabels) //nolint:errcheck // metrics are best effort
	}
}

func (c *Cache) updateKeyCount() {
	c.stats.setKeyCount(int64(c.store.Len()))
}

func (c *Cache) newEntry(data []byte, tags []string, ttl time.Duration) (*entry.Entry, error) {
	if c.config.Compression == nil || !c.config.Compression.Enabled {
		return entry.New(data, tags, ttl), nil
	}

	stored, compressed, err := compression.MaybeCompress(data, c.compressor, c.config.Compression.MinSize)
	if err != nil {
		return nil, err
	}

	e := entry.New(stored, tags, ttl)
	if compressed {
		e.SetCompressionInfo(c.compressor.Name(), len(data))
	}
	return e, nil
}

func (c *Cache) initializeCompression() error {
	compressor, err := compression.NewCompressor(c.config.Compression)
	if err != nil {
		return fmt.Errorf("failed to create compressor: %w", err)
	}

	c.compressor = compressor
	return nil
}

func (c *Cache) initializeMetrics() {
	if c.config.Metrics == nil || !c.config.Metrics.Enabled || c.config.Metrics.Exporter == nil {
		c.metricsExporter = metrics.NewNoOpExporter()
		return
	}

	c.metricsExporter = c.config.Metrics.Exporter

	name := c.config.Metrics.CacheName
	if name == "" {
		name = "default"
	}
	c.metricsLabels = metrics.Labels{"cache_name": name}

	if c.config.Metrics.ReportingInterval > 0 {
		c.metricsStop = make(chan struct{})
		c.metricsWg.Add(1)
		go c.metricsReporter(c.config.Metrics.ReportingInterval, c.metricsStop)
	}
}

func (c *Cache) metricsReporter(interval time.Duration, stop <-chan struct{}) {
	defer c.metricsWg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.exportCurrentStats()
		case <-stop:
			return
		}
	}
}

// ExportStats pushes the current gauges to the metrics exporter
func (c *Cache) ExportStats() {
	c.rlock(c.updateKeyCount)
	c.exportCurrentStats()
}

func (c *Cache) exportCurrentStats() {
	if c.metricsExporter != nil {
		_ = c.metricsExporter.ExportStats(c.stats, c.metricsLabels) //nolint:errcheck // metrics are best effort
	}
}

func (c *Cache) recordOperation(operation metrics.Operation, result metrics.Result, start time.Time) {
	if c.metricsExporter != nil {
		_ = c.metricsExporter.RecordCacheOperation(operation, result, time.Since(start), c.metricsLabels) //nolint:errcheck // metrics are best effort
	}
}
