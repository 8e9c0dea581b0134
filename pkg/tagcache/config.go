package tagcache

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/pviewgroups/pkg/compression"
	"github.com/vnykmshr/pviewgroups/pkg/metrics"
)

// StoreType defines the type of backend store to use
type StoreType int

const (
	// StoreTypeMemory uses in-memory storage (default)
	StoreTypeMemory StoreType = iota
	// StoreTypeRedis uses Redis as backend storage
	StoreTypeRedis
)

const defaultRedisKeyPrefix = "pview:"

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Client is a pre-configured Redis client
	// If nil, a new client will be created using Addr, Password, DB
	Client redis.Cmdable

	// Addr is the Redis server address (host:port)
	// Only used if Client is nil
	Addr string

	// Password for Redis authentication
	// Only used if Client is nil
	Password string

	// DB is the Redis database number to use
	// Only used if Client is nil
	DB int

	// KeyPrefix is prepended to all cache keys and tag sets
	// Default: "pview:"
	KeyPrefix string
}

// MetricsConfig holds metrics exporter configuration
type MetricsConfig struct {
	// Exporter is the metrics exporter to use
	Exporter metrics.Exporter

	// Enabled determines whether metrics collection is enabled
	Enabled bool

	// CacheName is the name label applied to all metrics for this cache instance
	CacheName string

	// ReportingInterval determines how often gauges are exported
	// Set to 0 to disable automatic reporting
	ReportingInterval time.Duration
}

// Config defines the configuration options for a Cache instance
type Config struct {
	// StoreType determines which backend store to use
	// Default: StoreTypeMemory
	StoreType StoreType

	// MaxEntries sets the maximum number of entries in the cache (LRU)
	// Only applies to memory store
	// Default: 1000
	MaxEntries int

	// DefaultTTL applies when Save is called with a non-positive TTL
	// Default: 24 hours
	DefaultTTL time.Duration

	// CleanupInterval sets how often expired entries are cleaned up
	// Only applies to memory store (Redis handles TTL automatically)
	// Default: 1 minute
	CleanupInterval time.Duration

	// Hooks defines event callbacks for cache operations
	Hooks *Hooks

	// Logger receives operational messages (cleans, backend errors)
	// Default: NoOpLogger
	Logger Logger

	// Redis holds Redis-specific configuration
	// Only used when StoreType is StoreTypeRedis
	Redis *RedisConfig

	// Metrics holds metrics exporter configuration
	// If nil, no metrics will be exported
	Metrics *MetricsConfig

	// Compression holds compression configuration
	// If nil, compression will be disabled
	Compression *compression.Config
}

// NewDefaultConfig returns a Config with sensible defaults for memory storage
func NewDefaultConfig() *Config {
	return &Config{
		StoreType:       StoreTypeMemory,
		MaxEntries:      1000,
		DefaultTTL:      24 * time.Hour,
		CleanupInterval: time.Minute,
		Hooks:           &Hooks{},
	}
}

// NewRedisConfig returns a Config configured for Redis storage
func NewRedisConfig(addr string) *Config {
	return NewDefaultConfig().WithRedisAddr(addr)
}

// NewRedisConfigWithClient returns a Config configured for Redis with a pre-configured client
func NewRedisConfigWithClient(client redis.Cmdable) *Config {
	return NewDefaultConfig().WithRedisClient(client)
}

// WithMaxEntries sets the maximum number of cache entries
func (c *Config) WithMaxEntries(maxEntries int) *Config {
	c.MaxEntries = maxEntries
	return c
}

// WithDefaultTTL sets the default TTL for cache entries
func (c *Config) WithDefaultTTL(ttl time.Duration) *Config {
	c.DefaultTTL = ttl
	return c
}

// WithCleanupInterval sets the cleanup interval for expired entries
func (c *Config) WithCleanupInterval(interval time.Duration) *Config {
	c.CleanupInterval = interval
	return c
}

// WithHooks sets the event hooks for cache operations
func (c *Config) WithHooks(hooks *Hooks) *Config {
	c.Hooks = hooks
	return c
}

// WithLogger sets the operational logger
func (c *Config) WithLogger(logger Logger) *Config {
	c.Logger = logger
	return c
}

// WithRedis configures the cache to use Redis storage
func (c *Config) WithRedis(redisConfig *RedisConfig) *Config {
	c.StoreType = StoreTypeRedis
	c.Redis = redisConfig
	// Disable memory-specific settings when using Redis
	c.MaxEntries = 0
	c.CleanupInterval = 0
	return c
}

// WithRedisAddr configures the cache to use Redis with the given address
func (c *Config) WithRedisAddr(addr string) *Config {
	return c.WithRedis(&RedisConfig{
		Addr:      addr,
		KeyPrefix: defaultRedisKeyPrefix,
	})
}

// WithRedisClient configures the cache to use Redis with a pre-configured client
func (c *Config) WithRedisClient(client redis.Cmdable) *Config {
	return c.WithRedis(&RedisConfig{
		Client:    client,
		KeyPrefix: defaultRedisKeyPrefix,
	})
}

// WithRedisKeyPrefix sets the Redis key prefix
func (c *Config) WithRedisKeyPrefix(prefix string) *Config {
	if c.Redis == nil {
		c.Redis = &RedisConfig{}
	}
	c.Redis.KeyPrefix = prefix
	return c
}

// WithMetrics configures cache metrics export
func (c *Config) WithMetrics(metricsConfig *MetricsConfig) *Config {
	c.Metrics = metricsConfig
	return c
}

// WithMetricsExporter configures metrics with the given exporter
func (c *Config) WithMetricsExporter(exporter metrics.Exporter, cacheName string) *Config {
	c.Metrics = &MetricsConfig{
		Exporter:          exporter,
		Enabled:           true,
		CacheName:         cacheName,
		ReportingInterval: 30 * time.Second,
	}
	return c
}

// WithCompression configures cache compression
func (c *Config) WithCompression(compressionConfig *compression.Config) *Config {
	c.Compression = compressionConfig
	return c
}
