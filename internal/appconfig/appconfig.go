// Package appconfig loads pviewctl configuration from a file and the
// environment.
package appconfig

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates configuration for the application.
type Config struct {
	DB       DBConfig       `mapstructure:"db"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`
	Currency CurrencyConfig `mapstructure:"currency"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend         string        `mapstructure:"backend"`
	MaxEntries      int           `mapstructure:"max_entries"`
	PageMaxEntries  int           `mapstructure:"page_max_entries"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	// Compression is "none", "gzip", "deflate", "zstd" or "snappy".
	Compression     string `mapstructure:"compression"`
	CompressMinSize int    `mapstructure:"compress_min_size"`
	// SortDenylistKey makes structure keys independent of denylist order.
	SortDenylistKey bool `mapstructure:"sort_denylist_key"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type MetricsConfig struct {
	// Exporter is "prometheus", "otel" or "none".
	Exporter       string        `mapstructure:"exporter"`
	ReportInterval time.Duration `mapstructure:"report_interval"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CurrencyConfig struct {
	Code   string `mapstructure:"code"`
	Locale string `mapstructure:"locale"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DB: DBConfig{Path: "pview.db"},
		Cache: CacheConfig{
			Backend:         "memory",
			MaxEntries:      1000,
			PageMaxEntries:  5000,
			CleanupInterval: time.Minute,
			Compression:     "none",
			CompressMinSize: 1024,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "pview:",
		},
		Metrics: MetricsConfig{
			Exporter:       "prometheus",
			ReportInterval: 30 * time.Second,
		},
		HTTP:     HTTPConfig{Addr: ":8080"},
		Log:      LogConfig{Level: "info", Format: "text"},
		Currency: CurrencyConfig{Code: "USD", Locale: "en-US"},
	}
}

// Load reads configuration from path (or ./pview.yaml when path is empty)
// and environment variables. Environment variables use the prefix "PVIEW"
// and the dot in keys is replaced by an underscore, so "cache.backend"
// becomes "PVIEW_CACHE_BACKEND". The returned viper instance also carries
// the store-scoped module settings.
func Load(path string) (*Config, *viper.Viper, error) {
	cfg := Default()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pview")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("PVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// setDefaults registers every key so AutomaticEnv picks up overrides during
// Unmarshal.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("db.path", cfg.DB.Path)
	v.SetDefault("cache.backend", cfg.Cache.Backend)
	v.SetDefault("cache.max_entries", cfg.Cache.MaxEntries)
	v.SetDefault("cache.page_max_entries", cfg.Cache.PageMaxEntries)
	v.SetDefault("cache.cleanup_interval", cfg.Cache.CleanupInterval)
	v.SetDefault("cache.compression", cfg.Cache.Compression)
	v.SetDefault("cache.compress_min_size", cfg.Cache.CompressMinSize)
	v.SetDefault("cache.sort_denylist_key", cfg.Cache.SortDenylistKey)
	v.SetDefault("redis.addr", cfg.Redis.Addr)
	v.SetDefault("redis.password", cfg.Redis.Password)
	v.SetDefault("redis.db", cfg.Redis.DB)
	v.SetDefault("redis.key_prefix", cfg.Redis.KeyPrefix)
	v.SetDefault("metrics.exporter", cfg.Metrics.Exporter)
	v.SetDefault("metrics.report_interval", cfg.Metrics.ReportInterval)
	v.SetDefault("http.addr", cfg.HTTP.Addr)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("currency.code", cfg.Currency.Code)
	v.SetDefault("currency.locale", cfg.Currency.Locale)
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Metrics.Exporter {
	case "prometheus", "otel", "none":
	default:
		return fmt.Errorf("unknown metrics exporter %q", c.Metrics.Exporter)
	}
	if c.Cache.Backend == "memory" && c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive")
	}
	return nil
}

// LogLevel maps Log.Level to a slog level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
