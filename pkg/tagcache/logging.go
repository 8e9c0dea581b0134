package tagcache

import (
	"context"
	"log/slog"
)

// Logger defines the interface for cache logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value any
}

// F is a convenience function to create a logging field
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// SlogLogger adapts a *slog.Logger to the Logger interface
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps logger; a nil logger uses slog.Default()
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

// Debug logs a debug message
func (l *SlogLogger) Debug(msg string, fields ...Field) {
	l.log(slog.LevelDebug, msg, fields)
}

// Info logs an info message
func (l *SlogLogger) Info(msg string, fields ...Field) {
	l.log(slog.LevelInfo, msg, fields)
}

// Warn logs a warning message
func (l *SlogLogger) Warn(msg string, fields ...Field) {
	l.log(slog.LevelWarn, msg, fields)
}

// Error logs an error message
func (l *SlogLogger) Error(msg string, fields ...Field) {
	l.log(slog.LevelError, msg, fields)
}

// With creates a new logger with additional fields
func (l *SlogLogger) With(fields ...Field) Logger {
	return &SlogLogger{logger: l.logger.With(toAttrs(fields)...)}
}

func (l *SlogLogger) log(level slog.Level, msg string, fields []Field) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	l.logger.Log(ctx, level, msg, toAttrs(fields)...)
}

func toAttrs(fields []Field) []any {
	attrs := make([]any, 0, len(fields))
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	return attrs
}

// NoOpLogger is a logger that does nothing
type NoOpLogger struct{}

// NewNoOpLogger creates a logger that discards all messages
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (nol *NoOpLogger) Debug(string, ...Field) {}
func (nol *NoOpLogger) Info(string, ...Field)  {}
func (nol *NoOpLogger) Warn(string, ...Field)  {}
func (nol *NoOpLogger) Error(string, ...Field) {}
func (nol *NoOpLogger) With(...Field) Logger   { return nol }

// LoggingConfig defines which cache events are logged
type LoggingConfig struct {
	Logger Logger

	// LogCacheHits enables logging of cache hit events
	LogCacheHits bool

	// LogCacheMisses enables logging of cache miss events
	LogCacheMisses bool

	// LogEvictions enables logging of cache eviction events
	LogEvictions bool

	// LogInvalidations enables logging of per-key invalidation events
	LogInvalidations bool

	// LogCleans enables logging of tag cleans
	LogCleans bool
}

// NewDefaultLoggingConfig logs misses, evictions and cleans to logger
func NewDefaultLoggingConfig(logger Logger) *LoggingConfig {
	return &LoggingConfig{
		Logger:         logger,
		LogCacheMisses: true,
		LogEvictions:   true,
		LogCleans:      true,
	}
}

// CreateLoggingHooks creates a set of hooks that implement cache event logging
func CreateLoggingHooks(config *LoggingConfig) *Hooks {
	if config == nil || config.Logger == nil {
		return &Hooks{}
	}

	hooks := &Hooks{}
	logger := config.Logger

	if config.LogCacheHits {
		hooks.AddOnHit(func(key string, size int) {
			logger.Debug("cache hit", F("key", key), F("bytes", size))
		})
	}

	if config.LogCacheMisses {
		hooks.AddOnMiss(func(key string) {
			logger.Debug("cache miss", F("key", key))
		})
	}

	if config.LogEvictions {
		hooks.AddOnEvict(func(key string, reason EvictReason) {
			logger.Info("cache eviction", F("key", key), F("reason", reason.String()))
		})
	}

	if config.LogInvalidations {
		hooks.AddOnInvalidate(func(key string) {
			logger.Debug("cache invalidation", F("key", key))
		})
	}

	if config.LogCleans {
		hooks.AddOnClean(func(mode CleanMode, tags []string, removed int) {
			logger.Info("cache clean", F("mode", mode.String()), F("tags", tags), F("removed", removed))
		})
	}

	return hooks
}
