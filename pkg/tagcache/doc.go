// Package tagcache provides a thread-safe tagged byte cache with TTL support,
// LRU eviction and tag-based invalidation over memory or Redis backends.
//
// # Overview
//
// Every entry is saved with a set of tags. A clean removes every entry that
// carries any of the given tags (or all of them, depending on the mode)
// through a tag index kept by the backend, so invalidation never scans values.
//
// # Basic Usage
//
//	cache, err := tagcache.New(tagcache.NewDefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = cache.Save(payload, "structure_4_1", []string{"groups", "set_4"}, 24*time.Hour)
//
//	data, found := cache.Load("structure_4_1")
//
//	// drop everything saved for attribute set 4
//	err = cache.Clean([]string{"set_4"})
//
// # Clean Modes
//
//   - CleanAll removes every entry
//   - CleanMatchingTag removes entries carrying all of the given tags
//   - CleanMatchingAnyTag removes entries carrying at least one of them
//
// # Redis Backend
//
// Entries live under <prefix>k:<key>; each tag owns a Redis set under
// <prefix>t:<tag>. Several processes sharing the same prefix share
// invalidation as well:
//
//	config := tagcache.NewRedisConfig("localhost:6379").
//	    WithRedisKeyPrefix("pview:structure:")
//
// # Compression
//
// Large payloads can be compressed transparently:
//
//	config := tagcache.NewDefaultConfig().
//	    WithCompression(compression.NewDefaultConfig().
//	        WithEnabled(true).
//	        WithAlgorithm(compression.CompressorZstd))
//
// # Observability
//
// Hooks observe hits, misses, evictions and invalidations. CreateLoggingHooks
// turns them into structured log lines, and a metrics.Exporter receives
// operation counters and periodic gauges:
//
//	exporter, _ := metrics.NewPrometheusExporter(nil, nil)
//	config := tagcache.NewDefaultConfig().WithMetricsExporter(exporter, "structure")
//
// DebugHandler serves statistics and key metadata as JSON.
package tagcache
