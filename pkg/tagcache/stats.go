package tagcache

import (
	"sync/atomic"
)

// Stats holds cache performance statistics
type Stats struct {
	hits          int64
	misses        int64
	evictions     int64
	invalidations int64
	keyCount      int64
}

// Hits returns the number of cache hits
func (s *Stats) Hits() int64 {
	return atomic.LoadInt64(&s.hits)
}

// Misses returns the number of cache misses
func (s *Stats) Misses() int64 {
	return atomic.LoadInt64(&s.misses)
}

// Evictions returns the number of entries removed by LRU or TTL
func (s *Stats) Evictions() int64 {
	return atomic.LoadInt64(&s.evictions)
}

// Invalidations returns the number of entries removed by Remove or a clean
func (s *Stats) Invalidations() int64 {
	return atomic.LoadInt64(&s.invalidations)
}

// KeyCount returns the current number of keys in the cache
func (s *Stats) KeyCount() int64 {
	return atomic.LoadInt64(&s.keyCount)
}

// HitRate returns the cache hit rate as a percentage (0-100)
func (s *Stats) HitRate() float64 {
	hits := s.Hits()
	total := hits + s.Misses()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Total returns the total number of cache loads (hits + misses)
func (s *Stats) Total() int64 {
	return s.Hits() + s.Misses()
}

// Reset resets all statistics to zero
func (s *Stats) Reset() {
	atomic.StoreInt64(&s.hits, 0)
	atomic.StoreInt64(&s.misses, 0)
	atomic.StoreInt64(&s.evictions, 0)
	atomic.StoreInt64(&s.invalidations, 0)
	atomic.StoreInt64(&s.keyCount, 0)
}

func (s *Stats) incHits() {
	atomic.AddInt64(&s.hits, 1)
}

func (s *Stats) incMisses() {
	atomic.AddInt64(&s.misses, 1)
}

func (s *Stats) incEvictions() {
	atomic.AddInt64(&s.evictions, 1)
}

func (s *Stats) addInvalidations(n int) {
	atomic.AddInt64(&s.invalidations, int64(n))
}

func (s *Stats) setKeyCount(count int64) {
	atomic.StoreInt64(&s.keyCount, count)
}
