package tagcache

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const expiredTTL = "expired"

// DebugResponse represents the JSON response structure for debug endpoints
type DebugResponse struct {
	Stats *DebugStats `json:"stats"`
	Keys  []DebugKey  `json:"keys,omitempty"`
}

// DebugStats represents cache statistics in the debug response
type DebugStats struct {
	Hits          int64        `json:"hits"`
	Misses        int64        `json:"misses"`
	Evictions     int64        `json:"evictions"`
	Invalidations int64        `json:"invalidations"`
	KeyCount      int64        `json:"keyCount"`
	HitRate       float64      `json:"hitRate"`
	Total         int64        `json:"total"`
	Config        *DebugConfig `json:"config"`
}

// DebugConfig represents cache configuration in the debug response
type DebugConfig struct {
	MaxEntries      int    `json:"maxEntries"`
	DefaultTTL      string `json:"defaultTTL"`
	CleanupInterval string `json:"cleanupInterval"`
	Compressor      string `json:"compressor"`
}

// DebugKey represents a cache key with its metadata
type DebugKey struct {
	Key          string     `json:"key"`
	Tags         []string   `json:"tags,omitempty"`
	Size         int        `json:"size"`
	OriginalSize int        `json:"originalSize,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	Age          string     `json:"age"`
	TTL          string     `json:"ttl,omitempty"`
}

// DebugHandler returns an HTTP handler that provides cache debug information.
// Requests whose path ends in /stats get statistics only; any other path also
// lists keys with their tags. A "tag" query parameter filters the key list.
func (c *Cache) DebugHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")

		stats := c.Stats()
		response := DebugResponse{
			Stats: &DebugStats{
				Hits:          stats.Hits(),
				Misses:        stats.Misses(),
				Evictions:     stats.Evictions(),
				Invalidations: stats.Invalidations(),
				KeyCount:      stats.KeyCount(),
				HitRate:       stats.HitRate(),
				Total:         stats.Total(),
				Config: &DebugConfig{
					MaxEntries:      c.config.MaxEntries,
					DefaultTTL:      c.config.DefaultTTL.String(),
					CleanupInterval: c.config.CleanupInterval.String(),
					Compressor:      c.compressor.Name(),
				},
			},
		}

		if !strings.HasSuffix(r.URL.Path, "/stats") {
			response.Keys = c.debugKeys(r.URL.Query().Get("tag"))
		}

		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to encode JSON response", http.StatusInternalServerError)
		}
	})
}

func (c *Cache) debugKeys(tag string) []DebugKey {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := c.store.Keys()
	out := make([]DebugKey, 0, len(keys))

	for _, key := range keys {
		e, found := c.store.Get(key)
		if !found {
			continue
		}
		if tag != "" && !e.HasTag(tag) {
			continue
		}

		debugKey := DebugKey{
			Key:       key,
			Tags:      e.Tags,
			Size:      len(e.Value),
			ExpiresAt: e.ExpiresAt,
			CreatedAt: e.CreatedAt,
			Age:       formatDuration(e.Age()),
		}
		if e.IsCompressed {
			debugKey.OriginalSize = e.OriginalSize
		}

		if e.HasExpiry() {
			if ttl := e.TTL(); ttl > 0 {
				debugKey.TTL = formatDuration(ttl)
			} else {
				debugKey.TTL = expiredTTL
			}
		}

		out = append(out, debugKey)
	}

	return out
}

// formatDuration formats a duration in a human-readable format
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Truncate(time.Microsecond).String()
	case d < time.Second:
		return d.Truncate(time.Millisecond).String()
	case d < time.Hour:
		return d.Truncate(time.Second).String()
	default:
		return d.Truncate(time.Minute).String()
	}
}
