package tagcache

// Hooks defines event callbacks for cache operations.
// Hooks run synchronously while the cache lock is held and must not call back into the cache.
type Hooks struct {
	// OnHit is called when a cache key is found and not expired
	OnHit []OnHitHook

	// OnMiss is called when a cache key is not found or expired
	OnMiss []OnMissHook

	// OnEvict is called when an entry is evicted (LRU or TTL)
	OnEvict []OnEvictHook

	// OnInvalidate is called for every key removed by Remove or a clean
	OnInvalidate []OnInvalidateHook

	// OnClean is called once per clean with the number of keys removed
	OnClean []OnCleanHook
}

// Hook function type definitions
type (
	// OnHitHook is called when a cache hit occurs
	OnHitHook func(key string, size int)

	// OnMissHook is called when a cache miss occurs
	OnMissHook func(key string)

	// OnEvictHook is called when a cache entry is evicted
	OnEvictHook func(key string, reason EvictReason)

	// OnInvalidateHook is called when a cache entry is invalidated
	OnInvalidateHook func(key string)

	// OnCleanHook is called after a tag clean
	OnCleanHook func(mode CleanMode, tags []string, removed int)
)

// EvictReason indicates why a cache entry was evicted
type EvictReason int

const (
	// EvictReasonLRU indicates the entry was evicted due to LRU policy
	EvictReasonLRU EvictReason = iota

	// EvictReasonTTL indicates the entry was evicted due to TTL expiration
	EvictReasonTTL
)

func (r EvictReason) String() string {
	switch r {
	case EvictReasonLRU:
		return "lru"
	case EvictReasonTTL:
		return "ttl"
	default:
		return "unknown"
	}
}

// AddOnHit adds an OnHit hook
func (h *Hooks) AddOnHit(hook OnHitHook) {
	h.OnHit = append(h.OnHit, hook)
}

// AddOnMiss adds an OnMiss hook
func (h *Hooks) AddOnMiss(hook OnMissHook) {
	h.OnMiss = append(h.OnMiss, hook)
}

// AddOnEvict adds an OnEvict hook
func (h *Hooks) AddOnEvict(hook OnEvictHook) {
	h.OnEvict = append(h.OnEvict, hook)
}

// AddOnInvalidate adds an OnInvalidate hook
func (h *Hooks) AddOnInvalidate(hook OnInvalidateHook) {
	h.OnInvalidate = append(h.OnInvalidate, hook)
}

// AddOnClean adds an OnClean hook
func (h *Hooks) AddOnClean(hook OnCleanHook) {
	h.OnClean = append(h.OnClean, hook)
}

// Merge appends all hooks of other to h. A nil h yields a new Hooks.
func (h *Hooks) Merge(other *Hooks) *Hooks {
	if h == nil {
		h = &Hooks{}
	}
	if other == nil {
		return h
	}
	h.OnHit = append(h.OnHit, other.OnHit...)
	h.OnMiss = append(h.OnMiss, other.OnMiss...)
	h.OnEvict = append(h.OnEvict, other.OnEvict...)
	h.OnInvalidate = append(h.OnInvalidate, other.OnInvalidate...)
	h.OnClean = append(h.OnClean, other.OnClean...)
	return h
}

func (h *Hooks) invokeOnHit(key string, size int) {
	for _, hook := range h.OnHit {
		if hook != nil {
			hook(key, size)
		}
	}
}

func (h *Hooks) invokeOnMiss(key string) {
	for _, hook := range h.OnMiss {
		if hook != nil {
			hook(key)
		}
	}
}

func (h *Hooks) invokeOnEvict(key string, reason EvictReason) {
	for _, hook := range h.OnEvict {
		if hook != nil {
			hook(key, reason)
		}
	}
}

func (h *Hooks) invokeOnInvalidate(key string) {
	for _, hook := range h.OnInvalidate {
		if hook != nil {
			hook(key)
		}
	}
}

func (h *Hooks) invokeOnClean(mode CleanMode, tags []string, removed int) {
	for _, hook := range h.OnClean {
		if hook != nil {
			hook(mode, tags, removed)
		}
	}
}
