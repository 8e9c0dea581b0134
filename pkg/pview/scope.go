package pview

import (
	"context"
	"sync"
)

type scopeKey struct{}

// RequestScope holds memoized state for one request: the resolved prefix set,
// group id lookups and the sets already flushed by each observer. It must not
// outlive the request it was created for.
type RequestScope struct {
	mu           sync.Mutex
	prefixes     map[string]struct{}
	groupIsPview map[int]bool
	flushed      map[string]map[int]struct{}
}

// NewRequestScope creates an empty scope.
func NewRequestScope() *RequestScope {
	return &RequestScope{
		groupIsPview: make(map[int]bool),
		flushed:      make(map[string]map[int]struct{}),
	}
}

// WithRequestScope returns a context carrying a fresh scope.
func WithRequestScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeKey{}, NewRequestScope())
}

// ScopeFromContext returns the scope installed in ctx. Without one, a new
// scope is returned on every call so nothing is shared.
func ScopeFromContext(ctx context.Context) *RequestScope {
	if s, ok := ctx.Value(scopeKey{}).(*RequestScope); ok && s != nil {
		return s
	}
	return NewRequestScope()
}

// Reset clears all memoized state.
func (s *RequestScope) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefixes = nil
	s.groupIsPview = make(map[int]bool)
	s.flushed = make(map[string]map[int]struct{})
}

func (s *RequestScope) cachedPrefixes() (map[string]struct{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefixes, s.prefixes != nil
}

func (s *RequestScope) storePrefixes(p map[string]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefixes = p
}

func (s *RequestScope) cachedGroup(id int) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.groupIsPview[id]
	return v, ok
}

func (s *RequestScope) storeGroup(id int, isPview bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groupIsPview[id] = isPview
}

// wasFlushed reports whether guard already flushed setID in this scope.
func (s *RequestScope) wasFlushed(guard string, setID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.flushed[guard][setID]
	return ok
}

func (s *RequestScope) markFlushed(guard string, setID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flushed[guard] == nil {
		s.flushed[guard] = make(map[int]struct{})
	}
	s.flushed[guard][setID] = struct{}{}
}
