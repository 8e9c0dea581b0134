package redis

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/pviewgroups/internal/entry"
	"github.com/vnykmshr/pviewgroups/internal/store"
)

func newTestStore(t *testing.T, prefix string) *Store {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}

	s, err := New(&Config{
		Client:    client,
		KeyPrefix: prefix,
		Context:   ctx,
	})
	if err != nil {
		t.Fatalf("Failed to create Redis store: %v", err)
	}
	t.Cleanup(func() {
		_, _ = s.Clean(store.CleanAll, nil)
		_ = client.Close()
	})
	return s
}

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(&Config{}); err == nil {
		t.Fatal("Expected an error without a client")
	}
}

func TestRedisStoreBasicOperations(t *testing.T) {
	s := newTestStore(t, "basic-test:")

	e := entry.New([]byte("v1"), []string{"t1"}, time.Hour)
	if err := s.Set("k1", e); err != nil {
		t.Fatalf("Failed to set entry: %v", err)
	}

	got, found := s.Get("k1")
	if !found {
		t.Fatal("Expected to find entry")
	}
	if string(got.Value) != "v1" {
		t.Fatalf("Expected v1, got %q", got.Value)
	}
	if !got.HasTag("t1") {
		t.Fatal("Tags should survive a round trip")
	}

	if err := s.Delete("k1"); err != nil {
		t.Fatalf("Failed to delete entry: %v", err)
	}
	if _, found := s.Get("k1"); found {
		t.Fatal("Expected entry to be deleted")
	}
}

func TestRedisStoreTTL(t *testing.T) {
	s := newTestStore(t, "ttl-test:")

	if err := s.Set("short", entry.New([]byte("x"), nil, 100*time.Millisecond)); err != nil {
		t.Fatalf("Failed to set entry: %v", err)
	}
	if _, found := s.Get("short"); !found {
		t.Fatal("Expected to find entry immediately after setting")
	}

	time.Sleep(200 * time.Millisecond)

	if _, found := s.Get("short"); found {
		t.Fatal("Expected entry to be expired")
	}
}

func TestRedisStoreCleanMatchingAnyTag(t *testing.T) {
	s := newTestStore(t, "clean-any-test:")

	_ = s.Set("a", entry.New([]byte("a"), []string{"global", "set_1"}, time.Hour))
	_ = s.Set("b", entry.New([]byte("b"), []string{"global", "set_2"}, time.Hour))
	_ = s.Set("c", entry.New([]byte("c"), []string{"global", "set_3"}, time.Hour))

	removed, err := s.Clean(store.CleanMatchingAnyTag, []string{"set_1", "set_3"})
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	sort.Strings(removed)
	if len(removed) != 2 || removed[0] != "a" || removed[1] != "c" {
		t.Fatalf("Expected [a c] removed, got %v", removed)
	}
	if _, found := s.Get("b"); !found {
		t.Fatal("Entry b should survive")
	}
}

// afterCommand runs fn once, right after the first command named name
// completes on the hooked client.
type afterCommand struct {
	name string
	once sync.Once
	fn   func()
}

func (h *afterCommand) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *afterCommand) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if cmd.Name() == h.name {
			h.once.Do(h.fn)
		}
		return err
	}
}

func (h *afterCommand) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestRedisStoreCleanKeepsEntriesTaggedDuringClean(t *testing.T) {
	const prefix = "clean-race-test:"
	other := newTestStore(t, prefix)

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	t.Cleanup(func() { _ = client.Close() })
	client.AddHook(&afterCommand{
		name: "sunion",
		fn: func() {
			if err := other.Set("late", entry.New([]byte("late"), []string{"set_1"}, time.Hour)); err != nil {
				t.Errorf("Concurrent set failed: %v", err)
			}
		},
	})
	s, err := New(&Config{Client: client, KeyPrefix: prefix, Context: context.Background()})
	if err != nil {
		t.Fatalf("Failed to create Redis store: %v", err)
	}

	_ = s.Set("early", entry.New([]byte("early"), []string{"set_1"}, time.Hour))

	removed, err := s.Clean(store.CleanMatchingAnyTag, []string{"set_1"})
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if len(removed) != 1 || removed[0] != "early" {
		t.Fatalf("Expected [early] removed, got %v", removed)
	}
	if _, found := s.Get("late"); !found {
		t.Fatal("Entry saved during the clean should survive it")
	}

	removed, err = s.Clean(store.CleanMatchingAnyTag, []string{"set_1"})
	if err != nil {
		t.Fatalf("Second clean failed: %v", err)
	}
	if len(removed) != 1 || removed[0] != "late" {
		t.Fatalf("Expected the late entry to stay cleanable by tag, got %v", removed)
	}
}

func TestRedisStoreCleanMatchingTag(t *testing.T) {
	s := newTestStore(t, "clean-all-tags-test:")

	_ = s.Set("a", entry.New([]byte("a"), []string{"global", "set_1"}, time.Hour))
	_ = s.Set("b", entry.New([]byte("b"), []string{"set_1"}, time.Hour))

	removed, err := s.Clean(store.CleanMatchingTag, []string{"global", "set_1"})
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if len(removed) != 1 || removed[0] != "a" {
		t.Fatalf("Expected only a removed, got %v", removed)
	}
	if _, found := s.Get("b"); !found {
		t.Fatal("Entry b should survive an all-tags clean")
	}
}

func TestRedisStoreCleanAll(t *testing.T) {
	s := newTestStore(t, "clear-test:")

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("key-%d", i)
		_ = s.Set(key, entry.New([]byte(key), []string{"bulk"}, time.Hour))
	}
	if s.Len() != 5 {
		t.Fatalf("Expected 5 entries, got %d", s.Len())
	}

	if _, err := s.Clean(store.CleanAll, nil); err != nil {
		t.Fatalf("Failed to clear store: %v", err)
	}
	if s.Len() != 0 {
		t.Fatal("Expected no entries after clean")
	}
}
