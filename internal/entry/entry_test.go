package entry

import (
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	value := []byte("payload")
	ttl := 10 * time.Second

	e := New(value, []string{"a", "b"}, ttl)

	if string(e.Value) != "payload" {
		t.Fatalf("Expected value %q, got %q", "payload", e.Value)
	}

	if e.ExpiresAt == nil {
		t.Fatal("Expected ExpiresAt to be set")
	}

	expectedExpiry := time.Now().Add(ttl)
	if e.ExpiresAt.Before(expectedExpiry.Add(-time.Second)) ||
		e.ExpiresAt.After(expectedExpiry.Add(time.Second)) {
		t.Fatal("ExpiresAt not set correctly")
	}

	if e.CreatedAt.IsZero() || e.LastAccess().IsZero() {
		t.Fatal("Expected CreatedAt and AccessedAt to be set")
	}
}

func TestNewWithoutTTL(t *testing.T) {
	e := New([]byte("x"), nil, 0)

	if e.HasExpiry() {
		t.Fatal("Expected no expiry for zero TTL")
	}
	if e.IsExpired() {
		t.Fatal("Entry without TTL should never expire")
	}
	if e.TTL() != 0 {
		t.Fatalf("Expected TTL 0, got %v", e.TTL())
	}
}

func TestIsExpired(t *testing.T) {
	e := New([]byte("x"), nil, time.Hour)
	if e.IsExpired() {
		t.Fatal("Entry should not be expired")
	}

	past := time.Now().Add(-time.Hour)
	expired := &Entry{Value: []byte("x"), ExpiresAt: &past, CreatedAt: time.Now()}
	if !expired.IsExpired() {
		t.Fatal("Entry should be expired")
	}
	if expired.TTL() != 0 {
		t.Fatalf("Expired entry TTL should be 0, got %v", expired.TTL())
	}
}

func TestTagsAreNormalized(t *testing.T) {
	e := New(nil, []string{"set_1", "", "global", "set_1"}, 0)

	if len(e.Tags) != 2 {
		t.Fatalf("Expected 2 tags, got %v", e.Tags)
	}
	if e.Tags[0] != "set_1" || e.Tags[1] != "global" {
		t.Fatalf("Expected first-seen order, got %v", e.Tags)
	}
}

func TestTagMatching(t *testing.T) {
	e := New(nil, []string{"global", "pview_as_4"}, 0)

	if !e.HasTag("global") {
		t.Fatal("Expected HasTag(global)")
	}
	if e.HasTag("pview_as_5") {
		t.Fatal("Unexpected HasTag(pview_as_5)")
	}

	if !e.MatchesAny([]string{"pview_as_5", "pview_as_4"}) {
		t.Fatal("Expected MatchesAny to succeed on one matching tag")
	}
	if e.MatchesAny([]string{"other"}) {
		t.Fatal("MatchesAny should fail without a matching tag")
	}

	if !e.MatchesAll([]string{"global", "pview_as_4"}) {
		t.Fatal("Expected MatchesAll to succeed")
	}
	if e.MatchesAll([]string{"global", "pview_as_5"}) {
		t.Fatal("MatchesAll should fail when one tag is missing")
	}
	if e.MatchesAll(nil) {
		t.Fatal("MatchesAll should fail on an empty tag list")
	}
}

func TestTouch(t *testing.T) {
	e := New(nil, nil, 0)
	before := e.LastAccess()
	time.Sleep(2 * time.Millisecond)
	e.Touch()
	if !e.LastAccess().After(before) {
		t.Fatal("Touch should advance the access time")
	}
}

func TestCompressionInfo(t *testing.T) {
	e := New([]byte("zz"), nil, 0)
	e.SetCompressionInfo("gzip", 4096)

	if !e.IsCompressed || e.CompressorName != "gzip" || e.OriginalSize != 4096 {
		t.Fatalf("Compression info not recorded: %+v", e)
	}
}
