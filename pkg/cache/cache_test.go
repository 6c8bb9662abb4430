package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/sceneforest/pkg/observability"
)

var errTransient = errors.New("transient")

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "nested", "cache"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "svg"); hit || err != nil {
		t.Fatalf("empty cache Get = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "svg", []byte("<svg/>"), 0); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "svg")
	if err != nil || !hit || string(data) != "<svg/>" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "svg"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "svg"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "svg"); err != nil {
		t.Errorf("Delete of missing key should succeed: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry Get = hit %v, err %v; want clean miss", hit, err)
	}
}

func TestFileCacheForeignRecord(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "artifact:one", []byte("<svg/>"), 0); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(c.path("artifact:one"))
	if err != nil {
		t.Fatal(err)
	}
	// a record copied under another key's file name must not be served
	other := c.path("artifact:two")
	if err := os.MkdirAll(filepath.Dir(other), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(other, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "artifact:two"); hit || err != nil {
		t.Errorf("foreign record Get = hit %v, err %v; want clean miss", hit, err)
	}
	if _, err := os.Stat(other); !os.IsNotExist(err) {
		t.Error("foreign record should be removed")
	}
	if data, hit, _ := c.Get(ctx, "artifact:one"); !hit || string(data) != "<svg/>" {
		t.Errorf("original record = %q, hit %v", data, hit)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, hit, _ := c.Get(ctx, k); hit {
			t.Errorf("%s should be gone after Clear", k)
		}
	}
	if _, err := os.Stat(c.Dir()); err != nil {
		t.Errorf("Clear should leave the cache directory in place: %v", err)
	}
}

func TestFileCachePathSharding(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	p1 := c.path("artifact:one")
	if p1 != c.path("artifact:one") {
		t.Error("path should be deterministic")
	}
	if p1 == c.path("artifact:two") {
		t.Error("different keys should map to different files")
	}

	rel, err := filepath.Rel(c.Dir(), p1)
	if err != nil {
		t.Fatal(err)
	}
	shard, name := filepath.Split(rel)
	if len(shard) != 3 || len(name) != 62+len(".json") {
		t.Errorf("path %q should be <2 hex>/<62 hex>.json", rel)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	base := ArtifactKeyOpts{Format: "svg"}
	ak1 := k.ArtifactKey("0123456789abcdef", base)
	if ak1 != k.ArtifactKey("0123456789abcdef", base) {
		t.Error("ArtifactKey should be deterministic")
	}

	variants := []struct {
		name string
		hash string
		opts ArtifactKeyOpts
	}{
		{"other scene", "fedcba9876543210", base},
		{"other format", "0123456789abcdef", ArtifactKeyOpts{Format: "png"}},
		{"detailed", "0123456789abcdef", ArtifactKeyOpts{Format: "svg", Detailed: true}},
		{"highlight", "0123456789abcdef", ArtifactKeyOpts{Format: "svg", Highlight: []string{"a->b"}}},
		{"scale", "0123456789abcdef", ArtifactKeyOpts{Format: "svg", Scale: 2}},
	}
	for _, v := range variants {
		if k.ArtifactKey(v.hash, v.opts) == ak1 {
			t.Errorf("%s should produce a different key", v.name)
		}
	}

	ab := ArtifactKeyOpts{Format: "svg", Highlight: []string{"a->b", "b->c"}}
	ba := ArtifactKeyOpts{Format: "svg", Highlight: []string{"b->c", "a->b"}}
	if k.ArtifactKey("h", ab) != k.ArtifactKey("h", ba) {
		t.Error("highlight order should not change the key")
	}
	if ba.Highlight[0] != "b->c" {
		t.Error("ArtifactKey should not reorder the caller's slice")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "team:")
	key := scoped.ArtifactKey("abc", ArtifactKeyOpts{Format: "svg"})
	if len(key) < 10 || key[:5] != "team:" {
		t.Errorf("ScopedKeyer key should be prefixed: %s", key)
	}

	// Should use DefaultKeyer when inner is nil
	nilInner := NewScopedKeyer(nil, "team:")
	if nilInner.ArtifactKey("abc", ArtifactKeyOpts{Format: "svg"}) != key {
		t.Error("nil inner keyer should behave like DefaultKeyer")
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrBackend)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrBackend) {
		t.Error("wrapped error should still match ErrBackend")
	}
	if err.Error() != ErrBackend.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	if IsRetryable(errTransient) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	defer func(p RetryPolicy) { DefaultRetry = p }(DefaultRetry)
	DefaultRetry.Delay = time.Millisecond

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("success: err %v, calls %d", err, calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return errTransient
	})
	if err != errTransient || calls != 1 {
		t.Errorf("non-retryable: err %v, calls %d", err, calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrBackend)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry once: err %v, calls %d", err, calls)
	}

	// Gives up after three attempts
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(ErrBackend)
	})
	if !errors.Is(err, ErrBackend) || calls != 3 {
		t.Errorf("exhausted: err %v, calls %d", err, calls)
	}
}

func TestRetryPolicyAttempts(t *testing.T) {
	p := RetryPolicy{Attempts: 5, Delay: time.Microsecond}
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return Retryable(ErrBackend)
	})
	if !IsRetryable(err) || calls != 5 {
		t.Errorf("err %v, calls %d; want retryable error after 5 calls", err, calls)
	}

	calls = 0
	_ = RetryPolicy{}.Do(context.Background(), func() error {
		calls++
		return Retryable(ErrBackend)
	})
	if calls != 1 {
		t.Errorf("zero policy should call once, got %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrBackend)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	ctx := context.Background()
	_, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1", Timeout: 100 * time.Millisecond})
	if err == nil {
		t.Fatal("NewRedisCache should fail without a server")
	}
	if !errors.Is(err, ErrBackend) || !IsRetryable(err) {
		t.Errorf("error should be a retryable backend error: %v", err)
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *countingHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestInstrument(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := Instrument(fc, "svg")

	_, _, _ = c.Get(ctx, "k")
	_ = c.Set(ctx, "k", []byte("v"), 0)
	_, _, _ = c.Get(ctx, "k")

	if hooks.hits != 1 || hooks.misses != 1 || hooks.sets != 1 {
		t.Errorf("hits %d, misses %d, sets %d; want 1 each", hooks.hits, hooks.misses, hooks.sets)
	}

	if err := c.(Clearer).Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Clear should pass through to the file cache")
	}
}
