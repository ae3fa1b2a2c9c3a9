package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/flowmap/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "layout:k", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:k")
	if err != nil || hit || data != nil {
		t.Errorf("Get = (%v, %v, %v), want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "layout:k"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	buf := []byte("abc")
	if err := c.Set(ctx, "layout:k", buf, 0); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'X'

	data, hit, err := c.Get(ctx, "layout:k")
	if err != nil || !hit {
		t.Fatalf("Get hit=%v err=%v, want hit", hit, err)
	}
	if string(data) != "abc" {
		t.Errorf("Get = %q, want abc (stored value must not alias caller buffer)", data)
	}

	if err := c.Delete(ctx, "layout:k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "layout:k"); hit {
		t.Error("Get after Delete reported a hit")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "layout:k", []byte("v"), time.Minute)
	if _, hit, _ := c.Get(ctx, "layout:k"); !hit {
		t.Fatal("fresh entry missed")
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "layout:k"); hit {
		t.Error("expired entry hit")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d after expiry, want 0", c.Len())
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if _, hit, err := c.Get(ctx, "layout:missing"); hit || err != nil {
		t.Errorf("Get(missing) hit=%v err=%v, want clean miss", hit, err)
	}

	if err := c.Set(ctx, "layout:abc", []byte(`{"nodes":[]}`), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:abc")
	if err != nil || !hit || string(data) != `{"nodes":[]}` {
		t.Errorf("Get = (%q, %v, %v)", data, hit, err)
	}

	// Entries are grouped by key type.
	if _, err := os.Stat(filepath.Join(dir, "layout")); err != nil {
		t.Errorf("layout subdirectory missing: %v", err)
	}
}

func TestFileCache_ExpiredAndCorrupt(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "layout:old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "layout:old"); hit {
		t.Error("expired entry hit")
	}

	path := c.path("layout:bad")
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	_ = os.WriteFile(path, []byte("not json"), 0o644)
	if _, hit, err := c.Get(ctx, "layout:bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want clean miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry was not removed")
	}
}

func TestFileCache_Clear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"layout:a", "layout:b", "artifact:c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "layout:a"); hit {
		t.Error("entry survived Clear")
	}
	if err := c.Delete(ctx, "layout:a"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash is not deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs share a hash")
	}
	if len(h1) != 64 {
		t.Errorf("len(Hash) = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	lk1 := k.LayoutKey("hash", LayoutKeyOpts{WidthMin: 1, WidthMax: 20})
	lk2 := k.LayoutKey("hash", LayoutKeyOpts{WidthMin: 1, WidthMax: 30})
	if lk1 == lk2 {
		t.Error("different LayoutKeyOpts share a key")
	}
	if lk1 != k.LayoutKey("hash", LayoutKeyOpts{WidthMin: 1, WidthMax: 20}) {
		t.Error("LayoutKey is not deterministic")
	}
	if !strings.HasPrefix(lk1, "layout:") {
		t.Errorf("LayoutKey = %q, want layout: prefix", lk1)
	}

	ak1 := k.ArtifactKey("hash", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash", ArtifactKeyOpts{Format: "dot"})
	if ak1 == ak2 {
		t.Error("different ArtifactKeyOpts share a key")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "user:123:")
	key := scoped.LayoutKey("hash", LayoutKeyOpts{})
	if !strings.HasPrefix(key, "user:123:layout:") {
		t.Errorf("scoped key = %q", key)
	}
	if got := KeyType(key); got != "layout" {
		t.Errorf("KeyType(%q) = %q, want layout", key, got)
	}
}

func TestKeyType(t *testing.T) {
	tests := []struct{ key, want string }{
		{"layout:abc", "layout"},
		{"artifact:abc", "artifact"},
		{"a:b:artifact:abc", "artifact"},
		{"plain", "unknown"},
		{":abc", "unknown"},
	}
	for _, tt := range tests {
		if got := KeyType(tt.key); got != tt.want {
			t.Errorf("KeyType(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets, bytes int
}

func (h *countingHooks) OnCacheHit(context.Context, string)  { h.hits++ }
func (h *countingHooks) OnCacheMiss(context.Context, string) { h.misses++ }
func (h *countingHooks) OnCacheSet(_ context.Context, _ string, size int) {
	h.sets++
	h.bytes += size
}

func TestObserve(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	c := Observe(NewMemoryCache())
	if Observe(c) != c {
		t.Error("Observe wrapped an observed cache twice")
	}

	_, _, _ = c.Get(ctx, "layout:k")
	_ = c.Set(ctx, "layout:k", []byte("1234"), 0)
	_, _, _ = c.Get(ctx, "layout:k")

	if hooks.hits != 1 || hooks.misses != 1 || hooks.sets != 1 || hooks.bytes != 4 {
		t.Errorf("hooks = %+v, want 1 hit, 1 miss, 1 set of 4 bytes", *hooks)
	}
}
