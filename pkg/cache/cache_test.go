package cache

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	if err := c.Set(ctx, "tree:abc", []byte("root"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if data, ok, err := c.Get(ctx, "tree:abc"); ok || data != nil || err != nil {
		t.Errorf("Get = %q, %v, %v; want a miss", data, ok, err)
	}
	if err := c.Delete(ctx, "tree:abc"); err != nil {
		t.Error(err)
	}
}

func TestHash(t *testing.T) {
	a, b := Hash([]byte("main;parse 3\n")), Hash([]byte("main;render 1\n"))
	if a != Hash([]byte("main;parse 3\n")) {
		t.Error("Hash should be deterministic")
	}
	if a == b {
		t.Error("different profiles should hash differently")
	}
	if len(a) != 64 {
		t.Errorf("len(Hash) = %d, want 64", len(a))
	}

	tests := []struct {
		name      string
		a, b      string
		wantEqual bool
	}{
		{"deterministic", TreeVariant(a, "cpu", false), TreeVariant(a, "cpu", false), true},
		{"title", TreeVariant(a, "cpu", false), TreeVariant(a, "wall", false), false},
		{"sort order", TreeVariant(a, "cpu", false), TreeVariant(a, "cpu", true), false},
		{"profile", TreeVariant(a, "cpu", false), TreeVariant(b, "cpu", false), false},
		{"no separator ambiguity", TreeVariant(a, "x|1", false), TreeVariant(a+"|x", "1", false), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a == tt.b; got != tt.wantEqual {
				t.Errorf("%s == %s is %v, want %v", tt.a, tt.b, got, tt.wantEqual)
			}
		})
	}
}

func TestKeyers(t *testing.T) {
	k := NewDefaultKeyer()
	svg := ArtifactKeyOpts{Format: "svg", Width: 1200}

	tests := []struct {
		name      string
		a, b      string
		wantEqual bool
	}{
		{"artifact deterministic", k.ArtifactKey("h", svg), k.ArtifactKey("h", svg), true},
		{"artifact format", k.ArtifactKey("h", svg), k.ArtifactKey("h", ArtifactKeyOpts{Format: "png", Width: 1200}), false},
		{"artifact search", k.ArtifactKey("h", svg), k.ArtifactKey("h", ArtifactKeyOpts{Format: "svg", Width: 1200, Search: "parse"}), false},
		{"artifact profile", k.ArtifactKey("h", svg), k.ArtifactKey("g", svg), false},
		{"minimap orientation", k.MinimapKey("h", MinimapKeyOpts{Width: 200}), k.MinimapKey("h", MinimapKeyOpts{Width: 200, Flame: true}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a == tt.b; got != tt.wantEqual {
				t.Errorf("%s == %s is %v, want %v", tt.a, tt.b, got, tt.wantEqual)
			}
		})
	}

	if got := k.TreeKey("abc"); got != "tree:abc" {
		t.Errorf("TreeKey = %q", got)
	}

	scoped := NewScopedKeyer(nil, "stackflame:")
	for _, key := range []string{
		scoped.TreeKey("abc"),
		scoped.ArtifactKey("abc", svg),
		scoped.MinimapKey("abc", MinimapKeyOpts{}),
	} {
		if !strings.HasPrefix(key, "stackflame:") {
			t.Errorf("scoped key %q lacks the prefix", key)
		}
	}
	if got := scoped.TreeKey("abc"); got != "stackflame:tree:abc" {
		t.Errorf("scoped TreeKey = %q", got)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, ok, err := c.Get(ctx, "missing"); ok || err != nil {
		t.Errorf("Get(missing) = %v, %v; want a miss", ok, err)
	}
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if data, ok, err := c.Get(ctx, "key"); err != nil || !ok || string(data) != "value" {
		t.Errorf("Get(key) = %q, %v, %v", data, ok, err)
	}

	if err := c.Set(ctx, "old", []byte("value"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, ok, _ := c.Get(ctx, "old"); ok {
		t.Error("an expired entry should miss")
	}

	if err := os.WriteFile(c.path("key"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(ctx, "key"); ok || err != nil {
		t.Errorf("Get(corrupt) = %v, %v; want a miss", ok, err)
	}

	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete(missing) = %v", err)
	}
}

func TestFileCacheMaintenance(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte("12345"), 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Set(ctx, "stale", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)

	if n, size := c.Usage(); n != 4 || size == 0 {
		t.Errorf("Usage = %d entries, %d bytes", n, size)
	}
	if n := c.Prune(); n != 1 {
		t.Errorf("Prune removed %d, want 1", n)
	}
	if n := c.Clear(); n != 3 {
		t.Errorf("Clear removed %d, want 3", n)
	}
	if n, _ := c.Usage(); n != 0 {
		t.Errorf("%d entries left after Clear", n)
	}
}

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	if err := classify(redis.Nil); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("classify(redis.Nil) = %v, want ErrCacheMiss", err)
	}
	netErr := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	if err := classify(netErr); !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("classify(net error) = %v, want a retryable network error", err)
	}
	other := errors.New("WRONGTYPE")
	if err := classify(other); err != other {
		t.Errorf("classify(other) = %v, want it unchanged", err)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) || !errors.Is(err, ErrNetwork) || err.Error() != ErrNetwork.Error() {
		t.Errorf("Retryable(ErrNetwork) = %v", err)
	}
	if IsRetryable(ErrCacheMiss) {
		t.Error("plain errors are not retryable")
	}
}

func TestBackoff(t *testing.T) {
	b := backoff{attempts: 3, delay: time.Millisecond}
	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"first try", 0, nil, 1, nil},
		{"permanent", 5, ErrCacheMiss, 1, ErrCacheMiss},
		{"recovers", 2, Retryable(ErrNetwork), 3, nil},
		{"not marked retryable", 5, ErrNetwork, 1, ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := b.do(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if err != tt.wantErr || calls != tt.wantCalls {
				t.Errorf("err = %v after %d calls, want %v after %d", err, calls, tt.wantErr, tt.wantCalls)
			}
		})
	}

	calls := 0
	err := b.do(context.Background(), func() error { calls++; return Retryable(ErrNetwork) })
	if calls != 3 || !errors.Is(err, ErrNetwork) {
		t.Errorf("exhausted retry = %v after %d calls, want ErrNetwork after 3", err, calls)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := defaultBackoff.do(ctx, func() error { return Retryable(ErrNetwork) }); err != context.Canceled {
		t.Errorf("cancelled retry = %v, want context.Canceled", err)
	}
}
