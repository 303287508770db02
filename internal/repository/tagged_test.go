package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestCache() *TaggedCache {
	return NewTaggedCache(NewMemoryStore(), time.Minute)
}

func TestKeyDeterministic(t *testing.T) {
	a := Key("catalog:movies", 1, 8, []int{3, 4}, "netflix")
	b := Key("catalog:movies", 1, 8, []int{3, 4}, "netflix")
	if a != b {
		t.Errorf("identical args produced different keys: %q vs %q", a, b)
	}

	c := Key("catalog:movies", 2, 8, []int{3, 4}, "netflix")
	if a == c {
		t.Error("different args produced the same key")
	}

	if got := Key("catalog:top-companies"); got != "catalog:top-companies" {
		t.Errorf("no-arg key: got %q", got)
	}
}

func TestGetOrComputeCachesResult(t *testing.T) {
	cache := newTestCache()
	ctx := context.Background()
	calls := 0

	compute := func(ctx context.Context) (interface{}, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	var first []string
	hit, err := cache.GetOrCompute(ctx, "list", nil, &first, compute, "tag-a")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if hit {
		t.Error("first call should be a miss")
	}

	var second []string
	hit, err = cache.GetOrCompute(ctx, "list", nil, &second, compute, "tag-a")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !hit {
		t.Error("second call should be a hit")
	}
	if calls != 1 {
		t.Errorf("compute ran %d times, want 1", calls)
	}
	if len(second) != 2 || second[0] != "a" || second[1] != "b" {
		t.Errorf("cached value mismatch: %v", second)
	}
}

func TestGetOrComputeErrorNotStored(t *testing.T) {
	cache := newTestCache()
	ctx := context.Background()
	boom := errors.New("db down")
	calls := 0

	compute := func(ctx context.Context) (interface{}, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return "recovered", nil
	}

	var out string
	if _, err := cache.GetOrCompute(ctx, "val", nil, &out, compute); !errors.Is(err, boom) {
		t.Fatalf("first call: got %v, want the compute error", err)
	}

	hit, err := cache.GetOrCompute(ctx, "val", nil, &out, compute)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if hit {
		t.Error("a failed compute must not leave a cache entry behind")
	}
	if out != "recovered" {
		t.Errorf("got %q, want %q", out, "recovered")
	}
}

func TestInvalidateDropsAllTaggedKeys(t *testing.T) {
	cache := newTestCache()
	ctx := context.Background()
	calls := int32(0)

	compute := func(ctx context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "v", nil
	}

	var out string
	for _, page := range []interface{}{1, 2, 3} {
		if _, err := cache.GetOrCompute(ctx, "list", []interface{}{page}, &out, compute, "pages"); err != nil {
			t.Fatal(err)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Fatalf("setup: compute ran %d times, want 3", n)
	}

	if err := cache.Invalidate(ctx, "pages"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	for _, page := range []interface{}{1, 2, 3} {
		hit, err := cache.GetOrCompute(ctx, "list", []interface{}{page}, &out, compute, "pages")
		if err != nil {
			t.Fatal(err)
		}
		if hit {
			t.Errorf("page %v still cached after invalidation", page)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 6 {
		t.Errorf("compute ran %d times after invalidation, want 6", n)
	}
}

func TestInvalidateOtherTagUntouched(t *testing.T) {
	cache := newTestCache()
	ctx := context.Background()

	compute := func(ctx context.Context) (interface{}, error) { return "v", nil }

	var out string
	if _, err := cache.GetOrCompute(ctx, "movies", nil, &out, compute, "movies"); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.GetOrCompute(ctx, "series", nil, &out, compute, "tv-series"); err != nil {
		t.Fatal(err)
	}

	if err := cache.Invalidate(ctx, "movies"); err != nil {
		t.Fatal(err)
	}

	hit, err := cache.GetOrCompute(ctx, "series", nil, &out, compute, "tv-series")
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("invalidating one tag dropped an entry under another tag")
	}
}

// Concurrent misses may each run compute; every caller must still end up
// with a correct value.
func TestGetOrComputeConcurrentMisses(t *testing.T) {
	cache := newTestCache()
	ctx := context.Background()

	compute := func(ctx context.Context) (interface{}, error) {
		return 42, nil
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var out int
			if _, err := cache.GetOrCompute(ctx, "answer", nil, &out, compute); err != nil {
				errs <- err
				return
			}
			if out != 42 {
				errs <- errors.New("wrong value from concurrent access")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	var out string
	if err := store.Get(ctx, "k", &out); err != nil {
		t.Fatalf("fresh read: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	if err := store.Get(ctx, "k", &out); !IsCacheMiss(err) {
		t.Errorf("expired read: got %v, want cache miss", err)
	}
}
