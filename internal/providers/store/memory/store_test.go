package memory

import (
	"context"
	"sync"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()

	if _, found, err := store.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("expected clean miss, got found=%v err=%v", found, err)
	}

	if err := store.Set(ctx, "record/posts/1", `{"id":1}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, found, err := store.Get(ctx, "record/posts/1")
	if err != nil || !found || value != `{"id":1}` {
		t.Fatalf("unexpected read: %q found=%v err=%v", value, found, err)
	}

	if err := store.Remove(ctx, "record/posts/1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, found, _ := store.Get(ctx, "record/posts/1"); found {
		t.Fatalf("removed key must not resolve")
	}
	if err := store.Remove(ctx, "record/posts/1"); err != nil {
		t.Fatalf("removing an absent key must not fail: %v", err)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()

	var wg sync.WaitGroup
	for idx := 0; idx < 32; idx++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set(ctx, "shared", "value")
			_, _, _ = store.Get(ctx, "shared")
			_ = store.Remove(ctx, "shared")
		}()
	}
	wg.Wait()
}
