package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/crmarques/restmodel/faults"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if _, found, err := store.Get(ctx, "path/posts/posts"); err != nil || found {
		t.Fatalf("expected clean miss, got found=%v err=%v", found, err)
	}

	if err := store.Set(ctx, "path/posts/posts", `[1,2]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, found, err := store.Get(ctx, "path/posts/posts")
	if err != nil || !found || value != `[1,2]` {
		t.Fatalf("unexpected read: %q found=%v err=%v", value, found, err)
	}

	if err := store.Remove(ctx, "path/posts/posts"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, found, _ := store.Get(ctx, "path/posts/posts"); found {
		t.Fatalf("removed key must not resolve")
	}
	if err := store.Remove(ctx, "path/posts/posts"); err != nil {
		t.Fatalf("removing an absent key must not fail: %v", err)
	}
}

func TestStoreKeepsKeysInsideBaseDir(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	store, err := NewStore(baseDir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := store.Set(context.Background(), "../escape", "x"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(baseDir), "escape")); err == nil {
		t.Fatalf("key with separators must not escape the base directory")
	}

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one escaped entry file, got %d", len(entries))
	}
}

func TestStoreOverwriteReplacesValue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := store.Set(ctx, "record/posts/1", `{"title":"a"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, "record/posts/1", `{"title":"b"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, _, err := store.Get(ctx, "record/posts/1")
	if err != nil || value != `{"title":"b"}` {
		t.Fatalf("overwrite must win: %q err=%v", value, err)
	}
}

func TestNewStoreRequiresBaseDir(t *testing.T) {
	t.Parallel()

	_, err := NewStore("")
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}
