package model

import (
	"reflect"
	"testing"

	"github.com/crmarques/restmodel/resource"
)

func TestFreshInstanceIsClean(t *testing.T) {
	t.Parallel()

	class := newTestClass(t, postDescriptor(), &recordingTransport{})
	instance := class.New(map[string]resource.Value{
		"title": "hello",
		"tags":  []resource.Value{"a"},
	})

	if dirty := instance.DirtyProperties(); len(dirty) != 0 {
		t.Fatalf("fresh instance must be clean, got %v", dirty)
	}
	if !instance.IsClean() || instance.IsDirty() {
		t.Fatalf("IsClean/IsDirty inconsistent on fresh instance")
	}
}

func TestInstanceDirtyTracking(t *testing.T) {
	t.Parallel()

	class := newTestClass(t, postDescriptor(), &recordingTransport{})
	instance := class.New(map[string]resource.Value{
		"title": "hello",
		"tags":  []resource.Value{"a", "b"},
	})

	instance.Set("title", "renamed")
	if got := instance.DirtyProperties(); !reflect.DeepEqual(got, []string{"title"}) {
		t.Fatalf("expected title dirty, got %v", got)
	}

	instance.Set("title", "hello")
	if !instance.IsClean() {
		t.Fatalf("inverse scalar mutation must return to clean")
	}

	tags := instance.Get("tags").([]resource.Value)
	instance.Set("tags", append(tags, "c"))
	if got := instance.DirtyProperties(); !reflect.DeepEqual(got, []string{"tags"}) {
		t.Fatalf("expected tags dirty after append, got %v", got)
	}

	grown := instance.Get("tags").([]resource.Value)
	instance.Set("tags", grown[:len(grown)-1])
	if !instance.IsClean() {
		t.Fatalf("inverse sequence mutation must return to clean")
	}
}

func TestInstanceDirtyOverride(t *testing.T) {
	t.Parallel()

	descriptor := postDescriptor()
	descriptor.Dirty = func(current map[string]resource.Value, snapshot map[string]resource.Value) []string {
		return []string{"always"}
	}

	class := newTestClass(t, descriptor, &recordingTransport{})
	instance := class.New(nil)

	if got := instance.DirtyProperties(); !reflect.DeepEqual(got, []string{"always"}) {
		t.Fatalf("dirty override must fully replace the default, got %v", got)
	}
}

func TestInstanceRevertPreservesSequenceIdentity(t *testing.T) {
	t.Parallel()

	class := newTestClass(t, postDescriptor(), &recordingTransport{})
	instance := class.New(map[string]resource.Value{
		"title": "hello",
		"tags":  []resource.Value{"a", "b"},
	})

	instance.Set("title", "renamed")
	tags := instance.Get("tags").([]resource.Value)
	instance.Set("tags", append(tags, "c"))
	liveBefore := instance.Get("tags").([]resource.Value)

	instance.Revert()

	if instance.Get("title") != "hello" {
		t.Fatalf("scalar not reverted")
	}
	reverted := instance.Get("tags").([]resource.Value)
	if len(reverted) != 2 || reverted[0] != "a" {
		t.Fatalf("sequence not reverted: %v", reverted)
	}
	if &reverted[0] != &liveBefore[0] {
		t.Fatalf("revert must preserve sequence container identity")
	}
	if !instance.IsClean() {
		t.Fatalf("reverted instance must be clean")
	}
}

func TestInstancePrimaryKeyIsNeverStale(t *testing.T) {
	t.Parallel()

	descriptor := postDescriptor()
	descriptor.PrimaryKeys = []string{"id", "slug"}
	class := newTestClass(t, descriptor, &recordingTransport{})
	instance := class.New(nil)

	if instance.PrimaryKey() != nil || !instance.IsNew() {
		t.Fatalf("instance without key attributes must be new")
	}

	instance.Set("slug", "hello-world")
	if instance.PrimaryKey() != "hello-world" {
		t.Fatalf("primary key must reflect current values")
	}

	instance.Set("id", int64(9))
	if instance.PrimaryKey() != int64(9) {
		t.Fatalf("primary key must honor declaration priority")
	}
	if !instance.IsPersisted() {
		t.Fatalf("instance with key must be persisted")
	}
}

func TestInstanceParentsRecomputedOnAccess(t *testing.T) {
	t.Parallel()

	class := newTestClass(t, commentDescriptor(), &recordingTransport{})
	instance := class.New(map[string]resource.Value{"post": int64(1)})

	if got := instance.Parents(); got["post"] != int64(1) {
		t.Fatalf("expected parent from properties, got %v", got)
	}

	instance.Set("post", int64(2))
	if got := instance.Parents(); got["post"] != int64(2) {
		t.Fatalf("parents must not be cached, got %v", got)
	}
}

func TestInstancePath(t *testing.T) {
	t.Parallel()

	class := newTestClass(t, commentDescriptor(), &recordingTransport{})

	persisted := class.New(map[string]resource.Value{"post": int64(1), "id": int64(2)})
	path, err := persisted.Path()
	if err != nil {
		t.Fatalf("Path() error: %v", err)
	}
	if path != "/posts/1/comments/2" {
		t.Fatalf("unexpected item path %q", path)
	}

	fresh := class.New(map[string]resource.Value{"post": int64(1)})
	path, err = fresh.Path()
	if err != nil {
		t.Fatalf("Path() error: %v", err)
	}
	if path != "/posts/1/comments" {
		t.Fatalf("unexpected collection path %q", path)
	}

	orphan := class.New(nil)
	if _, err := orphan.Path(); err == nil {
		t.Fatalf("expected missing parent failure")
	}
}

func TestInstanceOriginalPropertiesAreCopies(t *testing.T) {
	t.Parallel()

	class := newTestClass(t, postDescriptor(), &recordingTransport{})
	instance := class.New(map[string]resource.Value{"tags": []resource.Value{"a"}})

	original := instance.OriginalProperties()
	original["tags"].([]resource.Value)[0] = "mutated"

	if instance.OriginalProperties()["tags"].([]resource.Value)[0] != "a" {
		t.Fatalf("OriginalProperties must hand out copies")
	}
}
