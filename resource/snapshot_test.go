package resource

import (
	"reflect"
	"testing"
)

func trackedAttrs() []Attr {
	return ParseAttrs("name", "tags[]", "settings")
}

func TestCaptureSnapshotDoesNotAliasLiveContainers(t *testing.T) {
	t.Parallel()

	current := map[string]Value{
		"name":     "post",
		"tags":     []Value{"a", "b"},
		"settings": map[string]Value{"draft": true},
	}

	snapshot := CaptureSnapshot(trackedAttrs(), current)

	current["tags"].([]Value)[0] = "mutated"
	current["settings"].(map[string]Value)["draft"] = false

	if snapshot["tags"].([]Value)[0] != "a" {
		t.Fatalf("snapshot sequence aliases the live container")
	}
	if snapshot["settings"].(map[string]Value)["draft"] != true {
		t.Fatalf("snapshot mapping aliases the live container")
	}
}

func TestCaptureSnapshotKeysMatchDeclaredAttrs(t *testing.T) {
	t.Parallel()

	current := map[string]Value{
		"name":       "post",
		"undeclared": "ignored",
	}

	snapshot := CaptureSnapshot(trackedAttrs(), current)

	if len(snapshot) != 3 {
		t.Fatalf("snapshot must hold exactly the declared attrs, got %d entries", len(snapshot))
	}
	for _, name := range []string{"name", "tags", "settings"} {
		if _, exists := snapshot[name]; !exists {
			t.Fatalf("snapshot missing declared attr %q", name)
		}
	}
	if _, exists := snapshot["undeclared"]; exists {
		t.Fatalf("snapshot must not include undeclared properties")
	}
}

func TestComputeDirty(t *testing.T) {
	t.Parallel()

	attrs := trackedAttrs()

	tests := []struct {
		name   string
		mutate func(current map[string]Value)
		want   []string
	}{
		{
			name:   "clean_when_unchanged",
			mutate: func(current map[string]Value) {},
			want:   []string{},
		},
		{
			name: "scalar_change",
			mutate: func(current map[string]Value) {
				current["name"] = "renamed"
			},
			want: []string{"name"},
		},
		{
			name: "sequence_append",
			mutate: func(current map[string]Value) {
				current["tags"] = append(current["tags"].([]Value), "c")
			},
			want: []string{"tags"},
		},
		{
			name: "mapping_structural_change",
			mutate: func(current map[string]Value) {
				current["settings"] = map[string]Value{"draft": false}
			},
			want: []string{"settings"},
		},
		{
			name: "equal_replacement_mapping_stays_clean",
			mutate: func(current map[string]Value) {
				current["settings"] = map[string]Value{"draft": true}
			},
			want: []string{},
		},
		{
			name: "declaration_order_preserved",
			mutate: func(current map[string]Value) {
				current["settings"] = map[string]Value{"draft": false}
				current["name"] = "renamed"
			},
			want: []string{"name", "settings"},
		},
		{
			name: "absent_values_stay_clean",
			mutate: func(current map[string]Value) {
				delete(current, "name")
			},
			want: []string{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			current := map[string]Value{
				"tags":     []Value{"a", "b"},
				"settings": map[string]Value{"draft": true},
			}
			snapshot := CaptureSnapshot(attrs, current)
			test.mutate(current)

			got := ComputeDirty(attrs, current, snapshot)
			if !reflect.DeepEqual(got, test.want) {
				t.Fatalf("ComputeDirty() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestComputeDirtyInverseMutationReturnsClean(t *testing.T) {
	t.Parallel()

	attrs := trackedAttrs()
	current := map[string]Value{"tags": []Value{"a", "b"}}
	snapshot := CaptureSnapshot(attrs, current)

	current["tags"] = append(current["tags"].([]Value), "c")
	if dirty := ComputeDirty(attrs, current, snapshot); len(dirty) != 1 {
		t.Fatalf("expected one dirty attr after append, got %v", dirty)
	}

	tags := current["tags"].([]Value)
	current["tags"] = tags[:len(tags)-1]
	if dirty := ComputeDirty(attrs, current, snapshot); len(dirty) != 0 {
		t.Fatalf("expected clean after inverse mutation, got %v", dirty)
	}
}

func TestRevertPropertiesPreservesSequenceIdentity(t *testing.T) {
	t.Parallel()

	attrs := trackedAttrs()
	current := map[string]Value{
		"name": "post",
		"tags": []Value{"a", "b"},
	}
	snapshot := CaptureSnapshot(attrs, current)

	current["tags"] = append(current["tags"].([]Value), "c")
	current["name"] = "renamed"
	liveBefore := current["tags"].([]Value)

	RevertProperties(attrs, current, snapshot)

	if current["name"] != "post" {
		t.Fatalf("scalar not reverted: %v", current["name"])
	}
	reverted := current["tags"].([]Value)
	if len(reverted) != 2 || reverted[0] != "a" || reverted[1] != "b" {
		t.Fatalf("sequence not reverted: %v", reverted)
	}
	if &reverted[0] != &liveBefore[0] {
		t.Fatalf("revert must refill the live container in place")
	}
}

func TestRevertPropertiesDoesNotAliasSnapshot(t *testing.T) {
	t.Parallel()

	attrs := trackedAttrs()
	current := map[string]Value{"settings": map[string]Value{"draft": true}}
	snapshot := CaptureSnapshot(attrs, current)

	current["settings"] = map[string]Value{"draft": false}
	RevertProperties(attrs, current, snapshot)

	current["settings"].(map[string]Value)["draft"] = false
	if snapshot["settings"].(map[string]Value)["draft"] != true {
		t.Fatalf("revert handed out a reference into the snapshot")
	}
}
