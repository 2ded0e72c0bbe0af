package resource

// CaptureSnapshot deep-copies the current value of every declared attribute
// into a fresh mapping, in declaration order. The result never aliases a
// live container: mutating the instance afterwards cannot alter it.
func CaptureSnapshot(attrs []Attr, current map[string]Value) map[string]Value {
	snapshot := make(map[string]Value, len(attrs))
	for _, attr := range attrs {
		snapshot[attr.Name] = DeepCopyValue(current[attr.Name])
	}
	return snapshot
}

// ComputeDirty returns the names of the declared attributes whose current
// value diverged from the snapshot, in declaration order. Sequence
// attributes compare element-wise, mapping values structurally, and
// everything else shallowly with two absent values counting as equal.
func ComputeDirty(attrs []Attr, current map[string]Value, snapshot map[string]Value) []string {
	dirty := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		if attrDiverged(attr, current[attr.Name], snapshot[attr.Name]) {
			dirty = append(dirty, attr.Name)
		}
	}
	return dirty
}

func attrDiverged(attr Attr, currentValue Value, snapshotValue Value) bool {
	if attr.Sequence {
		return !EqualSequences(asSequence(currentValue), asSequence(snapshotValue))
	}
	if currentMap, ok := currentValue.(map[string]Value); ok {
		snapshotMap, ok := snapshotValue.(map[string]Value)
		return !ok || !EqualMappings(currentMap, snapshotMap)
	}
	return !shallowEqual(currentValue, snapshotValue)
}

// RevertProperties copies snapshot values back onto the live property
// mapping. Sequence attributes are cleared and refilled in place so the
// container identity survives for anything observing it; everything else
// is assigned a fresh deep copy.
func RevertProperties(attrs []Attr, current map[string]Value, snapshot map[string]Value) {
	for _, attr := range attrs {
		snapshotValue := snapshot[attr.Name]
		if !attr.Sequence {
			current[attr.Name] = DeepCopyValue(snapshotValue)
			continue
		}

		live := asSequence(current[attr.Name])
		restored := DeepCopySequence(asSequence(snapshotValue))
		if live == nil {
			current[attr.Name] = restored
			continue
		}
		refilled := append(live[:0], restored...)
		current[attr.Name] = refilled
	}
}

func asSequence(value Value) []Value {
	if value == nil {
		return nil
	}
	typed, _ := value.([]Value)
	return typed
}
