package resource

// DeepCopyValue copies sequences and mappings recursively and passes
// scalars through by value. Snapshots built from the result share no
// containers with the input.
func DeepCopyValue(value Value) Value {
	switch typed := value.(type) {
	case map[string]Value:
		return DeepCopyMapping(typed)
	case []Value:
		return DeepCopySequence(typed)
	default:
		return typed
	}
}

func DeepCopySequence(src []Value) []Value {
	if src == nil {
		return nil
	}
	dst := make([]Value, len(src))
	for idx, item := range src {
		dst[idx] = DeepCopyValue(item)
	}
	return dst
}

func DeepCopyMapping(src map[string]Value) map[string]Value {
	if src == nil {
		return nil
	}
	dst := make(map[string]Value, len(src))
	for key, item := range src {
		dst[key] = DeepCopyValue(item)
	}
	return dst
}
