package resource

import "reflect"

// EqualSequences reports whether two sequences have equal length and equal
// elements at every index under shallow equality: primitives compare by
// value, container elements by identity. It is trivially true when both
// arguments are the same sequence.
func EqualSequences(a []Value, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) > 0 && &a[0] == &b[0] {
		return true
	}
	for idx := range a {
		if !shallowEqual(a[idx], b[idx]) {
			return false
		}
	}
	return true
}

// EqualMappings reports deep structural equality for plain key/value
// mappings: nested mappings recurse, nested sequences compare element-wise
// recursively, scalars fall back to shallow equality.
func EqualMappings(a map[string]Value, b map[string]Value) bool {
	if len(a) != len(b) {
		return false
	}
	for key, valueA := range a {
		valueB, exists := b[key]
		if !exists {
			return false
		}
		if !deepEqualValue(valueA, valueB) {
			return false
		}
	}
	return true
}

func deepEqualValue(a Value, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch typedA := a.(type) {
	case map[string]Value:
		typedB, ok := b.(map[string]Value)
		if !ok {
			return false
		}
		return EqualMappings(typedA, typedB)
	case []Value:
		typedB, ok := b.([]Value)
		if !ok {
			return false
		}
		if len(typedA) != len(typedB) {
			return false
		}
		for idx := range typedA {
			if !deepEqualValue(typedA[idx], typedB[idx]) {
				return false
			}
		}
		return true
	}

	return shallowEqual(a, b)
}

// shallowEqual treats two absent values as equal, compares containers by
// identity, and everything else by the language's default equality.
func shallowEqual(a Value, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	reflectA := reflect.ValueOf(a)
	reflectB := reflect.ValueOf(b)
	switch reflectA.Kind() {
	case reflect.Slice:
		if reflectB.Kind() != reflect.Slice {
			return false
		}
		return reflectA.Len() == reflectB.Len() &&
			(reflectA.Len() == 0 || reflectA.Pointer() == reflectB.Pointer())
	case reflect.Map:
		if reflectB.Kind() != reflect.Map {
			return false
		}
		return reflectA.Pointer() == reflectB.Pointer()
	case reflect.Func:
		return false
	}

	if !reflectA.Type().Comparable() || !reflectB.Type().Comparable() {
		return false
	}
	return a == b
}
