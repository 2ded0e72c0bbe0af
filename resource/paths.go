package resource

import (
	"strconv"
	"strings"

	"github.com/crmarques/restmodel/faults"
)

// PrimaryKeyed is satisfied by materialized instances so a parent reference
// can be either a raw key or a live instance.
type PrimaryKeyed interface {
	PrimaryKey() Value
}

// ParentKeyNames extracts the placeholder names appearing in a base path
// template, left to right. A placeholder is a full segment of the form
// ":name".
func ParentKeyNames(base string) []string {
	names := make([]string, 0, 2)
	for _, segment := range strings.Split(base, "/") {
		if strings.HasPrefix(segment, ":") && len(segment) > 1 {
			names = append(names, segment[1:])
		}
	}
	return names
}

// ResolvePrimaryKey resolves a parent reference to its primary key. A
// primitive reference denotes the key directly; an instance surfaces its
// current primary key.
func ResolvePrimaryKey(reference Value) Value {
	switch typed := reference.(type) {
	case nil:
		return nil
	case string, int, int64, float64:
		return typed
	case PrimaryKeyed:
		return typed.PrimaryKey()
	default:
		return nil
	}
}

// AssertParentsSatisfied fails on the first required parent whose reference
// does not resolve to a non-absent key.
func AssertParentsSatisfied(parents map[string]Value, required []string) error {
	for _, name := range required {
		if ResolvePrimaryKey(parents[name]) == nil {
			return faults.NewMissingParentKeyError(name)
		}
	}
	return nil
}

// BuildPath resolves the canonical path for a resource: "/"+base with every
// slash-anchored ":name" placeholder substituted by its parent's key, the
// primary key appended when present, and the namespace prepended when set.
// Substitution targets only placeholders immediately preceded by "/";
// colon-containing content elsewhere in the template is left untouched.
// No URL-encoding is performed.
func BuildPath(parents map[string]Value, primaryKey Value, base string, namespace string) (string, error) {
	if err := AssertParentsSatisfied(parents, ParentKeyNames(base)); err != nil {
		return "", err
	}

	resolved := "/" + strings.TrimPrefix(base, "/")
	for name, reference := range parents {
		key := ResolvePrimaryKey(reference)
		if key == nil {
			continue
		}
		resolved = strings.ReplaceAll(resolved, "/:"+name, "/"+KeyString(key))
	}

	if primaryKey != nil {
		resolved = resolved + "/" + KeyString(primaryKey)
	}
	if namespace != "" {
		resolved = "/" + strings.Trim(namespace, "/") + resolved
	}
	return resolved, nil
}

// KeyString renders a primary key for use in a path segment.
func KeyString(key Value) string {
	switch typed := key.(type) {
	case string:
		return typed
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return strings.TrimSpace(stringify(typed))
	}
}

func stringify(value Value) string {
	if keyed, ok := value.(PrimaryKeyed); ok {
		return KeyString(keyed.PrimaryKey())
	}
	if stringer, ok := value.(interface{ String() string }); ok {
		return stringer.String()
	}
	return ""
}
