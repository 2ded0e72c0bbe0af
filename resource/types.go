package resource

import (
	"strings"

	"github.com/crmarques/restmodel/faults"
)

type Value = any

// SequenceMarker suffixes an attribute name to declare that its value is an
// ordered sequence compared element-wise rather than structurally.
const SequenceMarker = "[]"

// Attr is one tracked attribute of a resource type. The marker-stripped
// name is the property name on instances and in snapshots.
type Attr struct {
	Name     string
	Sequence bool
}

// ParseAttrs turns declared attribute names (optionally suffixed with
// SequenceMarker) into attribute descriptors, preserving declaration order.
func ParseAttrs(names ...string) []Attr {
	attrs := make([]Attr, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if strings.HasSuffix(trimmed, SequenceMarker) {
			attrs = append(attrs, Attr{
				Name:     strings.TrimSuffix(trimmed, SequenceMarker),
				Sequence: true,
			})
			continue
		}
		attrs = append(attrs, Attr{Name: trimmed})
	}
	return attrs
}

// Descriptor is the static, per-type configuration consumed by the dirty
// tracker, the path builder, and the request coordinator. Variant behavior
// is expressed as optional hooks rather than subclassing.
type Descriptor struct {
	// TypeKey namespaces cache entries and metrics for this type.
	TypeKey string

	// Base is the path template. Segments of the form ":name" are parent
	// placeholders bound by a parent-reference mapping key "name".
	Base string

	// Namespace, when set, is prepended to every resolved path.
	Namespace string

	// PrimaryKeys lists candidate identifying attribute names in priority
	// order. The first attribute holding a non-absent value identifies the
	// instance.
	PrimaryKeys []string

	// Attrs lists the attributes participating in dirty tracking and save
	// serialization, in declaration order.
	Attrs []Attr

	// UpdateMethod overrides the verb used to save a persisted instance.
	// Empty means PATCH.
	UpdateMethod string

	// Deserialize, when set, transforms each decoded response payload
	// (per element for array payloads) before materialization.
	Deserialize func(Value) Value

	// Dirty, when set, fully replaces the default dirty computation. It
	// receives the current property values and the snapshot and returns
	// the names of the attributes that diverged.
	Dirty func(current map[string]Value, snapshot map[string]Value) []string
}

func (d *Descriptor) Validate() error {
	if d == nil {
		return faults.NewTypedError(faults.ValidationError, "resource descriptor must not be nil", nil)
	}
	if strings.TrimSpace(d.TypeKey) == "" {
		return faults.NewTypedError(faults.ValidationError, "resource descriptor requires a type key", nil)
	}
	if strings.TrimSpace(d.Base) == "" {
		return faults.NewTypedError(faults.ValidationError, "resource descriptor requires a base path template", nil)
	}
	if len(d.PrimaryKeys) == 0 {
		return faults.NewTypedError(faults.ValidationError, "resource descriptor requires at least one primary key attribute", nil)
	}
	seen := make(map[string]struct{}, len(d.Attrs))
	for _, attr := range d.Attrs {
		if strings.TrimSpace(attr.Name) == "" {
			return faults.NewTypedError(faults.ValidationError, "resource descriptor attribute name must not be empty", nil)
		}
		if _, duplicate := seen[attr.Name]; duplicate {
			return faults.NewTypedError(faults.ValidationError, "resource descriptor attribute "+attr.Name+" declared twice", nil)
		}
		seen[attr.Name] = struct{}{}
	}
	return nil
}

// AttrNames returns the marker-stripped attribute names in declaration
// order.
func (d *Descriptor) AttrNames() []string {
	names := make([]string, len(d.Attrs))
	for idx, attr := range d.Attrs {
		names[idx] = attr.Name
	}
	return names
}

// UpdateVerb is the verb used to save an already persisted instance.
func (d *Descriptor) UpdateVerb() string {
	if strings.TrimSpace(d.UpdateMethod) != "" {
		return strings.ToUpper(strings.TrimSpace(d.UpdateMethod))
	}
	return "PATCH"
}
