package model

import (
	"sync"

	"github.com/crmarques/restmodel/resource"
)

// Instance is one materialized resource: a property mapping plus the
// snapshot and in-flight state the coordinator maintains for it. All
// derived values (primary key, dirty set, parents, path) are recomputed
// from the current properties on every access, never cached.
type Instance struct {
	class *Class

	mu       sync.Mutex
	props    map[string]resource.Value
	original map[string]resource.Value

	flags inFlightTracker
}

var _ resource.PrimaryKeyed = (*Instance)(nil)

func (ins *Instance) Class() *Class {
	return ins.class
}

// Get returns the live value of a property. Containers are returned by
// reference so callers can mutate them; the dirty tracker picks the
// mutation up on the next computation.
func (ins *Instance) Get(name string) resource.Value {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	return ins.props[name]
}

func (ins *Instance) Set(name string, value resource.Value) {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	ins.props[name] = value
}

// Properties returns a shallow copy of the property mapping.
func (ins *Instance) Properties() map[string]resource.Value {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	copied := make(map[string]resource.Value, len(ins.props))
	for key, value := range ins.props {
		copied[key] = value
	}
	return copied
}

// PrimaryKey is the first non-absent value among the declared primary key
// attributes, reflecting the current property values on every access.
func (ins *Instance) PrimaryKey() resource.Value {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	return ins.primaryKeyLocked()
}

func (ins *Instance) primaryKeyLocked() resource.Value {
	for _, name := range ins.class.descriptor.PrimaryKeys {
		if value := ins.props[name]; value != nil {
			return value
		}
	}
	return nil
}

func (ins *Instance) IsNew() bool {
	return ins.PrimaryKey() == nil
}

func (ins *Instance) IsPersisted() bool {
	return !ins.IsNew()
}

// OriginalProperties returns a deep copy of the snapshot taken at the last
// sync point.
func (ins *Instance) OriginalProperties() map[string]resource.Value {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	return resource.DeepCopyMapping(ins.original)
}

// DirtyProperties returns the declared attributes whose current value
// diverged from the last snapshot, in declaration order. A per-type Dirty
// hook fully replaces the default computation.
func (ins *Instance) DirtyProperties() []string {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	descriptor := ins.class.descriptor
	if descriptor.Dirty != nil {
		return descriptor.Dirty(ins.props, ins.original)
	}
	return resource.ComputeDirty(descriptor.Attrs, ins.props, ins.original)
}

func (ins *Instance) IsDirty() bool {
	return len(ins.DirtyProperties()) > 0
}

func (ins *Instance) IsClean() bool {
	return !ins.IsDirty()
}

// Parents maps each parent placeholder in the base template to the current
// value of the correspondingly named property. It is recomputed on every
// access because parent references may change.
func (ins *Instance) Parents() map[string]resource.Value {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	return ins.parentsLocked()
}

func (ins *Instance) parentsLocked() map[string]resource.Value {
	names := resource.ParentKeyNames(ins.class.descriptor.Base)
	parents := make(map[string]resource.Value, len(names))
	for _, name := range names {
		parents[name] = ins.props[name]
	}
	return parents
}

// Path resolves the instance's canonical resource path: the item path when
// the instance is persisted, the collection path otherwise.
func (ins *Instance) Path() (string, error) {
	ins.mu.Lock()
	parents := ins.parentsLocked()
	primaryKey := ins.primaryKeyLocked()
	ins.mu.Unlock()

	descriptor := ins.class.descriptor
	return resource.BuildPath(parents, primaryKey, descriptor.Base, descriptor.Namespace)
}

// Revert copies the snapshot values back onto the live instance. Sequence
// attributes keep their container identity so observers keyed on the
// container survive.
func (ins *Instance) Revert() {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	resource.RevertProperties(ins.class.descriptor.Attrs, ins.props, ins.original)
}

func (ins *Instance) IsFetching() bool {
	return ins.flags.count(kindFetch) > 0
}

func (ins *Instance) IsSaving() bool {
	return ins.flags.count(kindSave) > 0
}

func (ins *Instance) IsDeleting() bool {
	return ins.flags.count(kindDelete) > 0
}

// InFlight reports whether any request on this instance's behalf is
// outstanding.
func (ins *Instance) InFlight() bool {
	return ins.flags.total() > 0
}

func (ins *Instance) assignParents(parents map[string]resource.Value) {
	if len(parents) == 0 {
		return
	}
	ins.mu.Lock()
	defer ins.mu.Unlock()
	for name, reference := range parents {
		ins.props[name] = reference
	}
}

// applyPayload assigns response attributes onto the instance and replaces
// the snapshot wholesale. Derived values are methods here, so only plain
// properties ever arrive.
func (ins *Instance) applyPayload(data resource.Value) {
	props, ok := data.(map[string]resource.Value)

	ins.mu.Lock()
	defer ins.mu.Unlock()
	if ok {
		for key, value := range props {
			ins.props[key] = resource.DeepCopyValue(value)
		}
	}
	ins.original = resource.CaptureSnapshot(ins.class.descriptor.Attrs, ins.props)
}

// serializeAttrs builds the canonical save body: every declared attribute,
// marker-stripped, at its current value.
func (ins *Instance) serializeAttrs() map[string]resource.Value {
	ins.mu.Lock()
	defer ins.mu.Unlock()
	body := make(map[string]resource.Value, len(ins.class.descriptor.Attrs))
	for _, attr := range ins.class.descriptor.Attrs {
		body[attr.Name] = resource.DeepCopyValue(ins.props[attr.Name])
	}
	return body
}
