// Package cache persists resource responses in a pluggable key/value
// store. Collections are stored two-level: the ordered id list under the
// path key and one entry per id, so a record removed on its own tombstones
// out of every collection that referenced it.
package cache

import (
	"context"
	"encoding/json"

	"github.com/crmarques/restmodel/faults"
	"github.com/crmarques/restmodel/resource"
)

// Store is the persistent key/value collaborator. Values are JSON strings.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
}

// RecordKey addresses one cached record by type and id, replacing ad hoc
// string concatenation so ids containing separators cannot collide.
type RecordKey struct {
	TypeKey string
	ID      string
}

func NewRecordKey(descriptor *resource.Descriptor, primaryKey resource.Value) RecordKey {
	return RecordKey{
		TypeKey: descriptor.TypeKey,
		ID:      resource.KeyString(primaryKey),
	}
}

func (k RecordKey) storeKey() string {
	return "record/" + k.TypeKey + "/" + k.ID
}

func pathStoreKey(descriptor *resource.Descriptor, path string) string {
	return "path/" + descriptor.TypeKey + path
}

type ResponseCache struct {
	store Store
}

func NewResponseCache(store Store) (*ResponseCache, error) {
	if store == nil {
		return nil, faults.NewTypedError(faults.ValidationError, "response cache requires a store", nil)
	}
	return &ResponseCache{store: store}, nil
}

// GetResponse reads the cached response for a path. A collection entry
// resolves its ordered id list to the surviving per-id records, dropping
// any since removed; an item entry returns the single cached payload.
// The second return is false when nothing is cached for the path.
func (c *ResponseCache) GetResponse(ctx context.Context, descriptor *resource.Descriptor, path string) (resource.Value, bool, error) {
	encoded, found, err := c.store.Get(ctx, pathStoreKey(descriptor, path))
	if err != nil {
		return nil, false, cacheError("failed to read cached response", err)
	}
	if !found {
		return nil, false, nil
	}

	value, err := decodeEntry(encoded)
	if err != nil {
		return nil, false, err
	}

	ids, isCollection := value.([]resource.Value)
	if !isCollection {
		return value, true, nil
	}

	records := make([]resource.Value, 0, len(ids))
	for _, id := range ids {
		record, exists, err := c.getRecord(ctx, NewRecordKey(descriptor, id))
		if err != nil {
			return nil, false, err
		}
		if !exists {
			continue
		}
		records = append(records, record)
	}
	return records, true, nil
}

// SetResponse writes the symmetric shape: each collection element under its
// id key plus the ordered id list under the path key, or a single item
// under both its id key and the path key.
func (c *ResponseCache) SetResponse(ctx context.Context, descriptor *resource.Descriptor, path string, value resource.Value) error {
	normalized, err := resource.Normalize(value)
	if err != nil {
		return err
	}

	if elements, isCollection := normalized.([]resource.Value); isCollection {
		ids := make([]resource.Value, 0, len(elements))
		for _, element := range elements {
			primaryKey := elementPrimaryKey(descriptor, element)
			if primaryKey == nil {
				continue
			}
			if err := c.setEntry(ctx, NewRecordKey(descriptor, primaryKey).storeKey(), element); err != nil {
				return err
			}
			ids = append(ids, primaryKey)
		}
		return c.setEntry(ctx, pathStoreKey(descriptor, path), ids)
	}

	if primaryKey := elementPrimaryKey(descriptor, normalized); primaryKey != nil {
		if err := c.setEntry(ctx, NewRecordKey(descriptor, primaryKey).storeKey(), normalized); err != nil {
			return err
		}
	}
	return c.setEntry(ctx, pathStoreKey(descriptor, path), normalized)
}

// UpdateRecord merges attributes into the cached record for an instance.
func (c *ResponseCache) UpdateRecord(ctx context.Context, descriptor *resource.Descriptor, primaryKey resource.Value, newAttrs map[string]resource.Value) error {
	if primaryKey == nil {
		return faults.NewTypedError(faults.ValidationError, "cannot update a cache record without a primary key", nil)
	}

	key := NewRecordKey(descriptor, primaryKey)
	existing, _, err := c.getRecord(ctx, key)
	if err != nil {
		return err
	}

	merged, ok := existing.(map[string]resource.Value)
	if !ok {
		merged = make(map[string]resource.Value, len(newAttrs))
	}
	normalized, err := resource.Normalize(newAttrs)
	if err != nil {
		return err
	}
	for name, value := range normalized.(map[string]resource.Value) {
		merged[name] = value
	}
	return c.setEntry(ctx, key.storeKey(), merged)
}

// RemoveRecord tombstones the cached record for an instance; collections
// referencing it drop the entry on their next read.
func (c *ResponseCache) RemoveRecord(ctx context.Context, descriptor *resource.Descriptor, primaryKey resource.Value) error {
	if primaryKey == nil {
		return faults.NewTypedError(faults.ValidationError, "cannot remove a cache record without a primary key", nil)
	}
	if err := c.store.Remove(ctx, NewRecordKey(descriptor, primaryKey).storeKey()); err != nil {
		return cacheError("failed to remove cached record", err)
	}
	return nil
}

func (c *ResponseCache) getRecord(ctx context.Context, key RecordKey) (resource.Value, bool, error) {
	encoded, found, err := c.store.Get(ctx, key.storeKey())
	if err != nil {
		return nil, false, cacheError("failed to read cached record", err)
	}
	if !found {
		return nil, false, nil
	}
	value, err := decodeEntry(encoded)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (c *ResponseCache) setEntry(ctx context.Context, key string, value resource.Value) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return cacheError("failed to encode cache entry", err)
	}
	if err := c.store.Set(ctx, key, string(encoded)); err != nil {
		return cacheError("failed to write cache entry", err)
	}
	return nil
}

func elementPrimaryKey(descriptor *resource.Descriptor, element resource.Value) resource.Value {
	payload, ok := element.(map[string]resource.Value)
	if !ok {
		return nil
	}
	for _, name := range descriptor.PrimaryKeys {
		if value := payload[name]; value != nil {
			return value
		}
	}
	return nil
}

func decodeEntry(encoded string) (resource.Value, error) {
	var value any
	if err := json.Unmarshal([]byte(encoded), &value); err != nil {
		return nil, cacheError("cache entry is not valid JSON", err)
	}
	return resource.Normalize(value)
}

func cacheError(message string, cause error) error {
	return faults.NewTypedError(faults.CacheError, message, cause)
}
