package core

import (
	"context"

	"github.com/crmarques/restmodel/model"
	"github.com/crmarques/restmodel/resource"
)

// All reads a collection, serving it from the response cache when possible
// and caching the remote payload otherwise.
func (m *ModelContext) All(ctx context.Context, typeKey string, parents map[string]resource.Value, overrides model.RequestOptions) ([]*model.Instance, error) {
	class, err := m.Class(typeKey)
	if err != nil {
		return nil, err
	}
	descriptor := class.Descriptor()

	path, err := resource.BuildPath(parents, nil, descriptor.Base, descriptor.Namespace)
	if err != nil {
		return nil, err
	}

	if m.Cache != nil {
		cached, found, err := m.Cache.GetResponse(ctx, descriptor, path)
		if err != nil {
			return nil, err
		}
		if found {
			m.log.V(1).Info("serving collection from cache", "type", typeKey, "path", path)
			collection, single, err := class.ToResult(cached, parents)
			if err != nil {
				return nil, err
			}
			if single != nil {
				return []*model.Instance{single}, nil
			}
			return collection, nil
		}
	}

	overrides.URL = path
	result, err := class.Ajax(ctx, overrides)
	if err != nil {
		return nil, err
	}

	if m.Cache != nil && result.Data != nil {
		if err := m.Cache.SetResponse(ctx, descriptor, path, result.Data); err != nil {
			return nil, err
		}
	}

	collection, single, err := class.ToResult(result.Data, parents)
	if err != nil {
		return nil, err
	}
	if single != nil {
		return []*model.Instance{single}, nil
	}
	return collection, nil
}

// Find reads one record, consulting the response cache before the remote.
func (m *ModelContext) Find(ctx context.Context, typeKey string, parents map[string]resource.Value, primaryKey resource.Value, overrides model.RequestOptions) (*model.Instance, error) {
	class, err := m.Class(typeKey)
	if err != nil {
		return nil, err
	}
	descriptor := class.Descriptor()

	if primaryKey == nil {
		return nil, validationError("find requires a primary key")
	}

	path, err := resource.BuildPath(parents, primaryKey, descriptor.Base, descriptor.Namespace)
	if err != nil {
		return nil, err
	}

	if m.Cache != nil {
		cached, found, err := m.Cache.GetResponse(ctx, descriptor, path)
		if err != nil {
			return nil, err
		}
		if found {
			m.log.V(1).Info("serving record from cache", "type", typeKey, "path", path)
			_, single, err := class.ToResult(cached, parents)
			if err != nil {
				return nil, err
			}
			if single != nil {
				return single, nil
			}
		}
	}

	instance, err := class.Find(ctx, parents, primaryKey, overrides)
	if err != nil {
		return nil, err
	}

	if m.Cache != nil {
		if err := m.Cache.SetResponse(ctx, descriptor, path, instance.Properties()); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// Save persists the instance and folds the saved attributes back into the
// cached record so later cached reads observe the write.
func (m *ModelContext) Save(ctx context.Context, instance *model.Instance, overrides model.RequestOptions) error {
	if instance == nil {
		return validationError("save requires an instance")
	}
	if err := instance.Save(ctx, overrides); err != nil {
		return err
	}

	if m.Cache != nil {
		descriptor := instance.Class().Descriptor()
		if primaryKey := instance.PrimaryKey(); primaryKey != nil {
			if err := m.Cache.UpdateRecord(ctx, descriptor, primaryKey, instance.Properties()); err != nil {
				return err
			}
		}
	}
	return nil
}

// Delete removes the remote record and tombstones its cache entry.
func (m *ModelContext) Delete(ctx context.Context, instance *model.Instance, overrides model.RequestOptions) error {
	if instance == nil {
		return validationError("delete requires an instance")
	}
	if err := instance.Delete(ctx, overrides); err != nil {
		return err
	}

	if m.Cache != nil {
		descriptor := instance.Class().Descriptor()
		if primaryKey := instance.PrimaryKey(); primaryKey != nil {
			if err := m.Cache.RemoveRecord(ctx, descriptor, primaryKey); err != nil {
				return err
			}
		}
	}
	return nil
}
