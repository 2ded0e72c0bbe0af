package core

import (
	"sort"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/crmarques/restmodel/cache"
	"github.com/crmarques/restmodel/model"
	"github.com/crmarques/restmodel/resource"
	"github.com/crmarques/restmodel/transport"
)

// ModelContext bundles the configured transport, the optional response
// cache, and one model class per declared resource type.
type ModelContext struct {
	Transport transport.Transport
	Cache     *cache.ResponseCache

	log     logr.Logger
	classes map[string]*model.Class
}

type BootstrapConfig struct {
	ConfigPath string
	Logger     logr.Logger
	Registerer prometheus.Registerer
	Coalesce   bool
}

func (m *ModelContext) Class(typeKey string) (*model.Class, error) {
	class, found := m.classes[typeKey]
	if !found {
		return nil, notFoundError("resource type " + typeKey + " is not configured")
	}
	return class, nil
}

func (m *ModelContext) Descriptor(typeKey string) (*resource.Descriptor, error) {
	class, err := m.Class(typeKey)
	if err != nil {
		return nil, err
	}
	return class.Descriptor(), nil
}

func (m *ModelContext) TypeKeys() []string {
	keys := make([]string, 0, len(m.classes))
	for key := range m.classes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
