package core

import (
	"github.com/go-logr/logr"

	"github.com/crmarques/restmodel/cache"
	"github.com/crmarques/restmodel/config"
	"github.com/crmarques/restmodel/faults"
	configfile "github.com/crmarques/restmodel/internal/providers/config/file"
	fsstore "github.com/crmarques/restmodel/internal/providers/store/fs"
	memorystore "github.com/crmarques/restmodel/internal/providers/store/memory"
	sqlitestore "github.com/crmarques/restmodel/internal/providers/store/sqlite"
	httptransport "github.com/crmarques/restmodel/internal/providers/transport/http"
	"github.com/crmarques/restmodel/model"
)

// NewModelContext loads the configuration file and wires the default
// providers: the HTTP transport, the configured cache store, and one class
// per declared resource.
func NewModelContext(opts BootstrapConfig) (*ModelContext, error) {
	loaded, err := configfile.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	return NewModelContextFromConfig(loaded, opts)
}

func NewModelContextFromConfig(loaded *config.Config, opts BootstrapConfig) (*ModelContext, error) {
	if loaded == nil {
		return nil, faults.NewTypedError(faults.ValidationError, "configuration must not be nil", nil)
	}

	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	performer, err := httptransport.NewClient(loaded.Endpoint, httptransport.WithLogger(log))
	if err != nil {
		return nil, err
	}

	responseCache, err := buildResponseCache(loaded.Cache)
	if err != nil {
		return nil, err
	}

	var metrics *model.Metrics
	if opts.Registerer != nil {
		metrics, err = model.NewMetrics(opts.Registerer)
		if err != nil {
			return nil, err
		}
	}

	classes := make(map[string]*model.Class, len(loaded.Resources))
	for _, resourceConfig := range loaded.Resources {
		classOptions := []model.ClassOption{model.WithLogger(log.WithName(resourceConfig.TypeKey))}

		filters, err := buildFilters(resourceConfig)
		if err != nil {
			return nil, err
		}
		if len(filters) > 0 {
			classOptions = append(classOptions, model.WithFilters(filters...))
		}
		if metrics != nil {
			classOptions = append(classOptions, model.WithMetrics(metrics))
		}
		if opts.Coalesce {
			classOptions = append(classOptions, model.WithCoalescing())
		}

		class, err := model.NewClass(resourceConfig.Descriptor(), performer, classOptions...)
		if err != nil {
			return nil, err
		}
		classes[resourceConfig.TypeKey] = class
	}

	return &ModelContext{
		Transport: performer,
		Cache:     responseCache,
		log:       log,
		classes:   classes,
	}, nil
}

func buildResponseCache(cacheConfig *config.Cache) (*cache.ResponseCache, error) {
	if cacheConfig == nil {
		return nil, nil
	}

	var store cache.Store
	var err error
	switch cacheConfig.Store {
	case config.CacheStoreMemory:
		store = memorystore.NewStore()
	case config.CacheStoreFS:
		store, err = fsstore.NewStore(cacheConfig.BaseDir)
	case config.CacheStoreSQLite:
		store, err = sqlitestore.NewStore(cacheConfig.Path)
	default:
		return nil, faults.NewTypedError(faults.ValidationError, "cache.store "+cacheConfig.Store+" is not supported", nil)
	}
	if err != nil {
		return nil, err
	}
	return cache.NewResponseCache(store)
}

func buildFilters(resourceConfig config.ResourceConfig) ([]model.CollectionFilter, error) {
	if len(resourceConfig.Filters) == 0 {
		return nil, nil
	}

	filters := make([]model.CollectionFilter, 0, len(resourceConfig.Filters))
	for _, expression := range resourceConfig.Filters {
		filter, err := model.JQFilter(expression)
		if err != nil {
			return nil, err
		}
		filters = append(filters, filter)
	}
	return filters, nil
}

func notFoundError(message string) error {
	return faults.NewTypedError(faults.NotFoundError, message, nil)
}

func validationError(message string) error {
	return faults.NewTypedError(faults.ValidationError, message, nil)
}
