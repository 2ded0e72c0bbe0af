package model

import (
	"context"
	"net/http"

	"github.com/go-logr/logr"
	"golang.org/x/sync/singleflight"

	"github.com/crmarques/restmodel/resource"
	"github.com/crmarques/restmodel/transport"
)

const jsonMediaType = "application/json"

// Class binds a resource descriptor to a transport and coordinates every
// request issued for instances of the type.
type Class struct {
	descriptor *resource.Descriptor
	transport  transport.Transport
	filters    []CollectionFilter
	log        logr.Logger
	metrics    *Metrics
	coalesce   bool
	flight     singleflight.Group
}

type ClassOption func(*Class)

func WithLogger(log logr.Logger) ClassOption {
	return func(c *Class) {
		if c == nil {
			return
		}
		c.log = log
	}
}

// WithFilters declares the collection filters applied, in order, to every
// materialized collection.
func WithFilters(filters ...CollectionFilter) ClassOption {
	return func(c *Class) {
		if c == nil {
			return
		}
		c.filters = append(c.filters, filters...)
	}
}

func WithMetrics(metrics *Metrics) ClassOption {
	return func(c *Class) {
		if c == nil {
			return
		}
		c.metrics = metrics
	}
}

// WithCoalescing collapses identical concurrent operations (same kind,
// verb, URL, and body) into a single underlying request whose settled
// result is shared by every caller. Without it, overlapping identical
// requests run independently with independently tracked completion.
func WithCoalescing() ClassOption {
	return func(c *Class) {
		if c == nil {
			return
		}
		c.coalesce = true
	}
}

func NewClass(descriptor *resource.Descriptor, performer transport.Transport, opts ...ClassOption) (*Class, error) {
	if err := descriptor.Validate(); err != nil {
		return nil, err
	}
	if performer == nil {
		return nil, validationError("class requires a transport", nil)
	}

	class := &Class{
		descriptor: descriptor,
		transport:  performer,
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		opt(class)
	}
	return class, nil
}

func (c *Class) Descriptor() *resource.Descriptor {
	return c.descriptor
}

// New constructs an unsaved instance from initial property values and
// captures its first snapshot: a freshly constructed instance is clean.
func (c *Class) New(props map[string]resource.Value) *Instance {
	instance := &Instance{
		class: c,
		props: resource.DeepCopyMapping(props),
	}
	if instance.props == nil {
		instance.props = make(map[string]resource.Value)
	}
	instance.original = resource.CaptureSnapshot(c.descriptor.Attrs, instance.props)
	return instance
}

// Result is a settled, deserialized response.
type Result struct {
	Data   resource.Value
	Status int
}

// Ajax is the lowest-level entry point: it applies the default verb and
// JSON media types, merges caller overrides on top, issues the request,
// and deserializes the JSON body through the class deserialize hook
// (per element for array payloads). Failures surface as clean typed
// errors, never retried.
func (c *Class) Ajax(ctx context.Context, opts RequestOptions) (Result, error) {
	merged := mergeRequestOptions(RequestOptions{
		Method:      http.MethodGet,
		ContentType: jsonMediaType,
		Accept:      jsonMediaType,
	}, opts)

	body, err := encodeRequestBody(merged.Body)
	if err != nil {
		return Result{}, err
	}

	spec := transport.RequestSpec{
		Method:      merged.Method,
		URL:         merged.URL,
		Body:        body,
		ContentType: merged.ContentType,
		Accept:      merged.Accept,
		Headers:     merged.Headers,
		Query:       merged.Query,
	}

	c.log.V(1).Info("performing request", "type", c.descriptor.TypeKey, "method", spec.Method, "url", spec.URL)

	response, err := c.transport.Perform(ctx, spec)
	if err != nil {
		return Result{}, cleanRejection(err)
	}

	value, err := decodeJSONResponse(response.Body)
	if err != nil {
		return Result{}, err
	}
	return Result{Data: c.deserializePayload(value), Status: response.Status}, nil
}

// All resolves the collection path for the given parent references, issues
// a GET, and materializes the filtered collection. Parent values are
// attached to every created instance.
func (c *Class) All(ctx context.Context, parents map[string]resource.Value, overrides RequestOptions) ([]*Instance, error) {
	path, err := resource.BuildPath(parents, nil, c.descriptor.Base, c.descriptor.Namespace)
	if err != nil {
		return nil, err
	}

	result, err := c.Ajax(ctx, mergeRequestOptions(RequestOptions{URL: path, Method: http.MethodGet}, overrides))
	if err != nil {
		return nil, err
	}

	collection, single, err := c.ToResult(result.Data, parents)
	if err != nil {
		return nil, err
	}
	if single != nil {
		return []*Instance{single}, nil
	}
	return collection, nil
}

// Find resolves the item path for the primary key, issues a GET, and
// materializes a single instance.
func (c *Class) Find(ctx context.Context, parents map[string]resource.Value, primaryKey resource.Value, overrides RequestOptions) (*Instance, error) {
	if primaryKey == nil {
		return nil, validationError("find requires a primary key", nil)
	}

	path, err := resource.BuildPath(parents, primaryKey, c.descriptor.Base, c.descriptor.Namespace)
	if err != nil {
		return nil, err
	}

	result, err := c.Ajax(ctx, mergeRequestOptions(RequestOptions{URL: path, Method: http.MethodGet}, overrides))
	if err != nil {
		return nil, err
	}

	collection, single, err := c.ToResult(result.Data, parents)
	if err != nil {
		return nil, err
	}
	if single != nil {
		return single, nil
	}
	if len(collection) > 0 {
		return collection[0], nil
	}
	return nil, notFoundError("resource "+c.descriptor.TypeKey+" not found at "+path, nil)
}

// ToResult materializes a deserialized response payload. An array payload
// produces one instance per element with the declared filters applied in
// order; any other non-nil payload produces a single instance. Parent
// references are assigned onto every created instance.
func (c *Class) ToResult(data resource.Value, parents map[string]resource.Value) ([]*Instance, *Instance, error) {
	switch typed := data.(type) {
	case nil:
		return nil, nil, nil
	case []resource.Value:
		collection := make([]*Instance, 0, len(typed))
		for _, element := range typed {
			instance, err := c.materialize(element, parents)
			if err != nil {
				return nil, nil, err
			}
			collection = append(collection, instance)
		}
		for _, filter := range c.filters {
			collection = filter(collection)
		}
		return collection, nil, nil
	default:
		instance, err := c.materialize(typed, parents)
		if err != nil {
			return nil, nil, err
		}
		return nil, instance, nil
	}
}

func (c *Class) materialize(element resource.Value, parents map[string]resource.Value) (*Instance, error) {
	props, ok := element.(map[string]resource.Value)
	if !ok {
		return nil, validationError("response element is not a resource payload", nil)
	}

	instance := c.New(props)
	instance.assignParents(parents)
	return instance, nil
}

func (c *Class) deserializePayload(value resource.Value) resource.Value {
	if c.descriptor.Deserialize == nil || value == nil {
		return value
	}
	if elements, ok := value.([]resource.Value); ok {
		deserialized := make([]resource.Value, len(elements))
		for idx, element := range elements {
			deserialized[idx] = c.descriptor.Deserialize(element)
		}
		return deserialized
	}
	return c.descriptor.Deserialize(value)
}
