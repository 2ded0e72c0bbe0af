package model

import (
	"context"
	"net/http"
	"strings"

	"github.com/crmarques/restmodel/resource"
)

// Fetch issues a GET for the instance's resolved path (item path when
// persisted, collection path otherwise), applies the returned attributes,
// and re-captures the snapshot. Path resolution failures are raised before
// any request is issued.
func (ins *Instance) Fetch(ctx context.Context, overrides RequestOptions) error {
	path, err := ins.Path()
	if err != nil {
		return err
	}

	result, err := ins.perform(ctx, kindFetch, mergeRequestOptions(RequestOptions{
		URL:    path,
		Method: http.MethodGet,
	}, overrides))
	if err != nil {
		return err
	}

	ins.applyPayload(result.Data)
	return nil
}

// Save serializes the declared attributes and persists the instance: POST
// to the collection path when new, the descriptor's update verb to the
// item path otherwise. On success the response attributes are applied and
// the snapshot replaced, leaving the instance clean.
func (ins *Instance) Save(ctx context.Context, overrides RequestOptions) error {
	descriptor := ins.class.descriptor

	var defaults RequestOptions
	if ins.IsNew() {
		path, err := resource.BuildPath(ins.Parents(), nil, descriptor.Base, descriptor.Namespace)
		if err != nil {
			return err
		}
		defaults = RequestOptions{URL: path, Method: http.MethodPost}
	} else {
		path, err := ins.Path()
		if err != nil {
			return err
		}
		defaults = RequestOptions{URL: path, Method: descriptor.UpdateVerb()}
	}
	defaults.Body = ins.serializeAttrs()

	result, err := ins.perform(ctx, kindSave, mergeRequestOptions(defaults, overrides))
	if err != nil {
		return err
	}

	ins.applyPayload(result.Data)
	return nil
}

// Delete issues a DELETE for the instance path. Local attributes are left
// untouched on success.
func (ins *Instance) Delete(ctx context.Context, overrides RequestOptions) error {
	path, err := ins.Path()
	if err != nil {
		return err
	}

	_, err = ins.perform(ctx, kindDelete, mergeRequestOptions(RequestOptions{
		URL:    path,
		Method: http.MethodDelete,
	}, overrides))
	return err
}

// perform wraps one request in the in-flight accounting for its kind. The
// release runs on every exit path, so a transport failure can never leave
// the instance stuck in flight.
func (ins *Instance) perform(ctx context.Context, kind requestKind, opts RequestOptions) (Result, error) {
	release := ins.flags.acquire(kind)
	defer release()

	settle := ins.class.metrics.begin(ins.class.descriptor.TypeKey, kind)

	result, err := ins.dispatch(ctx, kind, opts)
	settle(err)
	return result, err
}

func (ins *Instance) dispatch(ctx context.Context, kind requestKind, opts RequestOptions) (Result, error) {
	class := ins.class
	if !class.coalesce {
		return class.Ajax(ctx, opts)
	}

	shared, err, _ := class.flight.Do(flightKey(kind, opts), func() (any, error) {
		return class.Ajax(ctx, opts)
	})
	if err != nil {
		return Result{}, err
	}
	result, _ := shared.(Result)
	return result, nil
}

// flightKey identifies an operation for coalescing: kind, verb, URL, and
// body must all match for two calls to share one request.
func flightKey(kind requestKind, opts RequestOptions) string {
	body, err := encodeRequestBody(opts.Body)
	if err != nil {
		body = nil
	}
	return strings.Join([]string{string(kind), opts.Method, opts.URL, string(body)}, "\x00")
}
