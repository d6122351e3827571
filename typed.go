package kube

import (
	"context"
	"iter"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
)

// API binds a resource type K to the CRUD+watch operation set. A value
// pairs a request builder with a shared Client; handles are cheap to
// copy and hold no state beyond their scope, so deriving and discarding
// them is free. All operations decode and encode with the same K, so a
// handle for one kind can never yield objects of another.
type API[K any] struct {
	resource Resource
	client   *Client
}

// NewAPI binds K to an explicit Resource builder.
func NewAPI[K any](client *Client, resource Resource) API[K] {
	return API[K]{resource: resource, client: client}
}

// CustomResource binds K to a resource known only by its plural name,
// for kinds with no compile-time definition beyond their wire shape.
// Scope the result with Group and Version before use.
func CustomResource[K any](client *Client, plural string) API[K] {
	return API[K]{resource: NewResource(plural), client: client}
}

// Within scopes the handle to a namespace. Like all scoping calls it
// returns a new handle and the last call wins.
func (api API[K]) Within(namespace string) API[K] {
	api.resource = api.resource.Within(namespace)
	return api
}

// Group sets the handle's API group.
func (api API[K]) Group(group string) API[K] {
	api.resource = api.resource.Group(group)
	return api
}

// Version sets the handle's API version.
func (api API[K]) Version(version string) API[K] {
	api.resource = api.resource.Version(version)
	return api
}

// Get fetches a single named object. One round trip, no retry.
func (api API[K]) Get(ctx context.Context, name string) (*K, error) {
	req, err := api.resource.Get(name)
	if err != nil {
		return nil, err
	}

	var obj K
	if err := api.client.requestInto(ctx, req, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

// Create posts the payload to the collection and returns the persisted
// object. Fails with a Conflict status error when the name exists.
func (api API[K]) Create(ctx context.Context, opts metav1.CreateOptions, payload Payload) (*K, error) {
	body, err := payload.payloadBytes()
	if err != nil {
		return nil, err
	}

	req, err := api.resource.Create(opts, body)
	if err != nil {
		return nil, err
	}

	var obj K
	if err := api.client.requestInto(ctx, req, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

// Replace overwrites the named object wholesale. Fails with a Conflict
// status error on a stale resource version.
func (api API[K]) Replace(ctx context.Context, name string, opts metav1.UpdateOptions, payload Payload) (*K, error) {
	body, err := payload.payloadBytes()
	if err != nil {
		return nil, err
	}

	req, err := api.resource.Replace(name, opts, body)
	if err != nil {
		return nil, err
	}

	var obj K
	if err := api.client.requestInto(ctx, req, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

// Patch applies a raw patch to the named object. It accepts only
// pre-encoded bytes and the caller is responsible for patch-format
// correctness; kept for compatibility, not extended with typed
// variants.
func (api API[K]) Patch(ctx context.Context, name string, opts metav1.PatchOptions, pt types.PatchType, patch []byte) (*K, error) {
	req, err := api.resource.Patch(name, opts, pt, patch)
	if err != nil {
		return nil, err
	}

	var obj K
	if err := api.client.requestInto(ctx, req, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

// List fetches every matching object at the handle's scope plus the
// list metadata, whose resource version seeds a subsequent Watch.
func (api API[K]) List(ctx context.Context, opts metav1.ListOptions) (*ObjectList[K], error) {
	req, err := api.resource.List(opts)
	if err != nil {
		return nil, err
	}

	var list ObjectList[K]
	if err := api.client.requestInto(ctx, req, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Delete removes the named object. The result carries either the
// deleted object or the server's operation status; see DeleteResult.
func (api API[K]) Delete(ctx context.Context, name string, opts metav1.DeleteOptions) (DeleteResult[K], error) {
	req, err := api.resource.Delete(name, opts)
	if err != nil {
		return DeleteResult[K]{}, err
	}

	var obj K
	status, err := api.client.requestEither(ctx, req, &obj)
	if err != nil {
		return DeleteResult[K]{}, err
	}
	if status != nil {
		return deletedStatus[K](status), nil
	}
	return deletedObject(&obj), nil
}

// DeleteCollection removes every object matching opts, with the same
// either-object-or-status resolution as Delete applied to the
// aggregate response.
func (api API[K]) DeleteCollection(ctx context.Context, opts metav1.ListOptions) (DeleteResult[ObjectList[K]], error) {
	req, err := api.resource.DeleteCollection(opts)
	if err != nil {
		return DeleteResult[ObjectList[K]]{}, err
	}

	var list ObjectList[K]
	status, err := api.client.requestEither(ctx, req, &list)
	if err != nil {
		return DeleteResult[ObjectList[K]]{}, err
	}
	if status != nil {
		return deletedStatus[ObjectList[K]](status), nil
	}
	return deletedObject(&list), nil
}

// Watch opens a long-lived event feed for the collection, starting
// after resourceVersion (typically taken from a preceding List). The
// returned sequence is forward-only and non-restartable: it yields
// events strictly in arrival order, ends when the connection does, and
// releases the connection when the consumer stops pulling. Resuming
// after the stream ends means calling Watch again with the last
// observed resource version.
func (api API[K]) Watch(ctx context.Context, opts metav1.ListOptions, resourceVersion string) (iter.Seq[WatchEvent[K]], error) {
	req, err := api.resource.Watch(opts, resourceVersion)
	if err != nil {
		return nil, err
	}

	stream, err := api.client.requestStream(ctx, req)
	if err != nil {
		return nil, err
	}

	return watchEvents[K](stream, api.client.log), nil
}
