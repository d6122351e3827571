package kube

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// DeleteResult is the outcome of a Delete or DeleteCollection call.
// The server either removed the target immediately and returned it, or
// returned a Status describing an outcome still in progress (graceful
// termination). Exactly one variant is set; the tag is decided at
// decode time from the response body's TypeMeta, never by the caller.
type DeleteResult[T any] struct {
	object *T
	status *metav1.Status
}

// Object returns the deleted object(s) when the server returned them.
func (r DeleteResult[T]) Object() (*T, bool) { return r.object, r.object != nil }

// Status returns the operation status when the server returned one
// instead of the object.
func (r DeleteResult[T]) Status() (*metav1.Status, bool) { return r.status, r.status != nil }

func deletedObject[T any](obj *T) DeleteResult[T] { return DeleteResult[T]{object: obj} }

func deletedStatus[T any](status *metav1.Status) DeleteResult[T] {
	return DeleteResult[T]{status: status}
}
