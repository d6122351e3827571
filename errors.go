package kube

import (
	"fmt"
	"strings"
)

// ErrInvalidName indicates that a resource name or namespace failed
// validation before any request was sent.
type ErrInvalidName struct {
	Name    string
	Reasons []string
}

func (e *ErrInvalidName) Error() string {
	if len(e.Reasons) == 0 {
		return fmt.Sprintf("invalid resource name %q", e.Name)
	}
	return fmt.Sprintf("invalid resource name %q: %s", e.Name, strings.Join(e.Reasons, "; "))
}

// ErrSerialize indicates that a typed payload could not be encoded.
// Raised before any network call is attempted.
type ErrSerialize struct {
	Err error
}

func (e *ErrSerialize) Error() string {
	return fmt.Sprintf("encode payload: %v", e.Err)
}

func (e *ErrSerialize) Unwrap() error { return e.Err }

// ErrDecode indicates that a 2xx response body did not match any
// expected shape for the operation.
type ErrDecode struct {
	Verb string
	Path string
	Err  error
}

func (e *ErrDecode) Error() string {
	return fmt.Sprintf("decode %s %s response: %v", e.Verb, e.Path, e.Err)
}

func (e *ErrDecode) Unwrap() error { return e.Err }
