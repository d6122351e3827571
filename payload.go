package kube

import "encoding/json"

// Payload normalizes write-operation input into a transmittable body.
// It is a closed capability with exactly two variants: Raw bytes the
// caller encoded out-of-band, and a typed Object encoded by the
// library. Resolution happens before any request is built, so an
// unencodable object never reaches the network.
type Payload interface {
	payloadBytes() ([]byte, error)
}

type rawPayload []byte

func (p rawPayload) payloadBytes() ([]byte, error) { return p, nil }

// Raw wraps a pre-encoded body. It is passed through unchanged; the
// caller is responsible for its correctness.
func Raw(body []byte) Payload { return rawPayload(body) }

type objectPayload[K any] struct {
	obj *K
}

func (p objectPayload[K]) payloadBytes() ([]byte, error) {
	body, err := json.Marshal(p.obj)
	if err != nil {
		return nil, &ErrSerialize{Err: err}
	}
	return body, nil
}

// Object wraps a typed object for JSON encoding by the library.
func Object[K any](obj *K) Payload { return objectPayload[K]{obj: obj} }
