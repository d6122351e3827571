package kube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/rest"
)

// newTestClient builds a Client against an httptest stub server.
func newTestClient(t *testing.T, handler http.Handler, opts ...ClientOption) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(&rest.Config{Host: srv.URL}, opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, code int, body string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write([]byte(body)); err != nil {
		t.Errorf("write response: %v", err)
	}
}

func statusBody(code int, reason metav1.StatusReason) string {
	return fmt.Sprintf(`{"kind":"Status","apiVersion":"v1","status":"Failure","reason":%q,"code":%d}`, reason, code)
}

func TestClientStatusErrors(t *testing.T) {
	tests := []struct {
		name  string
		code  int
		body  string
		check func(error) bool
	}{
		{
			name:  "not found with status body",
			code:  http.StatusNotFound,
			body:  statusBody(404, metav1.StatusReasonNotFound),
			check: apierrors.IsNotFound,
		},
		{
			name:  "conflict with status body",
			code:  http.StatusConflict,
			body:  statusBody(409, metav1.StatusReasonConflict),
			check: apierrors.IsConflict,
		},
		{
			name:  "unauthorized with status body",
			code:  http.StatusUnauthorized,
			body:  statusBody(401, metav1.StatusReasonUnauthorized),
			check: apierrors.IsUnauthorized,
		},
		{
			name:  "not found without status body",
			code:  http.StatusNotFound,
			body:  `the server could not find the requested resource`,
			check: apierrors.IsNotFound,
		},
		{
			name:  "invalid payload",
			code:  http.StatusUnprocessableEntity,
			body:  statusBody(422, metav1.StatusReasonInvalid),
			check: apierrors.IsInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tt.code, tt.body)
			}))

			var out map[string]any
			err := c.requestInto(context.Background(), Request{
				Method:   http.MethodGet,
				Path:     "/api/v1/namespaces/default/widgets/x",
				Resource: "widgets",
				Name:     "x",
			}, &out)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.check(err) {
				t.Errorf("error %v did not match expected status class", err)
			}
		})
	}
}

func TestClientNetworkError(t *testing.T) {
	c, err := NewClient(&rest.Config{Host: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	var out map[string]any
	err = c.requestInto(context.Background(), Request{Method: http.MethodGet, Path: "/api/v1/nodes"}, &out)
	if err == nil {
		t.Fatal("expected transport error, got nil")
	}
	if apierrors.IsNotFound(err) || apierrors.IsUnauthorized(err) {
		t.Errorf("transport failure misreported as status error: %v", err)
	}
}

func TestClientDecodeError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, `not json at all`)
	}))

	var out map[string]any
	err := c.requestInto(context.Background(), Request{Method: http.MethodGet, Path: "/api/v1/nodes"}, &out)

	var decodeErr *ErrDecode
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *ErrDecode, got %v", err)
	}
}

func TestClientRejectsEmptyHost(t *testing.T) {
	if _, err := NewClient(&rest.Config{}); err == nil {
		t.Fatal("expected error for empty host")
	}
}
