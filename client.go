package kube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/rest"
)

// Request describes a single API call: everything the transport needs
// to execute it, plus the resource/name hints used in error messages
// and metrics. Produced by Resource, consumed by Client.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string

	// Hints for error reporting; never affect the wire request.
	Resource string
	Name     string
}

// Client executes Requests against a single API server. It is safe for
// concurrent use and is shared by value-copied API handles; it holds no
// per-operation state.
type Client struct {
	base *url.URL
	http *http.Client
	log  *slog.Logger

	metrics *Metrics

	versionMu     sync.Mutex
	versionInfo   *serverVersion
	versionFlight singleflight.Group
}

// ClientOption configures optional Client behavior.
type ClientOption func(*Client)

// WithLogger sets the logger used for request-level debug logging.
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// WithMetrics enables request instrumentation on the given Metrics.
func WithMetrics(m *Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// NewClient builds a Client from a client-go rest.Config, reusing its
// TLS, auth, and proxy handling for the underlying transport.
func NewClient(cfg *rest.Config, opts ...ClientOption) (*Client, error) {
	host := cfg.Host
	if host == "" {
		return nil, fmt.Errorf("no host in rest config")
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}

	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse host %q: %w", cfg.Host, err)
	}

	rt, err := rest.TransportFor(cfg)
	if err != nil {
		return nil, fmt.Errorf("build transport: %w", err)
	}

	c := &Client{
		base: base,
		http: &http.Client{Transport: rt, Timeout: cfg.Timeout},
		log:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// do executes the request and maps failures: transport errors wrap the
// underlying cause, non-2xx responses become apimachinery status
// errors so apierrors.IsNotFound and friends work at call sites. The
// caller owns the response body on success.
func (c *Client) do(ctx context.Context, r Request) (*http.Response, error) {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + r.Path
	if r.Query != nil {
		u.RawQuery = r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s request for %s: %w", r.Method, r.Path, err)
	}

	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		contentType := r.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", r.Method, r.Path, err)
	}

	c.log.Debug("api request",
		"verb", r.Method,
		"path", r.Path,
		"code", resp.StatusCode,
		"duration", time.Since(start),
	)
	c.metrics.record(r.Method, resp.StatusCode, time.Since(start))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		return nil, c.statusError(r, resp)
	}

	return resp, nil
}

// statusError turns a non-2xx response into an apimachinery status
// error, preferring the server's own Status body when it sent one.
func (c *Client) statusError(r Request, resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		body = nil
	}

	var status metav1.Status
	if err := json.Unmarshal(body, &status); err == nil && status.Kind == "Status" {
		return &apierrors.StatusError{ErrStatus: status}
	}

	return apierrors.NewGenericServerResponse(
		resp.StatusCode,
		r.Method,
		schema.GroupResource{Resource: r.Resource},
		r.Name,
		string(body),
		0,
		true,
	)
}

// maxBodySize bounds how much of a response body is read into memory.
// Matches the apiserver's default object size limit.
const maxBodySize = 3 * 1024 * 1024

// requestInto executes r and JSON-decodes the response body into v.
func (c *Client) requestInto(ctx context.Context, r Request, v any) error {
	resp, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", r.Method, r.Path, err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return &ErrDecode{Verb: r.Method, Path: r.Path, Err: err}
	}

	return nil
}

// requestEither executes r and resolves the ambiguous success shape of
// deletion calls: the body is either the removed object(s), decoded
// into v, or a Status describing an in-progress outcome, returned
// non-nil. The discriminator is the body's own TypeMeta, never the
// HTTP status code. If the body decodes as neither, the Status shape
// is retried before a decode error is surfaced.
func (c *Client) requestEither(ctx context.Context, r Request, v any) (*metav1.Status, error) {
	resp, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", r.Method, r.Path, err)
	}

	var meta metav1.TypeMeta
	if err := json.Unmarshal(body, &meta); err == nil && meta.Kind == "Status" {
		var status metav1.Status
		if err := json.Unmarshal(body, &status); err == nil {
			return &status, nil
		}
	}

	if err := json.Unmarshal(body, v); err != nil {
		var status metav1.Status
		if serr := json.Unmarshal(body, &status); serr == nil && status.Kind == "Status" {
			return &status, nil
		}
		return nil, &ErrDecode{Verb: r.Method, Path: r.Path, Err: err}
	}

	return nil, nil
}

// requestStream executes r and hands the raw response body to the
// caller, who owns closing it.
func (c *Client) requestStream(ctx context.Context, r Request) (io.ReadCloser, error) {
	resp, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
