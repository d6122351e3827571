package kube

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/validation"
)

// Resource builds Requests for one resource kind at one scope. The
// zero value is not usable; start from NewResource and derive scoped
// copies with Within, Group, and Version. All methods are value
// receivers, so a Resource is never mutated in place: scoping calls
// return a new value and the last call wins.
type Resource struct {
	group     string
	version   string
	resource  string
	namespace string
}

// NewResource returns a builder for the given resource plural in the
// legacy core group at version v1.
func NewResource(plural string) Resource {
	return Resource{
		version:  "v1",
		resource: plural,
	}
}

// Within scopes the builder to a namespace.
func (r Resource) Within(namespace string) Resource {
	r.namespace = namespace
	return r
}

// Group sets the API group. The empty string selects the legacy core
// group served under /api.
func (r Resource) Group(group string) Resource {
	r.group = group
	return r
}

// Version sets the API version.
func (r Resource) Version(version string) Resource {
	r.version = version
	return r
}

// collectionPath is the URL path of the resource collection at the
// configured scope, e.g. /apis/apps/v1/namespaces/ns/deployments.
func (r Resource) collectionPath() string {
	parts := make([]string, 0, 6)
	if r.group == "" {
		parts = append(parts, "api")
	} else {
		parts = append(parts, "apis", r.group)
	}
	parts = append(parts, r.version)
	if r.namespace != "" {
		parts = append(parts, "namespaces", r.namespace)
	}
	parts = append(parts, r.resource)
	return "/" + strings.Join(parts, "/")
}

// checkName rejects names that cannot appear as a path segment before
// any request is built.
func (r Resource) checkName(name string) error {
	if reasons := validation.IsDNS1123Subdomain(name); len(reasons) > 0 {
		return &ErrInvalidName{Name: name, Reasons: reasons}
	}
	return nil
}

// Get builds a read of a single named object.
func (r Resource) Get(name string) (Request, error) {
	if err := r.checkName(name); err != nil {
		return Request{}, err
	}
	return Request{
		Method:   http.MethodGet,
		Path:     r.collectionPath() + "/" + name,
		Resource: r.resource,
		Name:     name,
	}, nil
}

// Create builds a POST of body to the collection.
func (r Resource) Create(opts metav1.CreateOptions, body []byte) (Request, error) {
	return Request{
		Method:   http.MethodPost,
		Path:     r.collectionPath(),
		Query:    writeQuery(opts.DryRun, opts.FieldManager, opts.FieldValidation),
		Body:     body,
		Resource: r.resource,
	}, nil
}

// Replace builds a full-object PUT of body over the named object.
func (r Resource) Replace(name string, opts metav1.UpdateOptions, body []byte) (Request, error) {
	if err := r.checkName(name); err != nil {
		return Request{}, err
	}
	return Request{
		Method:   http.MethodPut,
		Path:     r.collectionPath() + "/" + name,
		Query:    writeQuery(opts.DryRun, opts.FieldManager, opts.FieldValidation),
		Body:     body,
		Resource: r.resource,
		Name:     name,
	}, nil
}

// Patch builds a PATCH of the named object. The patch content type
// decides how the server merges it.
func (r Resource) Patch(name string, opts metav1.PatchOptions, pt types.PatchType, patch []byte) (Request, error) {
	if err := r.checkName(name); err != nil {
		return Request{}, err
	}

	q := writeQuery(opts.DryRun, opts.FieldManager, opts.FieldValidation)
	if opts.Force != nil {
		q = setQuery(q, "force", strconv.FormatBool(*opts.Force))
	}

	return Request{
		Method:      http.MethodPatch,
		Path:        r.collectionPath() + "/" + name,
		Query:       q,
		Body:        patch,
		ContentType: string(pt),
		Resource:    r.resource,
		Name:        name,
	}, nil
}

// List builds a read of the collection.
func (r Resource) List(opts metav1.ListOptions) (Request, error) {
	return Request{
		Method:   http.MethodGet,
		Path:     r.collectionPath(),
		Query:    listQuery(opts),
		Resource: r.resource,
	}, nil
}

// Delete builds a DELETE of the named object.
func (r Resource) Delete(name string, opts metav1.DeleteOptions) (Request, error) {
	if err := r.checkName(name); err != nil {
		return Request{}, err
	}
	return Request{
		Method:   http.MethodDelete,
		Path:     r.collectionPath() + "/" + name,
		Query:    deleteQuery(opts),
		Resource: r.resource,
		Name:     name,
	}, nil
}

// DeleteCollection builds a DELETE of every object matching opts.
func (r Resource) DeleteCollection(opts metav1.ListOptions) (Request, error) {
	return Request{
		Method:   http.MethodDelete,
		Path:     r.collectionPath(),
		Query:    listQuery(opts),
		Resource: r.resource,
	}, nil
}

// Watch builds a watch of the collection starting at resourceVersion.
func (r Resource) Watch(opts metav1.ListOptions, resourceVersion string) (Request, error) {
	q := listQuery(opts)
	q = setQuery(q, "watch", "true")
	if resourceVersion != "" {
		q = setQuery(q, "resourceVersion", resourceVersion)
	}
	if opts.AllowWatchBookmarks {
		q = setQuery(q, "allowWatchBookmarks", "true")
	}
	return Request{
		Method:   http.MethodGet,
		Path:     r.collectionPath(),
		Query:    q,
		Resource: r.resource,
	}, nil
}

func setQuery(q url.Values, key, value string) url.Values {
	if q == nil {
		q = url.Values{}
	}
	q.Set(key, value)
	return q
}

func writeQuery(dryRun []string, fieldManager, fieldValidation string) url.Values {
	var q url.Values
	for _, d := range dryRun {
		if q == nil {
			q = url.Values{}
		}
		q.Add("dryRun", d)
	}
	if fieldManager != "" {
		q = setQuery(q, "fieldManager", fieldManager)
	}
	if fieldValidation != "" {
		q = setQuery(q, "fieldValidation", fieldValidation)
	}
	return q
}

func listQuery(opts metav1.ListOptions) url.Values {
	var q url.Values
	if opts.LabelSelector != "" {
		q = setQuery(q, "labelSelector", opts.LabelSelector)
	}
	if opts.FieldSelector != "" {
		q = setQuery(q, "fieldSelector", opts.FieldSelector)
	}
	if opts.Limit > 0 {
		q = setQuery(q, "limit", strconv.FormatInt(opts.Limit, 10))
	}
	if opts.Continue != "" {
		q = setQuery(q, "continue", opts.Continue)
	}
	if opts.TimeoutSeconds != nil {
		q = setQuery(q, "timeoutSeconds", strconv.FormatInt(*opts.TimeoutSeconds, 10))
	}
	return q
}

func deleteQuery(opts metav1.DeleteOptions) url.Values {
	var q url.Values
	if opts.GracePeriodSeconds != nil {
		q = setQuery(q, "gracePeriodSeconds", strconv.FormatInt(*opts.GracePeriodSeconds, 10))
	}
	if opts.PropagationPolicy != nil {
		q = setQuery(q, "propagationPolicy", string(*opts.PropagationPolicy))
	}
	for _, d := range opts.DryRun {
		if q == nil {
			q = url.Values{}
		}
		q.Add("dryRun", d)
	}
	return q
}
