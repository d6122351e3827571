// Package kube is a typed client for declarative, resource-oriented
// HTTP APIs in the Kubernetes style. It binds an arbitrary resource
// type K to the full CRUD+watch operation set:
//
//	client, err := kube.NewClient(cfg)
//	...
//	pods := kube.Pods(client).Within("kube-system")
//	pod, err := pods.Get(ctx, "coredns-abc123")
//
// Resources that are not known at compile time beyond their wire shape
// are served by the custom-resource constructor:
//
//	foos := kube.CustomResource[Foo](client, "foos").Group("example.com").Version("v1")
//
// Watch returns a lazy, pull-driven event sequence; breaking out of the
// range releases the underlying connection:
//
//	events, err := pods.Watch(ctx, metav1.ListOptions{}, list.ResourceVersion())
//	for ev := range events {
//		...
//	}
//
// The client performs no automatic retries and no watch reconnection;
// callers that need resumption re-invoke Watch with the last observed
// resource version.
package kube
