package kube

import (
	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
)

// Constructors for well-known kinds, pre-scoped to the group and
// version they are served under. Cluster-scoped kinds (nodes,
// namespaces) take no namespace; everything else defaults to the
// cluster-wide collection until scoped with Within.

func Pods(client *Client) API[corev1.Pod] {
	return NewAPI[corev1.Pod](client, NewResource("pods"))
}

func Services(client *Client) API[corev1.Service] {
	return NewAPI[corev1.Service](client, NewResource("services"))
}

func ConfigMaps(client *Client) API[corev1.ConfigMap] {
	return NewAPI[corev1.ConfigMap](client, NewResource("configmaps"))
}

func Secrets(client *Client) API[corev1.Secret] {
	return NewAPI[corev1.Secret](client, NewResource("secrets"))
}

func Events(client *Client) API[corev1.Event] {
	return NewAPI[corev1.Event](client, NewResource("events"))
}

func Nodes(client *Client) API[corev1.Node] {
	return NewAPI[corev1.Node](client, NewResource("nodes"))
}

func Namespaces(client *Client) API[corev1.Namespace] {
	return NewAPI[corev1.Namespace](client, NewResource("namespaces"))
}

func Deployments(client *Client) API[appsv1.Deployment] {
	return NewAPI[appsv1.Deployment](client, NewResource("deployments").Group("apps"))
}

func ReplicaSets(client *Client) API[appsv1.ReplicaSet] {
	return NewAPI[appsv1.ReplicaSet](client, NewResource("replicasets").Group("apps"))
}

func StatefulSets(client *Client) API[appsv1.StatefulSet] {
	return NewAPI[appsv1.StatefulSet](client, NewResource("statefulsets").Group("apps"))
}

func DaemonSets(client *Client) API[appsv1.DaemonSet] {
	return NewAPI[appsv1.DaemonSet](client, NewResource("daemonsets").Group("apps"))
}

func Jobs(client *Client) API[batchv1.Job] {
	return NewAPI[batchv1.Job](client, NewResource("jobs").Group("batch"))
}

func CronJobs(client *Client) API[batchv1.CronJob] {
	return NewAPI[batchv1.CronJob](client, NewResource("cronjobs").Group("batch"))
}
