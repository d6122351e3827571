// Package config resolves client configuration for kube-go. Inside a
// cluster the mounted service-account credentials are used; outside,
// the standard kubeconfig loading rules apply (KUBECONFIG, then the
// default home path), with optional explicit path and context
// overrides.
package config

import (
	"log/slog"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Options narrows configuration resolution. The zero value selects
// in-cluster config when available and the default kubeconfig
// otherwise.
type Options struct {
	// Kubeconfig is an explicit kubeconfig path. When set, in-cluster
	// resolution is skipped.
	Kubeconfig string
	// Context overrides the kubeconfig's current context.
	Context string
}

// Load resolves a rest.Config per the options.
func Load(opts Options) (*rest.Config, error) {
	if opts.Kubeconfig == "" && opts.Context == "" {
		if cfg, err := rest.InClusterConfig(); err == nil {
			return cfg, nil
		}
		slog.Debug("in-cluster config not available, falling back to kubeconfig")
	}

	return clientConfig(opts).ClientConfig()
}

// DefaultNamespace is the namespace of the resolved context, falling
// back to "default" when the context does not set one.
func DefaultNamespace(opts Options) (string, error) {
	ns, _, err := clientConfig(opts).Namespace()
	if err != nil {
		return "", err
	}
	return ns, nil
}

func clientConfig(opts Options) clientcmd.ClientConfig {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if opts.Kubeconfig != "" {
		rules.ExplicitPath = opts.Kubeconfig
	}

	overrides := &clientcmd.ConfigOverrides{CurrentContext: opts.Context}

	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides)
}
