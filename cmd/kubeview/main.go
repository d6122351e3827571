// Package main is kubeview, a small read-side CLI built on kube-go:
//
//	kubeview list pods -n kube-system
//	kubeview get deployments coredns -n kube-system --group apps -o yaml
//	kubeview watch pods configmaps -n default
//
// Settings come from flags or the environment (KUBEVIEW_ prefix, e.g.
// KUBEVIEW_NAMESPACE).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	kube "github.com/Appva/kube-go"
	"github.com/Appva/kube-go/config"
)

// version is injected at build time via -ldflags
// (e.g. -ldflags "-X main.version=v1.2.3").
var version = "devel"

func main() {
	// Cancel on SIGINT (Ctrl+C) or SIGTERM (container runtime).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		// Cobra is configured with SilenceErrors: true, so we
		// print the error here for consistent formatting.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	return newCmd().ExecuteContext(ctx)
}

// settings are the resolved CLI options shared by all subcommands.
type settings struct {
	v *viper.Viper
}

const (
	keyKubeconfig = "kubeconfig"
	keyContext    = "context"
	keyNamespace  = "namespace"
	keyGroup      = "group"
	keyVersion    = "version"
	keyOutput     = "output"
	keyCluster    = "cluster-scoped"
	keyDebug      = "debug"
)

func newCmd() *cobra.Command {
	s := &settings{v: viper.New()}

	c := &cobra.Command{
		Use:           "kubeview",
		Short:         "kubeview: read and watch API resources through kube-go",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := s.v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
				return err
			}
			s.v.SetEnvPrefix("kubeview")
			s.v.AutomaticEnv()

			level := slog.LevelInfo
			if s.v.GetBool(keyDebug) {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			return nil
		},
	}

	pf := c.PersistentFlags()
	pf.String(keyKubeconfig, "", "Path to the kubeconfig file")
	pf.String(keyContext, "", "Kubeconfig context to use")
	pf.StringP(keyNamespace, "n", "", "Namespace scope (defaults to the context namespace)")
	pf.String(keyGroup, "", "API group of the resource (empty for the core group)")
	pf.String(keyVersion, "v1", "API version of the resource")
	pf.StringP(keyOutput, "o", "name", "Output format: name or yaml")
	pf.Bool(keyCluster, false, "Address the resource at cluster scope (e.g. nodes)")
	pf.Bool(keyDebug, false, "Enable debug logging")

	c.AddCommand(newGetCmd(s), newListCmd(s), newWatchCmd(s))

	return c
}

func newGetCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "get RESOURCE NAME",
		Short: "Fetch a single object by name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := s.api(args[0])
			if err != nil {
				return err
			}

			obj, err := api.Get(cmd.Context(), args[1])
			if err != nil {
				return err
			}

			return s.print(cmd, *obj)
		},
	}
}

func newListCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "list RESOURCE",
		Short: "List the objects of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := s.api(args[0])
			if err != nil {
				return err
			}

			list, err := api.List(cmd.Context(), metav1.ListOptions{})
			if err != nil {
				return err
			}

			for _, item := range list.Items {
				if err := s.print(cmd, item); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newWatchCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "watch RESOURCE [RESOURCE...]",
		Short: "Watch one or more resources for lifecycle events",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, ctx := errgroup.WithContext(cmd.Context())
			for _, resource := range args {
				api, err := s.api(resource)
				if err != nil {
					return err
				}

				g.Go(func() error {
					return s.watch(ctx, cmd, resource, api)
				})
			}
			return g.Wait()
		},
	}
}

// watch lists for a starting version, then streams events until the
// connection or the context ends.
func (s *settings) watch(ctx context.Context, cmd *cobra.Command, resource string, api kube.API[map[string]any]) error {
	list, err := api.List(ctx, metav1.ListOptions{})
	if err != nil {
		return err
	}

	events, err := api.Watch(ctx, metav1.ListOptions{}, list.ResourceVersion())
	if err != nil {
		return err
	}

	for ev := range events {
		switch ev.Type {
		case kube.EventError:
			cmd.Printf("%-10s %s %s\n", ev.Type, resource, ev.Status.Message)
		default:
			cmd.Printf("%-10s %s/%s\n", ev.Type, resource, objectName(ev.Object))
		}
	}
	return ctx.Err()
}

// api builds a typed handle for the named resource at the configured
// scope. Objects are handled as generic maps since kubeview knows
// nothing about their schema.
func (s *settings) api(resource string) (kube.API[map[string]any], error) {
	cfg, err := config.Load(config.Options{
		Kubeconfig: s.v.GetString(keyKubeconfig),
		Context:    s.v.GetString(keyContext),
	})
	if err != nil {
		return kube.API[map[string]any]{}, err
	}

	client, err := kube.NewClient(cfg)
	if err != nil {
		return kube.API[map[string]any]{}, err
	}

	api := kube.CustomResource[map[string]any](client, resource).
		Group(s.v.GetString(keyGroup)).
		Version(s.v.GetString(keyVersion))

	if s.v.GetBool(keyCluster) {
		return api, nil
	}

	namespace := s.v.GetString(keyNamespace)
	if namespace == "" {
		namespace, err = config.DefaultNamespace(config.Options{
			Kubeconfig: s.v.GetString(keyKubeconfig),
			Context:    s.v.GetString(keyContext),
		})
		if err != nil {
			return kube.API[map[string]any]{}, err
		}
	}

	return api.Within(namespace), nil
}

func (s *settings) print(cmd *cobra.Command, obj map[string]any) error {
	switch format := s.v.GetString(keyOutput); format {
	case "yaml":
		out, err := yaml.Marshal(obj)
		if err != nil {
			return err
		}
		cmd.Println(strings.TrimSpace(string(out)))
		cmd.Println("---")
		return nil
	case "name":
		cmd.Println(objectName(&obj))
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func objectName(obj *map[string]any) string {
	if obj == nil {
		return "<unknown>"
	}
	meta, ok := (*obj)["metadata"].(map[string]any)
	if !ok {
		return "<unknown>"
	}
	name, _ := meta["name"].(string)
	if name == "" {
		return "<unknown>"
	}
	return name
}
