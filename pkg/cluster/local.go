package cluster

import (
	"fmt"

	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// Local is the local-cluster ClusterHandle implementation: it wraps a
// discovered *rest.Config, builds the typed/dynamic/discovery clients, and
// resolves external access via node-IP + NodePort lookup (nodeIPAccess).
type Local struct {
	cfg       *rest.Config
	clientset kubernetes.Interface
	dyn       dynamic.Interface
	disc      discovery.DiscoveryInterface
	access    ExternalAccessStrategy
}

// NewLocal builds a Local handle from a discovered *rest.Config.
func NewLocal(cfg *rest.Config) (*Local, error) {
	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("cluster: build clientset: %w", err)
	}
	dyn, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("cluster: build dynamic client: %w", err)
	}
	disc, err := discovery.NewDiscoveryClientForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("cluster: build discovery client: %w", err)
	}

	l := &Local{cfg: cfg, clientset: clientset, dyn: dyn, disc: disc}
	l.access = newNodeIPAccess(clientset)
	return l, nil
}

// NewLocalFromEnv discovers the environment's cluster config and builds a
// Local handle from it.
func NewLocalFromEnv() (*Local, error) {
	cfg, err := Discover()
	if err != nil {
		return nil, err
	}
	return NewLocal(cfg)
}

func (l *Local) Clientset() kubernetes.Interface        { return l.clientset }
func (l *Local) Dynamic() dynamic.Interface              { return l.dyn }
func (l *Local) Discovery() discovery.DiscoveryInterface { return l.disc }
func (l *Local) RestConfig() *rest.Config                { return l.cfg }
func (l *Local) ExternalAccess() ExternalAccessStrategy   { return l.access }
func (l *Local) Close() error                             { return nil }
