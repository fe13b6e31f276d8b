package cluster

import (
	"fmt"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Discover is the cluster-discovery entry point yielding a usable client
// configuration from the environment: in-cluster config first (when
// running inside a pod), then the default kubeconfig loading rules
// (KUBECONFIG env var, then ~/.kube/config).
func Discover() (*rest.Config, error) {
	if cfg, err := rest.InClusterConfig(); err == nil {
		return cfg, nil
	}
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	overrides := &clientcmd.ConfigOverrides{}
	cfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(loadingRules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("cluster: discover config: %w", err)
	}
	return cfg, nil
}
