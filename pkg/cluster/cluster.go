// Package cluster implements ClusterHandle: an abstract cluster
// connection exposing a minimal KubernetesClient facade (typed, dynamic,
// and discovery clients) and an ExternalAccessStrategy that translates an
// in-cluster service port into a host-reachable hostport.HostAndPort.
package cluster

import (
	"context"

	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/testpods-go/testpods/pkg/hostport"
)

// Handle is the facade every manager in this module consumes instead of
// talking to client-go directly — this is the "minimal facade" the core
// consumes per spec.md §1's scope note; the underlying cluster API client
// itself stays an external collaborator.
type Handle interface {
	// Clientset returns the typed Kubernetes client for Deployments,
	// StatefulSets, Services, PVCs, ConfigMaps, Secrets, Namespaces, pod
	// logs and exec.
	Clientset() kubernetes.Interface

	// Dynamic returns the dynamic client, for resources without a
	// generated typed client. No package in this module calls it.
	Dynamic() dynamic.Interface

	// Discovery returns the discovery client; testpodsctl doctor uses it
	// for its API server version check.
	Discovery() discovery.DiscoveryInterface

	// RestConfig returns the underlying REST config, needed by
	// remotecommand's SPDY executor for the Command wait strategy.
	RestConfig() *rest.Config

	// ExternalAccess returns the strategy translating an in-cluster
	// Service port into a host-reachable endpoint.
	ExternalAccess() ExternalAccessStrategy

	// Close releases any resources (e.g. cached node-IP lookups) held by
	// this handle.
	Close() error
}

// ExternalAccessStrategy resolves a host-reachable HostAndPort for a
// Service's port. Implementations fail loudly (not a placeholder) when the
// service has no NodePort allocated or is unknown — that's a
// misconfiguration (ClusterIP-only service addressed from outside), not a
// transient condition.
type ExternalAccessStrategy interface {
	Resolve(ctx context.Context, namespace, serviceName string, servicePort int32) (hostport.HostAndPort, error)
}
