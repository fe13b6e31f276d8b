// Package workload implements the WorkloadManager family: Stateless
// (Deployment-style, interchangeable replicas) and Ordered
// (StatefulSet-style, identity-bearing replicas), the two concrete
// implementations behind a single interface the orchestrator drives.
package workload

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/testpods-go/testpods/pkg/storage"
)

const (
	managedByLabel = "managed-by"
	managedByValue = "testpods"
)

// Config is the derived snapshot the orchestrator builds at start() and
// passes to a Manager. A Manager keeps the Config of a successful Create
// for its later Delete, IsRunning and IsReady calls.
type Config struct {
	Name      string
	Namespace string
	Labels    map[string]string
	Selector  map[string]string
	Template  corev1.PodTemplateSpec
	Replicas  int32
	Client    kubernetes.Interface

	// ClaimTemplates are injected into the workload spec for ordered
	// workloads (StatefulSet volumeClaimTemplates). Ignored by Stateless.
	ClaimTemplates []storage.PVCTemplate

	// StandaloneClaimNames lists PVC names already created by the
	// orchestrator for a stateless workload; the pod template's volumes
	// reference them. Stateless does not read this list or check that the
	// claims exist or are bound.
	StandaloneClaimNames []string

	// ServiceName is the headless service name an ordered workload must
	// reference for stable pod DNS. Required (non-empty) for Ordered.
	ServiceName string
}

// Manager drives a single workload controller (Deployment or StatefulSet)
// through create, delete, and the running/ready predicates the
// orchestrator and wait.ReadinessProbe consult.
type Manager interface {
	Create(ctx context.Context, cfg Config) error
	Delete(ctx context.Context) error
	IsRunning(ctx context.Context) (bool, error)
	IsReady(ctx context.Context) (bool, error)
	Name() string
	Kind() string
}

func canonicalLabels(name string, extra map[string]string) map[string]string {
	out := map[string]string{
		"app":          name,
		managedByLabel: managedByValue,
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
