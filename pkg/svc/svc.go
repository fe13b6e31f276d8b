// Package svc implements the ServiceManager family: ClusterIP, Headless,
// NodePort, and Composite, each wrapping CoreV1 Service create/delete
// against the same typed client the orchestrator threads through every
// other manager.
package svc

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"
)

// Customizer mutates a Service before creation, letting pods tune timing,
// selectors, load-balancer class, and other knobs without Manager needing
// to know about every one of them.
type Customizer func(*corev1.Service)

// Config is the per-start snapshot passed into a Manager's Create; the
// orchestrator owns it and rebuilds it fresh on every start().
type Config struct {
	Name        string
	Namespace   string
	Labels      map[string]string
	Selector    map[string]string
	Port        int32
	TargetPort  int32
	Client      kubernetes.Interface
	Customizers []Customizer
}

// Manager creates and deletes the cluster Service(s) backing a pod's
// endpoint exposure and reports the cached primary Service.
type Manager interface {
	// Create creates the backing Service(s) and returns the primary one
	// (for Composite, the first configured sub-manager's result).
	Create(ctx context.Context, cfg Config) (*corev1.Service, error)

	// Delete removes the Service(s) this manager created. The ClusterIP,
	// Headless and NodePort managers log a delete failure and return it;
	// Composite logs and swallows its children's failures and returns nil.
	// The orchestrator treats either as part of its own best-effort
	// teardown.
	Delete(ctx context.Context) error

	// Service returns the cached primary Service, or nil if Create has
	// not succeeded.
	Service() *corev1.Service

	// Name returns the configured name (post-Create, including suffixes
	// for Composite sub-managers).
	Name() string

	// Kind identifies the concrete manager ("ClusterIP", "Headless",
	// "NodePort", "Composite").
	Kind() string
}

const managedByLabel = "managed-by"
const managedByValue = "testpods"

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

func applyCustomizers(svc *corev1.Service, customizers []Customizer) {
	for _, c := range customizers {
		c(svc)
	}
}

func deleteService(ctx context.Context, client kubernetes.Interface, namespace, name string) error {
	err := client.CoreV1().Services(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil {
		klog.Warningf("svc: delete %s/%s: %v", namespace, name, err)
		return fmt.Errorf("svc: delete %s/%s: %w", namespace, name, err)
	}
	return nil
}
