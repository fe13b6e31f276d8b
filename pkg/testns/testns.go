// Package testns implements TestNamespace: a cluster namespace shared
// among the pods of one test class, with idempotent creation,
// scope-aware deletion, and managed-resource-only cleanup that leaves
// user-authored resources intact.
package testns

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"

	"github.com/testpods-go/testpods/pkg/cluster"
)

const (
	managedByLabel    = "managed-by"
	managedByValue    = "testpods"
	namespaceLabelKey = "testpods.io/namespace"

	deleteBudget = 2 * time.Minute
	pollInterval = 2 * time.Second
)

// managedBySelector selects every resource this module created.
const managedBySelector = managedByLabel + "=" + managedByValue

// TestNamespace wraps a namespace name plus whether this process created
// it, per spec.md §3's TestNamespace entity.
type TestNamespace struct {
	cluster     cluster.Handle
	name        string
	createdByUs bool
}

// New wraps an existing or not-yet-existing namespace name.
func New(handle cluster.Handle, name string) *TestNamespace {
	return &TestNamespace{cluster: handle, name: name}
}

// Name returns the wrapped namespace name.
func (t *TestNamespace) Name() string { return t.name }

// CreatedByUs reports whether CreateIfNotExists created this namespace
// (false if it already existed, or if CreateIfNotExists was never called).
func (t *TestNamespace) CreatedByUs() bool { return t.createdByUs }

// CreateIfNotExists is idempotent: a namespace that already exists is left
// untouched and createdByUs stays false. On creation, it applies
// managed-by=testpods and testpods.io/namespace=true labels and sets
// createdByUs=true.
func (t *TestNamespace) CreateIfNotExists(ctx context.Context) error {
	client := t.cluster.Clientset()
	_, err := client.CoreV1().Namespaces().Get(ctx, t.name, metav1.GetOptions{})
	if err == nil {
		return nil
	}
	if !apierrors.IsNotFound(err) {
		return fmt.Errorf("testns: get namespace %s: %w", t.name, err)
	}

	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{
			Name: t.name,
			Labels: map[string]string{
				managedByLabel:    managedByValue,
				namespaceLabelKey: "true",
			},
		},
	}
	_, err = client.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{})
	if err != nil {
		if apierrors.IsAlreadyExists(err) {
			// Lost a create race against a concurrent test; the
			// namespace exists either way, which is all
			// CreateIfNotExists promises.
			return nil
		}
		return fmt.Errorf("testns: create namespace %s: %w", t.name, err)
	}
	t.createdByUs = true
	return nil
}

// Exists performs a live lookup.
func (t *TestNamespace) Exists(ctx context.Context) (bool, error) {
	_, err := t.cluster.Clientset().CoreV1().Namespaces().Get(ctx, t.name, metav1.GetOptions{})
	if err == nil {
		return true, nil
	}
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("testns: get namespace %s: %w", t.name, err)
}

// Delete initiates namespace deletion, then polls until it disappears or
// the 2-minute budget expires. Respects ctx cancellation.
func (t *TestNamespace) Delete(ctx context.Context) error {
	client := t.cluster.Clientset()
	err := client.CoreV1().Namespaces().Delete(ctx, t.name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("testns: delete namespace %s: %w", t.name, err)
	}

	ctx, cancel := context.WithTimeout(ctx, deleteBudget)
	defer cancel()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		gone, err := t.namespaceGone(ctx, client)
		if err != nil {
			return err
		}
		if gone {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("testns: delete namespace %s: %w", t.name, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (t *TestNamespace) namespaceGone(ctx context.Context, client kubernetes.Interface) (bool, error) {
	_, err := client.CoreV1().Namespaces().Get(ctx, t.name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("testns: get namespace %s: %w", t.name, err)
	}
	return false, nil
}

// DeleteManagedResources deletes workloads, services, and
// configmap/secret resources in this namespace carrying
// managed-by=testpods, for scope-preserving cleanup between tests that
// share a namespace. User resources (no managed-by label) are left
// intact. Individual delete failures are logged and swallowed — this is
// best-effort, like Stop.
func (t *TestNamespace) DeleteManagedResources(ctx context.Context) error {
	client := t.cluster.Clientset()
	opts := metav1.ListOptions{LabelSelector: managedBySelector}

	deployments, err := client.AppsV1().Deployments(t.name).List(ctx, opts)
	if err == nil {
		for _, d := range deployments.Items {
			deleteAndLog(ctx, "deployment/"+d.Name, func() error {
				return client.AppsV1().Deployments(t.name).Delete(ctx, d.Name, metav1.DeleteOptions{})
			})
		}
	}

	statefulSets, err := client.AppsV1().StatefulSets(t.name).List(ctx, opts)
	if err == nil {
		for _, s := range statefulSets.Items {
			deleteAndLog(ctx, "statefulset/"+s.Name, func() error {
				return client.AppsV1().StatefulSets(t.name).Delete(ctx, s.Name, metav1.DeleteOptions{})
			})
		}
	}

	services, err := client.CoreV1().Services(t.name).List(ctx, opts)
	if err == nil {
		for _, s := range services.Items {
			deleteAndLog(ctx, "service/"+s.Name, func() error {
				return client.CoreV1().Services(t.name).Delete(ctx, s.Name, metav1.DeleteOptions{})
			})
		}
	}

	configMaps, err := client.CoreV1().ConfigMaps(t.name).List(ctx, opts)
	if err == nil {
		for _, c := range configMaps.Items {
			deleteAndLog(ctx, "configmap/"+c.Name, func() error {
				return client.CoreV1().ConfigMaps(t.name).Delete(ctx, c.Name, metav1.DeleteOptions{})
			})
		}
	}

	secrets, err := client.CoreV1().Secrets(t.name).List(ctx, opts)
	if err == nil {
		for _, s := range secrets.Items {
			deleteAndLog(ctx, "secret/"+s.Name, func() error {
				return client.CoreV1().Secrets(t.name).Delete(ctx, s.Name, metav1.DeleteOptions{})
			})
		}
	}

	pvcs, err := client.CoreV1().PersistentVolumeClaims(t.name).List(ctx, opts)
	if err == nil {
		for _, c := range pvcs.Items {
			deleteAndLog(ctx, "pvc/"+c.Name, func() error {
				return client.CoreV1().PersistentVolumeClaims(t.name).Delete(ctx, c.Name, metav1.DeleteOptions{})
			})
		}
	}

	return nil
}

func deleteAndLog(_ context.Context, what string, delete func() error) {
	if err := delete(); err != nil {
		klog.Warningf("testns: delete managed resource %s failed: %v", what, err)
	}
}
