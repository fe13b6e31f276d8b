package cluster

import (
	"context"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestResolveFailsLoudlyForClusterIPOnlyService(t *testing.T) {
	client := fake.NewSimpleClientset(&corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: "web", Namespace: "ns1"},
		Spec: corev1.ServiceSpec{
			Type:  corev1.ServiceTypeClusterIP,
			Ports: []corev1.ServicePort{{Port: 80}},
		},
	})
	access := newNodeIPAccess(client)
	_, err := access.Resolve(context.Background(), "ns1", "web", 80)
	if err == nil {
		t.Fatal("expected error for ClusterIP-only service")
	}
}

func TestResolveFailsLoudlyWhenServiceUnknown(t *testing.T) {
	client := fake.NewSimpleClientset()
	access := newNodeIPAccess(client)
	_, err := access.Resolve(context.Background(), "ns1", "missing", 80)
	if err == nil {
		t.Fatal("expected error for unknown service")
	}
}

func TestResolveFailsLoudlyWhenNoNodePortAllocated(t *testing.T) {
	client := fake.NewSimpleClientset(&corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: "db", Namespace: "ns1"},
		Spec: corev1.ServiceSpec{
			Type:  corev1.ServiceTypeNodePort,
			Ports: []corev1.ServicePort{{Port: 5432, NodePort: 0}},
		},
	})
	access := newNodeIPAccess(client)
	_, err := access.Resolve(context.Background(), "ns1", "db", 5432)
	if err == nil {
		t.Fatal("expected error when no NodePort allocated")
	}
}
