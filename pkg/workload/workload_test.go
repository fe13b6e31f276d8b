package workload

import (
	"context"
	"testing"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/testpods-go/testpods/pkg/storage"
)

func podTemplate(image string) corev1.PodTemplateSpec {
	return corev1.PodTemplateSpec{
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{{Name: "main", Image: image}},
		},
	}
}

func TestStatelessCreateSetsCanonicalLabels(t *testing.T) {
	client := fake.NewSimpleClientset()
	m := NewStateless()
	err := m.Create(context.Background(), Config{
		Name: "web", Namespace: "ns1", Client: client,
		Template: podTemplate("nginx:alpine"), Replicas: 2,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	d, err := client.AppsV1().Deployments("ns1").Get(context.Background(), "web", metav1Opts())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.Labels["managed-by"] != "testpods" || d.Labels["app"] != "web" {
		t.Errorf("unexpected labels: %+v", d.Labels)
	}
}

func TestStatelessNotRunningBeforeCreate(t *testing.T) {
	m := NewStateless()
	running, err := m.IsRunning(context.Background())
	if err != nil || running {
		t.Fatalf("expected not running before Create, got running=%v err=%v", running, err)
	}
}

func TestOrderedRequiresHeadlessServiceName(t *testing.T) {
	client := fake.NewSimpleClientset()
	m := NewOrdered()
	err := m.Create(context.Background(), Config{
		Name: "db", Namespace: "ns1", Client: client,
		Template: podTemplate("postgres:16"),
	})
	if err == nil {
		t.Fatal("expected error for missing ServiceName")
	}
}

func TestOrderedInjectsClaimTemplates(t *testing.T) {
	client := fake.NewSimpleClientset()
	m := NewOrdered()
	err := m.Create(context.Background(), Config{
		Name: "db", Namespace: "ns1", Client: client,
		Template:    podTemplate("postgres:16"),
		ServiceName: "db-headless",
		ClaimTemplates: []storage.PVCTemplate{
			{Name: "data", Size: "1Gi", AccessModes: []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce}},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	sts, err := client.AppsV1().StatefulSets("ns1").Get(context.Background(), "db", metav1Opts())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(sts.Spec.VolumeClaimTemplates) != 1 || sts.Spec.VolumeClaimTemplates[0].Name != "data" {
		t.Errorf("expected claim template 'data', got %+v", sts.Spec.VolumeClaimTemplates)
	}
}

func TestPodOrdinalName(t *testing.T) {
	if got, want := PodOrdinalName("db", 2), "db-2"; got != want {
		t.Errorf("PodOrdinalName() = %q, want %q", got, want)
	}
}
