package svc

import (
	"context"
	"testing"

	"k8s.io/client-go/kubernetes/fake"
)

func TestClusterIPCreateAndDelete(t *testing.T) {
	client := fake.NewSimpleClientset()
	m := NewClusterIP()
	cfg := Config{
		Name:      "web",
		Namespace: "ns1",
		Selector:  map[string]string{"app": "web"},
		Port:      80, TargetPort: 8080,
		Client: client,
	}
	created, err := m.Create(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Labels["managed-by"] != "testpods" {
		t.Errorf("missing managed-by label: %+v", created.Labels)
	}
	if created.Labels["app"] != "web" {
		t.Errorf("missing app label: %+v", created.Labels)
	}

	if err := m.Delete(context.Background()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// Second delete (nothing cached notion aside) is best-effort; fake
	// client returns NotFound but Manager.Delete doesn't guard re-entry
	// at this layer — the orchestrator's stop() does. Here we just check
	// it doesn't panic.
	_ = m.Delete(context.Background())
}

func TestCompositeCreatesWithSuffixesAndPrimaryIsFirst(t *testing.T) {
	client := fake.NewSimpleClientset()
	composite := NewComposite().
		Add(NewHeadless(), "").
		Add(NewNodePort(0), "-external")

	cfg := Config{
		Name:      "db",
		Namespace: "ns1",
		Selector:  map[string]string{"app": "db"},
		Port:      5432, TargetPort: 5432,
		Client: client,
	}
	primary, err := composite.Create(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if primary.Name != "db" {
		t.Errorf("primary name = %q, want db", primary.Name)
	}
	children := composite.Children()
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
	if children[1].Name() != "db-external" {
		t.Errorf("second child name = %q, want db-external", children[1].Name())
	}

	if err := composite.Delete(context.Background()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
