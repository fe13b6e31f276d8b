package pod

import (
	"strings"
	"testing"
)

func TestDebugDumpIncludesCoreFields(t *testing.T) {
	p, err := New("web").
		WithImage("nginx:alpine").
		WithStatelessWorkload(1).
		WithNamespace("ns1").
		WithCluster(newFakeHandle()).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	dump, err := p.DebugDump()
	if err != nil {
		t.Fatalf("DebugDump: %v", err)
	}
	for _, want := range []string{"name: web", "image: nginx:alpine", "namespace: ns1"} {
		if !strings.Contains(dump, want) {
			t.Errorf("expected dump to contain %q, got:\n%s", want, dump)
		}
	}
}
