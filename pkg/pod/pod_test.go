package pod

import (
	"context"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/rest"

	"github.com/testpods-go/testpods/pkg/cluster"
	"github.com/testpods-go/testpods/pkg/hostport"
	"github.com/testpods-go/testpods/pkg/svc"
	"github.com/testpods-go/testpods/pkg/wait"
)

// fakeHandle wires a fake clientset plus a stub ExternalAccessStrategy so
// tests never shell out to kubectl the way the real nodeIPAccess does.
type fakeHandle struct {
	clientset kubernetes.Interface
	access    cluster.ExternalAccessStrategy
}

func (f *fakeHandle) Clientset() kubernetes.Interface         { return f.clientset }
func (f *fakeHandle) Dynamic() dynamic.Interface               { return nil }
func (f *fakeHandle) Discovery() discovery.DiscoveryInterface  { return nil }
func (f *fakeHandle) RestConfig() *rest.Config                 { return nil }
func (f *fakeHandle) ExternalAccess() cluster.ExternalAccessStrategy { return f.access }
func (f *fakeHandle) Close() error                              { return nil }

type stubAccess struct {
	hp  hostport.HostAndPort
	err error
}

func (s stubAccess) Resolve(ctx context.Context, namespace, serviceName string, servicePort int32) (hostport.HostAndPort, error) {
	return s.hp, s.err
}

// recordingAccess is a stubAccess that also records the service name it was
// asked to resolve, so a test can assert which sibling of a Composite
// service the orchestrator actually targeted.
type recordingAccess struct {
	hp           hostport.HostAndPort
	resolvedName string
}

func (r *recordingAccess) Resolve(ctx context.Context, namespace, serviceName string, servicePort int32) (hostport.HostAndPort, error) {
	r.resolvedName = serviceName
	return r.hp, nil
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{clientset: fake.NewSimpleClientset()}
}

func TestStartCreatesResourcesAndStopDeletesThem(t *testing.T) {
	hp, _ := hostport.New("10.0.0.5", 30080)
	handle := newFakeHandle()
	handle.access = stubAccess{hp: hp}

	p, err := New("web").
		WithImage("nginx:alpine").
		WithPort(80).
		WithStatelessWorkload(1).
		WithService(svc.NewNodePort(30080)).
		WithWaitStrategy(wait.ForAll()).
		WithNamespace("ns1").
		WithCluster(handle).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if p.State() != stateReady {
		t.Fatalf("expected state ready, got %s", p.State())
	}

	host, err := p.GetExternalHost()
	if err != nil || host != "10.0.0.5" {
		t.Errorf("GetExternalHost() = %q, %v", host, err)
	}
	port, err := p.GetExternalPort()
	if err != nil || port != 30080 {
		t.Errorf("GetExternalPort() = %d, %v", port, err)
	}

	if _, err := handle.clientset.AppsV1().Deployments("ns1").Get(ctx, "web", metav1.GetOptions{}); err != nil {
		t.Errorf("expected deployment to exist: %v", err)
	}
	if _, err := handle.clientset.CoreV1().Services("ns1").Get(ctx, "web", metav1.GetOptions{}); err != nil {
		t.Errorf("expected service to exist: %v", err)
	}

	if err := p.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if p.State() != stateStopped {
		t.Fatalf("expected state stopped, got %s", p.State())
	}
	if _, err := handle.clientset.AppsV1().Deployments("ns1").Get(ctx, "web", metav1.GetOptions{}); err == nil {
		t.Error("expected deployment to be deleted after Stop")
	}
	if _, err := handle.clientset.CoreV1().Services("ns1").Get(ctx, "web", metav1.GetOptions{}); err == nil {
		t.Error("expected service to be deleted after Stop")
	}

	if _, err := p.GetExternalHost(); err == nil {
		t.Error("expected GetExternalHost to fail after Stop")
	}
}

func TestGetExternalHostFailsBeforeStart(t *testing.T) {
	p, err := New("web").
		WithImage("nginx:alpine").
		WithPort(80).
		WithStatelessWorkload(1).
		WithNamespace("ns1").
		WithCluster(newFakeHandle()).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := p.GetExternalHost(); err == nil {
		t.Error("expected precondition error before Start")
	}
	if !IsKind(mustErr(p.GetExternalHost()), ErrPrecondition) {
		t.Error("expected ErrPrecondition")
	}
}

func mustErr(_ string, err error) error { return err }

func TestReadinessTimeoutRollsBackCreatedResources(t *testing.T) {
	handle := newFakeHandle()
	p, err := New("flaky").
		WithImage("nginx:alpine").
		WithPort(80).
		WithStatelessWorkload(1).
		WithService(svc.NewClusterIP()).
		WithWaitStrategy(wait.ForAny()). // empty ForAny fails immediately
		WithNamespace("ns1").
		WithCluster(handle).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	ctx := context.Background()
	err = p.Start(ctx)
	if err == nil {
		t.Fatal("expected Start to fail")
	}
	if !IsKind(err, ErrReadinessTimeout) {
		t.Errorf("expected ErrReadinessTimeout, got %v", err)
	}
	if p.State() != stateFailed {
		t.Errorf("expected state failed, got %s", p.State())
	}

	if _, err := handle.clientset.AppsV1().Deployments("ns1").Get(ctx, "flaky", metav1.GetOptions{}); err == nil {
		t.Error("expected deployment to be rolled back")
	}
	if _, err := handle.clientset.CoreV1().Services("ns1").Get(ctx, "flaky", metav1.GetOptions{}); err == nil {
		t.Error("expected service to be rolled back")
	}
	// Namespace itself survives rollback — its lifecycle belongs to the
	// framework scope, not this pod.
	if _, err := handle.clientset.CoreV1().Namespaces().Get(ctx, "ns1", metav1.GetOptions{}); err != nil {
		t.Errorf("expected namespace to survive rollback: %v", err)
	}
}

func TestDoubleStartIsRejected(t *testing.T) {
	handle := newFakeHandle()
	p, err := New("web").
		WithImage("nginx:alpine").
		WithStatelessWorkload(1).
		WithWaitStrategy(wait.ForAll()).
		WithNamespace("ns1").
		WithCluster(handle).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	err = p.Start(ctx)
	if err == nil {
		t.Fatal("expected second Start to fail")
	}
	if !IsKind(err, ErrPrecondition) {
		t.Errorf("expected ErrPrecondition, got %v", err)
	}
}

func TestOrderedWorkloadRequiresHeadlessService(t *testing.T) {
	_, err := New("db").
		WithImage("postgres:16").
		WithOrderedWorkload(1).
		WithService(svc.NewClusterIP()).
		Build()
	if err == nil {
		t.Fatal("expected Build to reject an ordered workload without a Headless service")
	}
	if !IsKind(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

// TestOrderedCompositeServiceResolvesNodePortSibling locks in spec.md §8
// scenario 2: a headless+NodePort composite must resolve the external
// endpoint against the NodePort sibling, not whichever child the
// Composite happened to create first (the Headless one).
func TestOrderedCompositeServiceResolvesNodePortSibling(t *testing.T) {
	hp, _ := hostport.New("10.0.0.9", 31234)
	access := &recordingAccess{hp: hp}
	handle := newFakeHandle()
	handle.access = access

	composite := svc.NewComposite().
		Add(svc.NewHeadless(), "").
		Add(svc.NewNodePort(0), "-external")

	p, err := New("db").
		WithImage("postgres:16").
		WithPort(5432).
		WithOrderedWorkload(1).
		WithService(composite).
		WithWaitStrategy(wait.ForAll()).
		WithNamespace("ns1").
		WithCluster(handle).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if access.resolvedName != "db-external" {
		t.Errorf("expected external access to resolve against the NodePort sibling %q, got %q", "db-external", access.resolvedName)
	}
	host, err := p.GetExternalHost()
	if err != nil || host != "10.0.0.9" {
		t.Errorf("GetExternalHost() = %q, %v", host, err)
	}
}

// TestServiceCustomizerIsApplied locks in spec.md §4.3: a
// WithServiceCustomizer transformation must actually run against the
// Service the orchestrator creates.
func TestServiceCustomizerIsApplied(t *testing.T) {
	handle := newFakeHandle()
	handle.access = stubAccess{}

	var customizedName string
	p, err := New("web").
		WithImage("nginx:alpine").
		WithPort(80).
		WithStatelessWorkload(1).
		WithService(svc.NewClusterIP()).
		WithServiceCustomizer(func(s *corev1.Service) {
			s.Annotations = map[string]string{"testpods.io/customized": "true"}
			customizedName = s.Name
		}).
		WithWaitStrategy(wait.ForAll()).
		WithNamespace("ns1").
		WithCluster(handle).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if customizedName != "web" {
		t.Fatalf("expected customizer to run against service %q, got %q", "web", customizedName)
	}

	created, err := handle.clientset.CoreV1().Services("ns1").Get(context.Background(), "web", metav1.GetOptions{})
	if err != nil {
		t.Fatalf("expected service to exist: %v", err)
	}
	if created.Annotations["testpods.io/customized"] != "true" {
		t.Errorf("expected customizer's annotation to survive creation, got %v", created.Annotations)
	}
}

func TestStopIsNoOpBeforeStart(t *testing.T) {
	p, err := New("web").
		WithImage("nginx:alpine").
		WithStatelessWorkload(1).
		WithCluster(newFakeHandle()).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Errorf("Stop before Start should be a no-op, got %v", err)
	}
}
