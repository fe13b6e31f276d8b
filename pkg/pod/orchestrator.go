package pod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"

	"github.com/testpods-go/testpods/pkg/cluster"
	"github.com/testpods-go/testpods/pkg/defaults"
	"github.com/testpods-go/testpods/pkg/hostport"
	"github.com/testpods-go/testpods/pkg/nsname"
	"github.com/testpods-go/testpods/pkg/storage"
	"github.com/testpods-go/testpods/pkg/svc"
	"github.com/testpods-go/testpods/pkg/testns"
	"github.com/testpods-go/testpods/pkg/wait"
	"github.com/testpods-go/testpods/pkg/workload"
)

// Pod is the handle a test holds: start() it, read its external endpoint,
// stop() it. A Pod is not intended to be started twice concurrently —
// callers are expected to observe single-owner discipline; the
// Orchestrator does not lock against that, per spec.md §5, beyond the
// atomic state guard that rejects a second concurrent Start outright.
type Pod struct {
	d     *descriptor
	state atomic.Int32

	mu        sync.Mutex
	cluster   cluster.Handle
	namespace string
	rollback  []rollbackEntry
	endpoint  hostport.HostAndPort
}

// State reports the Pod's current lifecycle state.
func (p *Pod) State() State { return State(p.state.Load()) }

// Start drives the Pod from configured to ready: resolves namespace and
// cluster, creates resources in the strict order from spec.md §4.1,
// blocks on the wait strategy, and caches the external endpoint. Any
// failure after namespace resolution rolls back everything this call
// created, in reverse order, and returns a wrapped *Error.
func (p *Pod) Start(ctx context.Context) error {
	if !p.state.CompareAndSwap(int32(stateConfigured), int32(stateStarting)) {
		return wrapErr(ErrPrecondition, p.d.name, p.d.namespace, "start",
			fmt.Errorf("pod already started or not in configured state (current: %s)", State(p.state.Load())))
	}

	timer := time.Now()
	err := p.start(ctx)
	p.d.metrics.ObserveStart(p.d.workload.Kind(), time.Since(timer), err)
	if err != nil {
		p.state.Store(int32(stateFailed))
		return err
	}
	p.state.Store(int32(stateReady))
	return nil
}

func (p *Pod) start(ctx context.Context) error {
	handle, err := p.resolveCluster(ctx)
	if err != nil {
		return wrapErr(ErrConfiguration, p.d.name, p.d.namespace, "resolve-cluster", err)
	}
	p.cluster = handle

	namespace, err := p.resolveNamespace(ctx)
	if err != nil {
		return wrapErr(ErrConfiguration, p.d.name, p.d.namespace, "resolve-namespace", err)
	}
	p.namespace = namespace

	// Step 1: ensure the namespace exists. Idempotent; not rolled back on
	// later failure — its lifecycle belongs to the framework scope, not
	// this pod.
	ns := testns.New(handle, namespace)
	if err := ns.CreateIfNotExists(ctx); err != nil {
		return wrapErr(ErrClusterAPI, p.d.name, namespace, "ensure-namespace", err)
	}

	client := handle.Clientset()
	labels := canonicalLabels(p.d.name, p.d.labels)

	// Step 2: render and create FileMaterial ConfigMaps + their
	// volume/mount Managers as a unit, before any pod template that would
	// reference them.
	effectiveStorage, err := p.materializeFiles(ctx, client, namespace, labels)
	if err != nil {
		p.rollbackAndFail(ctx)
		return wrapErr(ErrClusterAPI, p.d.name, namespace, "create-file-materials", err)
	}

	// Step 3: standalone PVCs, only for stateless workloads (ordered
	// workloads use claim templates injected directly into the workload
	// spec in step 5).
	if !p.d.ordered {
		if err := p.createStandaloneClaims(ctx, client, namespace, labels, effectiveStorage); err != nil {
			p.rollbackAndFail(ctx)
			return wrapErr(ErrClusterAPI, p.d.name, namespace, "create-standalone-claims", err)
		}
	}

	// Step 4: services, before the workload — headless-first ordering for
	// stable pod DNS is the caller's responsibility (enforced at Build:
	// an ordered workload must configure a Headless service).
	var primarySvc *corev1.Service
	var headlessName string
	if p.d.service != nil {
		cfg := svc.Config{
			Name:        p.d.name,
			Namespace:   namespace,
			Labels:      labels,
			Selector:    map[string]string{"app": p.d.name},
			Port:        firstPort(p.d.ports),
			TargetPort:  firstPort(p.d.ports),
			Client:      client,
			Customizers: p.d.serviceCustomizers,
		}
		created, err := p.d.service.Create(ctx, cfg)
		if err != nil {
			p.rollbackAndFail(ctx)
			return wrapErr(ErrClusterAPI, p.d.name, namespace, "create-service", err)
		}
		p.addRollback("service", func(ctx context.Context) error { return p.d.service.Delete(ctx) })
		primarySvc = created
		if headless, ok := headlessChild(p.d.service); ok {
			headlessName = headless.Name()
		}
	}

	// Step 5: the workload itself, injecting claim templates for ordered
	// workloads instead of creating separate PVCs for them.
	template := p.buildPodTemplate(effectiveStorage)
	wcfg := workload.Config{
		Name:      p.d.name,
		Namespace: namespace,
		Labels:    labels,
		Selector:  map[string]string{"app": p.d.name},
		Template:  template,
		Replicas:  p.d.replicas,
		Client:    client,
	}
	if p.d.ordered {
		wcfg.ClaimTemplates = effectiveStorage.ClaimTemplates()
		wcfg.ServiceName = headlessName
	} else {
		for _, c := range effectiveStorage.StandaloneClaims() {
			wcfg.StandaloneClaimNames = append(wcfg.StandaloneClaimNames, c.Name)
		}
	}
	if err := p.d.workload.Create(ctx, wcfg); err != nil {
		p.rollbackAndFail(ctx)
		return wrapErr(ErrClusterAPI, p.d.name, namespace, "create-workload", err)
	}
	p.addRollback("workload", func(ctx context.Context) error { return p.d.workload.Delete(ctx) })

	// Step 6: gate on the wait strategy. A nil strategy (never configured
	// by the caller) falls back to a ReadinessProbe against the workload
	// itself, the cheapest signal available once the workload exists.
	strategy := p.d.wait
	strategyKind := "custom"
	if strategy == nil {
		strategy = wait.ForReadinessProbe(p.d.workload.IsReady)
		strategyKind = "readiness-probe"
	}
	waitTimer := time.Now()
	waitErr := strategy.WaitUntilReady(ctx, p.d.deadline)
	p.d.metrics.ObserveWait(strategyKind, time.Since(waitTimer), waitErr)
	if waitErr != nil {
		p.rollbackAndFail(ctx)
		return wrapErr(ErrReadinessTimeout, p.d.name, namespace, "wait-ready", waitErr)
	}

	// Step 7: resolve the external endpoint. For a Composite service
	// (e.g. headless + NodePort, spec.md §8 scenario 2), the NodePort
	// sibling — not whichever child happened to be created first — is
	// the one an external-access lookup can actually resolve; a
	// ClusterIP-only or Headless-only primary is deliberately left to
	// fail loudly inside ExternalAccess().Resolve (spec.md §4.6).
	resolveSvc := primarySvc
	if target, ok := nodePortChild(p.d.service); ok {
		if s := target.Service(); s != nil {
			resolveSvc = s
		}
	}
	if resolveSvc != nil && len(resolveSvc.Spec.Ports) > 0 {
		endpoint, err := handle.ExternalAccess().Resolve(ctx, namespace, resolveSvc.Name, resolveSvc.Spec.Ports[0].Port)
		if err != nil {
			p.rollbackAndFail(ctx)
			return wrapErr(ErrClusterAPI, p.d.name, namespace, "resolve-external-endpoint", err)
		}
		p.mu.Lock()
		p.endpoint = endpoint
		p.mu.Unlock()
	}

	return nil
}

// rollbackAndFail unwinds everything recorded so far and wraps a
// rollback-partial error note into the log if any rollback step itself
// failed; the primary cause is still what the caller returns (this only
// logs secondary failures, matching spec.md §7's "surface the primary
// cause with secondary failures as suppressed/annotated").
func (p *Pod) rollbackAndFail(ctx context.Context) {
	p.mu.Lock()
	entries := p.rollback
	p.rollback = nil
	p.mu.Unlock()
	for _, entry := range entries {
		p.d.metrics.ObserveRollback(entry.step)
	}
	if failures := unwind(ctx, p.d.name, entries); len(failures) > 0 {
		klog.Warningf("pod: %s [%s]: rollback completed with %d secondary failure(s)", p.d.name, p.d.instanceID, len(failures))
	}
}

func (p *Pod) addRollback(step string, undo func(ctx context.Context) error) {
	p.mu.Lock()
	p.rollback = append(p.rollback, rollbackEntry{step: step, undo: undo})
	p.mu.Unlock()
}

// Stop dismantles everything Start created, in reverse order: workload,
// then services, then standalone PVCs, then generated config/secret
// resources. Deletes are best-effort — a failure on one resource does not
// prevent attempts on the rest — and Stop never raises on partial
// teardown. A second Stop call (or one on a Pod that never reached ready)
// is a no-op.
func (p *Pod) Stop(ctx context.Context) error {
	state := State(p.state.Load())
	if state != stateReady && state != stateFailed {
		return nil
	}
	p.state.Store(int32(stateStopping))

	p.mu.Lock()
	entries := p.rollback
	p.rollback = nil
	p.endpoint = hostport.HostAndPort{}
	p.mu.Unlock()

	timer := time.Now()
	failures := unwind(ctx, p.d.name, entries)
	p.d.metrics.ObserveStop(p.d.workload.Kind(), time.Since(timer))
	p.state.Store(int32(stateStopped))
	if len(failures) > 0 {
		klog.Warningf("pod: %s [%s]: stop completed with %d failure(s), logged above", p.d.name, p.d.instanceID, len(failures))
	}
	return nil
}

// IsRunning delegates to the configured workload.Manager.
func (p *Pod) IsRunning(ctx context.Context) (bool, error) {
	if p.d.workload == nil {
		return false, nil
	}
	return p.d.workload.IsRunning(ctx)
}

// IsReady delegates to the configured workload.Manager.
func (p *Pod) IsReady(ctx context.Context) (bool, error) {
	if p.d.workload == nil {
		return false, nil
	}
	return p.d.workload.IsReady(ctx)
}

// GetExternalHost returns the host-reachable hostname/IP discovered after
// a successful Start. Calling it outside the ready window is a
// precondition error, not a placeholder.
func (p *Pod) GetExternalHost() (string, error) {
	hp, err := p.externalEndpoint()
	if err != nil {
		return "", err
	}
	return hp.Host(), nil
}

// GetExternalPort returns the host-reachable port discovered after a
// successful Start. Calling it outside the ready window is a precondition
// error, not a placeholder.
func (p *Pod) GetExternalPort() (int, error) {
	hp, err := p.externalEndpoint()
	if err != nil {
		return 0, err
	}
	return hp.Port(), nil
}

func (p *Pod) externalEndpoint() (hostport.HostAndPort, error) {
	if State(p.state.Load()) != stateReady {
		return hostport.HostAndPort{}, wrapErr(ErrPrecondition, p.d.name, p.d.namespace, "external-endpoint",
			fmt.Errorf("pod is not ready (state: %s)", State(p.state.Load())))
	}
	p.mu.Lock()
	hp := p.endpoint
	p.mu.Unlock()
	if hp.IsZero() {
		return hostport.HostAndPort{}, wrapErr(ErrPrecondition, p.d.name, p.d.namespace, "external-endpoint",
			fmt.Errorf("pod has no service configured, so it has no external endpoint"))
	}
	return hp, nil
}

// resolveCluster resolves the cluster in tier order: the descriptor's
// explicit override, then a Scope attached to ctx, then an empty ad-hoc
// Scope (which itself falls through to defaults.Global and any configured
// auto-discovery supplier).
func (p *Pod) resolveCluster(ctx context.Context) (cluster.Handle, error) {
	if p.d.cluster != nil {
		return p.d.cluster, nil
	}
	if scope, ok := defaults.FromContext(ctx); ok {
		return scope.ResolveCluster()
	}
	return defaults.NewScope().ResolveCluster()
}

// resolveNamespace resolves the namespace in tier order: the descriptor's
// explicit namespace, then the shared namespace of the Scope attached to
// ctx (or of an empty ad-hoc Scope, which falls through to
// defaults.Global), then a namespace derived from this pod's name as a
// stand-in test identity.
func (p *Pod) resolveNamespace(ctx context.Context) (string, error) {
	if p.d.namespace != "" {
		return nsname.Fixed(p.d.namespace)
	}
	scope, ok := defaults.FromContext(ctx)
	if !ok {
		scope = defaults.NewScope()
	}
	if ns := scope.ResolveNamespace(); ns != "" {
		return ns, nil
	}
	return nsname.ForTestClass(p.d.name)
}

func canonicalLabels(name string, extra map[string]string) map[string]string {
	out := map[string]string{
		"app":        name,
		"managed-by": "testpods",
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func firstPort(ports []int32) int32 {
	if len(ports) == 0 {
		return 0
	}
	return ports[0]
}

// materializeFiles renders every attached FileMaterial into a ConfigMap,
// creates it, records its rollback, and folds the resulting Manager into
// the pod's effective storage composition.
func (p *Pod) materializeFiles(ctx context.Context, client kubernetes.Interface, namespace string, labels map[string]string) (storage.Manager, error) {
	managers := []storage.Manager{p.d.storage}
	for _, attachment := range p.d.fileMaterials {
		cm, mgr := attachment.material.Render(p.d.name, labels)
		created, err := client.CoreV1().ConfigMaps(namespace).Create(ctx, cm, metav1.CreateOptions{})
		if err != nil {
			return nil, fmt.Errorf("create configmap %s: %w", cm.Name, err)
		}
		name := created.Name
		p.addRollback("configmap/"+name, func(ctx context.Context) error {
			return client.CoreV1().ConfigMaps(namespace).Delete(ctx, name, metav1.DeleteOptions{})
		})
		managers = append(managers, mgr)
	}
	if len(managers) == 1 {
		return managers[0], nil
	}
	return storage.NewComposite(managers...), nil
}

func (p *Pod) createStandaloneClaims(ctx context.Context, client kubernetes.Interface, namespace string, labels map[string]string, mgr storage.Manager) error {
	for _, claim := range mgr.StandaloneClaims() {
		size, err := resource.ParseQuantity(claim.Size)
		if err != nil {
			return fmt.Errorf("standalone claim %s: parse size %q: %w", claim.Name, claim.Size, err)
		}
		pvc := &corev1.PersistentVolumeClaim{
			ObjectMeta: metav1.ObjectMeta{Name: claim.Name, Namespace: namespace, Labels: labels},
			Spec: corev1.PersistentVolumeClaimSpec{
				AccessModes: claim.AccessModes,
				Resources: corev1.VolumeResourceRequirements{
					Requests: corev1.ResourceList{corev1.ResourceStorage: size},
				},
			},
		}
		if claim.StorageClass != "" {
			pvc.Spec.StorageClassName = &claim.StorageClass
		}
		if _, err := client.CoreV1().PersistentVolumeClaims(namespace).Create(ctx, pvc, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("create pvc %s: %w", claim.Name, err)
		}
		name := claim.Name
		p.addRollback("pvc/"+name, func(ctx context.Context) error {
			return client.CoreV1().PersistentVolumeClaims(namespace).Delete(ctx, name, metav1.DeleteOptions{})
		})
	}
	return nil
}

// buildPodTemplate renders the container + pod template spec from the
// descriptor and the effective storage manager, applying customizers last.
func (p *Pod) buildPodTemplate(storageMgr storage.Manager) corev1.PodTemplateSpec {
	var containerPorts []corev1.ContainerPort
	for _, port := range p.d.ports {
		containerPorts = append(containerPorts, corev1.ContainerPort{ContainerPort: port})
	}
	var env []corev1.EnvVar
	for k, v := range p.d.env {
		env = append(env, corev1.EnvVar{Name: k, Value: v})
	}

	container := corev1.Container{
		Name:         p.d.containerName,
		Image:        p.d.image,
		Ports:        containerPorts,
		Env:          env,
		VolumeMounts: storageMgr.MountsFor(p.d.containerName),
	}
	for _, customize := range p.d.containerCustomizers {
		customize(&container)
	}

	template := corev1.PodTemplateSpec{
		ObjectMeta: metav1.ObjectMeta{
			Labels:      canonicalLabels(p.d.name, p.d.labels),
			Annotations: p.d.annotations,
		},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{container},
			Volumes:    storageMgr.Volumes(),
		},
	}
	for _, customize := range p.d.templateCustomizers {
		customize(&template)
	}
	return template
}
