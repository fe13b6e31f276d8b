package pod

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	corev1 "k8s.io/api/core/v1"

	"github.com/testpods-go/testpods/pkg/cluster"
	"github.com/testpods-go/testpods/pkg/storage"
	"github.com/testpods-go/testpods/pkg/svc"
	"github.com/testpods-go/testpods/pkg/telemetry"
	"github.com/testpods-go/testpods/pkg/wait"
	"github.com/testpods-go/testpods/pkg/workload"
)

const (
	defaultOrderedDeadline   = 2 * time.Minute
	defaultStatelessDeadline = 1 * time.Minute
)

// descriptor is the immutable-after-Build snapshot a Pod carries: name,
// image, ports, env, labels, annotations, and references to the three
// composed component families plus a wait.Strategy. Per spec.md §9, none
// of the managers it composes holds a back-reference to it — the
// Orchestrator is the sole owner and passes value-typed Config snapshots
// into each manager on every Start.
type descriptor struct {
	name          string
	namespace     string // explicit override; empty means resolve via Scope/derivation
	image         string
	containerName string
	ports         []int32
	env           map[string]string
	labels        map[string]string
	annotations   map[string]string
	replicas      int32

	workload workload.Manager
	ordered  bool // true selects StatefulSet-style composition semantics
	service  svc.Manager
	storage  storage.Manager
	wait     wait.Strategy

	fileMaterials []materialAttachment

	deadline time.Duration // 0 means workload-kind default
	cluster  cluster.Handle // explicit override; nil means resolve via Scope/Global

	containerCustomizers []func(*corev1.Container)
	templateCustomizers  []func(*corev1.PodTemplateSpec)
	serviceCustomizers   []svc.Customizer

	metrics *telemetry.Metrics // nil means no instrumentation

	instanceID uuid.UUID // correlates log lines across one Start/Stop lifecycle
}

type materialAttachment struct {
	material *storage.FileMaterial
}

// Builder constructs a descriptor through a fluent, owned, mutable chain
// that finalizes into an immutable Pod on Build — per spec.md §9's
// "builder-with-customizers" design note.
type Builder struct {
	d *descriptor
}

// New starts building a pod named name. name becomes the workload,
// service, and (by default) container name.
func New(name string) *Builder {
	return &Builder{
		d: &descriptor{
			name:          name,
			containerName: name,
			replicas:      1,
			storage:       storage.None{},
			labels:        map[string]string{},
			annotations:   map[string]string{},
			env:           map[string]string{},
			instanceID:    uuid.New(),
		},
	}
}

// WithImage sets the container image.
func (b *Builder) WithImage(image string) *Builder {
	b.d.image = image
	return b
}

// WithContainerName overrides the container name (defaults to the pod name).
func (b *Builder) WithContainerName(name string) *Builder {
	b.d.containerName = name
	return b
}

// WithPort appends a container port to expose.
func (b *Builder) WithPort(port int32) *Builder {
	b.d.ports = append(b.d.ports, port)
	return b
}

// WithEnv sets an environment variable on the container.
func (b *Builder) WithEnv(key, value string) *Builder {
	b.d.env[key] = value
	return b
}

// WithLabels merges extra labels onto every resource this pod creates, in
// addition to the canonical app/managed-by labels every manager already
// attaches.
func (b *Builder) WithLabels(labels map[string]string) *Builder {
	for k, v := range labels {
		b.d.labels[k] = v
	}
	return b
}

// WithAnnotations merges extra annotations onto the pod template.
func (b *Builder) WithAnnotations(annotations map[string]string) *Builder {
	for k, v := range annotations {
		b.d.annotations[k] = v
	}
	return b
}

// WithNamespace pins an explicit namespace, skipping Scope/default
// resolution entirely. Validated against nsname.Fixed when Start resolves
// the namespace.
func (b *Builder) WithNamespace(namespace string) *Builder {
	b.d.namespace = namespace
	return b
}

// WithCluster pins an explicit cluster.Handle, skipping Scope/Global
// resolution entirely. Mainly useful for tests driving a fake clientset.
func (b *Builder) WithCluster(handle cluster.Handle) *Builder {
	b.d.cluster = handle
	return b
}

// WithStatelessWorkload selects Deployment-style composition with the
// given replica count (defaults to 1 when <= 0).
func (b *Builder) WithStatelessWorkload(replicas int32) *Builder {
	if replicas <= 0 {
		replicas = 1
	}
	b.d.workload = workload.NewStateless()
	b.d.ordered = false
	b.d.replicas = replicas
	return b
}

// WithOrderedWorkload selects StatefulSet-style composition with the given
// replica count (defaults to 1 when <= 0). Requires a Headless service
// among b's configured services; Build rejects otherwise.
func (b *Builder) WithOrderedWorkload(replicas int32) *Builder {
	if replicas <= 0 {
		replicas = 1
	}
	b.d.workload = workload.NewOrdered()
	b.d.ordered = true
	b.d.replicas = replicas
	return b
}

// WithService attaches the ServiceManager exposing this pod's endpoint(s).
func (b *Builder) WithService(manager svc.Manager) *Builder {
	b.d.service = manager
	return b
}

// WithStorage attaches the StorageManager backing this pod's volumes.
func (b *Builder) WithStorage(manager storage.Manager) *Builder {
	b.d.storage = manager
	return b
}

// WithFileMaterial attaches a generalized init-material ConfigMap: the
// orchestrator creates the rendered ConfigMap and wires its Volume/Mount
// into the pod template as a single unit before the workload is created
// (spec.md §4.1 step 2 / §9's Open Question, resolved in favor of this
// generalized shape).
func (b *Builder) WithFileMaterial(material *storage.FileMaterial) *Builder {
	b.d.fileMaterials = append(b.d.fileMaterials, materialAttachment{material: material})
	return b
}

// WithServiceCustomizer appends a pure transformation applied to every
// Service this pod creates, in order, just before creation — per spec.md
// §4.3, how a pod tunes timing, selectors, or load-balancer class without
// the ServiceManager needing to know about every knob.
func (b *Builder) WithServiceCustomizer(fn svc.Customizer) *Builder {
	b.d.serviceCustomizers = append(b.d.serviceCustomizers, fn)
	return b
}

// WithWaitStrategy attaches the readiness gate Start blocks on.
func (b *Builder) WithWaitStrategy(strategy wait.Strategy) *Builder {
	b.d.wait = strategy
	return b
}

// WithDeadline overrides the default wait-strategy deadline (2m for
// ordered workloads, 1m for stateless).
func (b *Builder) WithDeadline(d time.Duration) *Builder {
	b.d.deadline = d
	return b
}

// WithContainerCustomizer appends a pure transformation applied to the
// rendered container before the workload is created.
func (b *Builder) WithContainerCustomizer(fn func(*corev1.Container)) *Builder {
	b.d.containerCustomizers = append(b.d.containerCustomizers, fn)
	return b
}

// WithPodTemplateCustomizer appends a pure transformation applied to the
// rendered pod template before the workload is created.
func (b *Builder) WithPodTemplateCustomizer(fn func(*corev1.PodTemplateSpec)) *Builder {
	b.d.templateCustomizers = append(b.d.templateCustomizers, fn)
	return b
}

// WithTelemetry attaches a metrics sink the orchestrator reports start,
// stop, and wait-strategy durations into. A Pod never constructed with one
// reports nothing — instrumentation is opt-in.
func (b *Builder) WithTelemetry(metrics *telemetry.Metrics) *Builder {
	b.d.metrics = metrics
	return b
}

// Build freezes the descriptor into a Pod, validating required fields. A
// missing name, image, or workload choice is an ErrConfiguration failure —
// caught here, before any cluster call is made.
func (b *Builder) Build() (*Pod, error) {
	d := b.d
	if d.name == "" {
		return nil, wrapErr(ErrConfiguration, d.name, d.namespace, "build", fmt.Errorf("pod name is required"))
	}
	if d.image == "" {
		return nil, wrapErr(ErrConfiguration, d.name, d.namespace, "build", fmt.Errorf("pod image is required"))
	}
	if d.workload == nil {
		return nil, wrapErr(ErrConfiguration, d.name, d.namespace, "build", fmt.Errorf("no workload selected: call WithStatelessWorkload or WithOrderedWorkload"))
	}
	if d.ordered {
		if _, ok := headlessChild(d.service); !ok {
			return nil, wrapErr(ErrConfiguration, d.name, d.namespace, "build", fmt.Errorf("ordered workload requires a Headless service (directly, or as a Composite child)"))
		}
	}
	if len(d.name) > 52 {
		// Deployment/StatefulSet names feed pod-name generation
		// ("{name}-{hash}" or "{name}-{ordinal}"); Kubernetes caps pod
		// names at 63 chars, so the controller name itself must leave
		// room for that suffix.
		return nil, wrapErr(ErrConfiguration, d.name, d.namespace, "build", fmt.Errorf("pod name %q too long: workload-controller names must leave room for the generated pod-name suffix", d.name))
	}
	// d.wait may stay nil here: Start defaults an unconfigured wait
	// strategy to a ReadinessProbe against the workload itself, the
	// cheapest signal available, since the workload doesn't exist yet
	// at Build time.
	if d.deadline <= 0 {
		if d.ordered {
			d.deadline = defaultOrderedDeadline
		} else {
			d.deadline = defaultStatelessDeadline
		}
	}
	// atomic.Int32's zero value is 0, which is stateConfigured — no
	// explicit initialization needed.
	return &Pod{d: d}, nil
}

// headlessChild reports whether manager is a Headless service, or a
// Composite containing one.
func headlessChild(manager svc.Manager) (svc.Manager, bool) {
	if manager == nil {
		return nil, false
	}
	if manager.Kind() == "Headless" {
		return manager, true
	}
	if composite, ok := manager.(*svc.Composite); ok {
		for _, child := range composite.Children() {
			if child.Kind() == "Headless" {
				return child, true
			}
		}
	}
	return nil, false
}

// nodePortChild reports whether manager is a NodePort service, or a
// Composite containing one — the sub-manager whose Service() is actually
// resolvable by a node-IP-based ExternalAccessStrategy, as opposed to
// whichever child a Composite happened to create first.
func nodePortChild(manager svc.Manager) (svc.Manager, bool) {
	if manager == nil {
		return nil, false
	}
	if manager.Kind() == "NodePort" {
		return manager, true
	}
	if composite, ok := manager.(*svc.Composite); ok {
		for _, child := range composite.Children() {
			if child.Kind() == "NodePort" {
				return child, true
			}
		}
	}
	return nil, false
}
