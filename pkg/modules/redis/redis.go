// Package redis is an illustrative module built on pkg/pod: it provisions
// a single-container Redis pod and verifies connectivity with go-redis once
// the orchestrator reports the pod ready.
package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	corev1 "k8s.io/api/core/v1"

	"github.com/testpods-go/testpods/pkg/pod"
	"github.com/testpods-go/testpods/pkg/svc"
	"github.com/testpods-go/testpods/pkg/wait"
)

const (
	defaultImage  = "redis:7-alpine"
	containerPort = 6379
)

// Module wraps a provisioned Redis test pod.
type Module struct {
	pod *pod.Pod
}

// Option configures a Module at construction time.
type Option func(*config)

type config struct {
	image   string
	args    []string
	builder func(*pod.Builder)
}

// WithImage overrides the default redis image.
func WithImage(image string) Option {
	return func(c *config) { c.image = image }
}

// WithArgs appends extra redis-server command-line arguments, e.g.
// "--requirepass", "secret".
func WithArgs(args ...string) Option {
	return func(c *config) { c.args = append(c.args, args...) }
}

// WithBuilder applies an arbitrary customization to the underlying
// pod.Builder before Build.
func WithBuilder(fn func(*pod.Builder)) Option {
	return func(c *config) { c.builder = fn }
}

// New builds (but does not start) a Redis test pod named name.
func New(name string, opts ...Option) (*Module, error) {
	c := &config{image: defaultImage}
	for _, opt := range opts {
		opt(c)
	}

	builder := pod.New(name).
		WithImage(c.image).
		WithPort(containerPort).
		WithStatelessWorkload(1).
		WithService(svc.NewNodePort(0)).
		WithWaitStrategy(wait.ForTCP(fmt.Sprintf("%s:%d", name, containerPort)))

	if len(c.args) > 0 {
		builder = builder.WithPodTemplateCustomizer(func(template *corev1.PodTemplateSpec) {
			for i := range template.Spec.Containers {
				template.Spec.Containers[i].Args = c.args
			}
		})
	}
	if c.builder != nil {
		c.builder(builder)
	}

	p, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &Module{pod: p}, nil
}

// Start provisions the pod and blocks until Redis accepts TCP connections.
func (m *Module) Start(ctx context.Context) error { return m.pod.Start(ctx) }

// Stop tears down the pod.
func (m *Module) Stop(ctx context.Context) error { return m.pod.Stop(ctx) }

// Addr returns the host:port string go-redis expects, valid only after
// Start has returned successfully.
func (m *Module) Addr() (string, error) {
	host, err := m.pod.GetExternalHost()
	if err != nil {
		return "", err
	}
	port, err := m.pod.GetExternalPort()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", host, port), nil
}

// Client builds a go-redis client pointed at the running pod.
func (m *Module) Client() (*goredis.Client, error) {
	addr, err := m.Addr()
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{Addr: addr}), nil
}

// Ping verifies connectivity by round-tripping a PING through client.
func Ping(ctx context.Context, client *goredis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}
