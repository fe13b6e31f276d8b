package svc

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// nodePortManager allocates a host-reachable port on every cluster node.
// Required when the test process lives outside the cluster.
type nodePortManager struct {
	cached    *corev1.Service
	namespace string
	name      string
	cfg       Config
	nodePort  int32 // 0 means auto-assign (typical range 30000-32767)
}

// NewNodePort builds a NodePort service manager. nodePort may be 0 to let
// the cluster auto-assign from its configured range.
func NewNodePort(nodePort int32) Manager {
	return &nodePortManager{nodePort: nodePort}
}

func (m *nodePortManager) Create(ctx context.Context, cfg Config) (*corev1.Service, error) {
	svc := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      cfg.Name,
			Namespace: cfg.Namespace,
			Labels:    canonicalLabels(cfg.Name, cfg.Labels),
		},
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceTypeNodePort,
			Selector: cfg.Selector,
			Ports: []corev1.ServicePort{{
				Port:       cfg.Port,
				TargetPort: intOrStringFromInt32(cfg.TargetPort),
				NodePort:   m.nodePort,
			}},
		},
	}
	applyCustomizers(svc, cfg.Customizers)

	created, err := cfg.Client.CoreV1().Services(cfg.Namespace).Create(ctx, svc, metav1.CreateOptions{})
	if err != nil {
		return nil, err
	}
	m.cached = created
	m.namespace = cfg.Namespace
	m.name = created.Name
	m.cfg = cfg
	return created, nil
}

func (m *nodePortManager) Delete(ctx context.Context) error {
	if m.cached == nil {
		return nil
	}
	return deleteService(ctx, m.cfg.Client, m.namespace, m.name)
}

func (m *nodePortManager) Service() *corev1.Service { return m.cached }
func (m *nodePortManager) Name() string             { return m.name }
func (m *nodePortManager) Kind() string             { return "NodePort" }

// AllocatedPort returns the NodePort the cluster assigned (or the
// explicitly requested one), valid only after Create succeeds.
func (m *nodePortManager) AllocatedPort() int32 {
	if m.cached == nil || len(m.cached.Spec.Ports) == 0 {
		return 0
	}
	return m.cached.Spec.Ports[0].NodePort
}
