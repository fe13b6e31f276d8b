package svc

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// clusterIPManager is the default service manager: assigns an in-cluster
// IP, usable by in-cluster clients.
type clusterIPManager struct {
	cached    *corev1.Service
	namespace string
	name      string
	cfg       Config
}

// NewClusterIP builds a ClusterIP service manager.
func NewClusterIP() Manager {
	return &clusterIPManager{}
}

func (m *clusterIPManager) Create(ctx context.Context, cfg Config) (*corev1.Service, error) {
	svc := &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      cfg.Name,
			Namespace: cfg.Namespace,
			Labels:    canonicalLabels(cfg.Name, cfg.Labels),
		},
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceTypeClusterIP,
			Selector: cfg.Selector,
			Ports: []corev1.ServicePort{{
				Port:       cfg.Port,
				TargetPort: intOrStringFromInt32(cfg.TargetPort),
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

func (m *clusterIPManager) Delete(ctx context.Context) error {
	if m.cached == nil {
		return nil
	}
	return deleteService(ctx, m.cfg.Client, m.namespace, m.name)
}

func (m *clusterIPManager) Service() *corev1.Service { return m.cached }
func (m *clusterIPManager) Name() string             { return m.name }
func (m *clusterIPManager) Kind() string             { return "ClusterIP" }
