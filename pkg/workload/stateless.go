package workload

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Stateless is the Deployment-style manager: interchangeable replicas
// scheduled by label selector.
type Stateless struct {
	cfg     Config
	created bool
}

// NewStateless builds a Stateless workload manager.
func NewStateless() *Stateless {
	return &Stateless{}
}

func (s *Stateless) Create(ctx context.Context, cfg Config) error {
	labels := canonicalLabels(cfg.Name, cfg.Labels)
	selector := cfg.Selector
	if selector == nil {
		selector = map[string]string{"app": cfg.Name}
	}

	template := cfg.Template
	if template.Labels == nil {
		template.Labels = map[string]string{}
	}
	for k, v := range labels {
		template.Labels[k] = v
	}

	replicas := cfg.Replicas
	if replicas <= 0 {
		replicas = 1
	}

	deployment := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      cfg.Name,
			Namespace: cfg.Namespace,
			Labels:    labels,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: selector},
			Template: template,
		},
	}

	_, err := cfg.Client.AppsV1().Deployments(cfg.Namespace).Create(ctx, deployment, metav1.CreateOptions{})
	if err != nil {
		return fmt.Errorf("workload: create deployment %s/%s: %w", cfg.Namespace, cfg.Name, err)
	}
	s.cfg = cfg
	s.created = true
	return nil
}

func (s *Stateless) Delete(ctx context.Context) error {
	if !s.created {
		return nil
	}
	err := s.cfg.Client.AppsV1().Deployments(s.cfg.Namespace).Delete(ctx, s.cfg.Name, metav1.DeleteOptions{})
	s.created = false
	if err != nil {
		return fmt.Errorf("workload: delete deployment %s/%s: %w", s.cfg.Namespace, s.cfg.Name, err)
	}
	return nil
}

// IsRunning reports true once at least one replica exists.
func (s *Stateless) IsRunning(ctx context.Context) (bool, error) {
	if !s.created {
		return false, nil
	}
	d, err := s.cfg.Client.AppsV1().Deployments(s.cfg.Namespace).Get(ctx, s.cfg.Name, metav1.GetOptions{})
	if err != nil {
		return false, nil
	}
	return d.Status.Replicas >= 1, nil
}

// IsReady reports true when desired replicas equals ready replicas and
// both are at least 1.
func (s *Stateless) IsReady(ctx context.Context) (bool, error) {
	if !s.created {
		return false, nil
	}
	d, err := s.cfg.Client.AppsV1().Deployments(s.cfg.Namespace).Get(ctx, s.cfg.Name, metav1.GetOptions{})
	if err != nil {
		return false, nil
	}
	desired := int32(1)
	if d.Spec.Replicas != nil {
		desired = *d.Spec.Replicas
	}
	return desired >= 1 && d.Status.ReadyReplicas == desired, nil
}

func (s *Stateless) Name() string { return s.cfg.Name }
func (s *Stateless) Kind() string { return "Deployment" }
