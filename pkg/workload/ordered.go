package workload

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/testpods-go/testpods/pkg/storage"
)

// Ordered is the StatefulSet-style manager: replicas have stable
// identities and start in order (0, 1, 2, ...), requiring a headless
// service for pod DNS.
type Ordered struct {
	cfg     Config
	created bool
}

// NewOrdered builds an Ordered workload manager.
func NewOrdered() *Ordered {
	return &Ordered{}
}

func (o *Ordered) Create(ctx context.Context, cfg Config) error {
	if cfg.ServiceName == "" {
		return fmt.Errorf("workload: ordered workload %s requires a headless ServiceName", cfg.Name)
	}

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

	claims, err := claimTemplates(cfg.ClaimTemplates)
	if err != nil {
		return fmt.Errorf("workload: ordered workload %s: %w", cfg.Name, err)
	}

	sts := &appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{
			Name:      cfg.Name,
			Namespace: cfg.Namespace,
			Labels:    labels,
		},
		Spec: appsv1.StatefulSetSpec{
			Replicas:             &replicas,
			ServiceName:          cfg.ServiceName,
			Selector:             &metav1.LabelSelector{MatchLabels: selector},
			Template:             template,
			VolumeClaimTemplates: claims,
		},
	}

	_, err = cfg.Client.AppsV1().StatefulSets(cfg.Namespace).Create(ctx, sts, metav1.CreateOptions{})
	if err != nil {
		return fmt.Errorf("workload: create statefulset %s/%s: %w", cfg.Namespace, cfg.Name, err)
	}
	o.cfg = cfg
	o.created = true
	return nil
}

// claimTemplates converts storage.PVCTemplate into corev1
// PersistentVolumeClaim templates, enforcing that each template's name is
// non-empty (the volume-name equality invariant is enforced upstream, at
// storage.Manager construction — this just renders it).
func claimTemplates(in []storage.PVCTemplate) ([]corev1.PersistentVolumeClaim, error) {
	out := make([]corev1.PersistentVolumeClaim, 0, len(in))
	for _, t := range in {
		if t.Name == "" {
			return nil, fmt.Errorf("claim template missing name")
		}
		size, err := resource.ParseQuantity(t.Size)
		if err != nil {
			return nil, fmt.Errorf("claim template %s: parse size %q: %w", t.Name, t.Size, err)
		}
		pvc := corev1.PersistentVolumeClaim{
			ObjectMeta: metav1.ObjectMeta{Name: t.Name},
			Spec: corev1.PersistentVolumeClaimSpec{
				AccessModes: t.AccessModes,
				Resources: corev1.VolumeResourceRequirements{
					Requests: corev1.ResourceList{corev1.ResourceStorage: size},
				},
			},
		}
		if t.StorageClass != "" {
			pvc.Spec.StorageClassName = &t.StorageClass
		}
		out = append(out, pvc)
	}
	return out, nil
}

// Delete removes the StatefulSet. PVCs created from VolumeClaimTemplates
// are not auto-deleted (typical user expectation) — the namespace-scoped
// cleanup reclaims them.
func (o *Ordered) Delete(ctx context.Context) error {
	if !o.created {
		return nil
	}
	err := o.cfg.Client.AppsV1().StatefulSets(o.cfg.Namespace).Delete(ctx, o.cfg.Name, metav1.DeleteOptions{})
	o.created = false
	if err != nil {
		return fmt.Errorf("workload: delete statefulset %s/%s: %w", o.cfg.Namespace, o.cfg.Name, err)
	}
	return nil
}

func (o *Ordered) IsRunning(ctx context.Context) (bool, error) {
	if !o.created {
		return false, nil
	}
	sts, err := o.cfg.Client.AppsV1().StatefulSets(o.cfg.Namespace).Get(ctx, o.cfg.Name, metav1.GetOptions{})
	if err != nil {
		return false, nil
	}
	return sts.Status.Replicas >= 1, nil
}

// IsReady requires all ordinals ready.
func (o *Ordered) IsReady(ctx context.Context) (bool, error) {
	if !o.created {
		return false, nil
	}
	sts, err := o.cfg.Client.AppsV1().StatefulSets(o.cfg.Namespace).Get(ctx, o.cfg.Name, metav1.GetOptions{})
	if err != nil {
		return false, nil
	}
	desired := int32(1)
	if sts.Spec.Replicas != nil {
		desired = *sts.Spec.Replicas
	}
	return desired >= 1 && sts.Status.ReadyReplicas == desired, nil
}

func (o *Ordered) Name() string { return o.cfg.Name }
func (o *Ordered) Kind() string { return "StatefulSet" }

// PodOrdinalName returns the `{workload}-{ordinal}` pod name a StatefulSet
// assigns to ordinal, matching the stable-identity naming convention.
func PodOrdinalName(workload string, ordinal int) string {
	return fmt.Sprintf("%s-%d", workload, ordinal)
}
