// Package storage implements the StorageManager family: None, Persistent,
// EmptyDir, ConfigMap, Secret, Composite, and the generalized FileMaterial
// init-script variant, producing volumes, mounts, and PVC templates that
// the workload composition layer wires into a Deployment or StatefulSet
// pod template.
package storage

import (
	corev1 "k8s.io/api/core/v1"
)

// PVCTemplate is a claim template handed to an ordered (StatefulSet-style)
// workload; its Name always equals the referencing volume's name (enforced
// at construction, not at apply time).
type PVCTemplate struct {
	Name         string
	AccessModes  []corev1.PersistentVolumeAccessMode
	Size         string // e.g. "1Gi"
	StorageClass string
}

// StandaloneClaim is a PVC created directly (not from a template) for a
// stateless (Deployment-style) workload; its Name always equals the
// referencing volume's name.
type StandaloneClaim struct {
	Name         string
	AccessModes  []corev1.PersistentVolumeAccessMode
	Size         string
	StorageClass string
}

// Manager decomposes a pod's storage requirements into cluster-ready
// pieces. Implementations must guarantee, at construction time, that every
// Volume returned has a name matching the VolumeMount that references it.
type Manager interface {
	// Volumes returns the pod-level volumes this manager contributes.
	Volumes() []corev1.Volume

	// MountsFor returns the container-level mounts for the named
	// container.
	MountsFor(containerName string) []corev1.VolumeMount

	// ClaimTemplates returns PVC templates for ordered (StatefulSet-style)
	// workloads. Empty for variants that don't need one.
	ClaimTemplates() []PVCTemplate

	// StandaloneClaims returns PVCs to create directly for stateless
	// (Deployment-style) workloads, before the workload is created.
	StandaloneClaims() []StandaloneClaim
}

// None is the zero-storage variant: no volumes, mounts, claims.
type None struct{}

func (None) Volumes() []corev1.Volume             { return nil }
func (None) MountsFor(string) []corev1.VolumeMount { return nil }
func (None) ClaimTemplates() []PVCTemplate         { return nil }
func (None) StandaloneClaims() []StandaloneClaim   { return nil }
