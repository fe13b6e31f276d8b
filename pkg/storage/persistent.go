package storage

import (
	corev1 "k8s.io/api/core/v1"
)

// Persistent backs a single mount with a PersistentVolumeClaim: a claim
// template when the owning workload is ordered, or a standalone claim
// created ahead of time when it is stateless. Ordered/stateless selection
// happens at the call site (pkg/pod), not here — Persistent always
// reports both shapes via ClaimTemplates()/StandaloneClaims() and the
// orchestrator picks the one matching the chosen workload.Manager.
type Persistent struct {
	volumeName   string
	mountPath    string
	readOnly     bool
	size         string
	storageClass string
	accessModes  []corev1.PersistentVolumeAccessMode
}

// NewPersistent builds a Persistent storage manager. accessModes defaults
// to ReadWriteOnce when empty, matching the spec's default.
func NewPersistent(volumeName, mountPath, size, storageClass string, accessModes ...corev1.PersistentVolumeAccessMode) *Persistent {
	if len(accessModes) == 0 {
		accessModes = []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce}
	}
	return &Persistent{
		volumeName:   volumeName,
		mountPath:    mountPath,
		size:         size,
		storageClass: storageClass,
		accessModes:  accessModes,
	}
}

// Volumes returns a volume entry that refers to a PVC of the same name;
// for ordered workloads the claim template supplies it, for stateless ones
// the standalone claim does — the actual name resolution happens at the
// claim-name level, both of which equal volumeName by construction.
func (p *Persistent) Volumes() []corev1.Volume {
	return []corev1.Volume{{
		Name: p.volumeName,
		VolumeSource: corev1.VolumeSource{
			PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{
				ClaimName: p.volumeName,
				ReadOnly:  p.readOnly,
			},
		},
	}}
}

func (p *Persistent) MountsFor(containerName string) []corev1.VolumeMount {
	return []corev1.VolumeMount{{
		Name:      p.volumeName,
		MountPath: p.mountPath,
		ReadOnly:  p.readOnly,
	}}
}

// ClaimTemplates returns the single claim template for ordered workloads.
// The name always equals the volume name (invariant enforced here, at
// build time).
func (p *Persistent) ClaimTemplates() []PVCTemplate {
	return []PVCTemplate{{
		Name:         p.volumeName,
		AccessModes:  p.accessModes,
		Size:         p.size,
		StorageClass: p.storageClass,
	}}
}

// StandaloneClaims returns the single standalone PVC for stateless
// workloads. The name always equals the volume name.
func (p *Persistent) StandaloneClaims() []StandaloneClaim {
	return []StandaloneClaim{{
		Name:         p.volumeName,
		AccessModes:  p.accessModes,
		Size:         p.size,
		StorageClass: p.storageClass,
	}}
}
