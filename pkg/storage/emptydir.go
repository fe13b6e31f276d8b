package storage

import corev1 "k8s.io/api/core/v1"

// EmptyDir backs a single mount with an ephemeral, node-local volume that
// vanishes with the pod.
type EmptyDir struct {
	volumeName string
	mountPath  string
	sizeLimit  string // empty means unbounded
}

// NewEmptyDir builds an EmptyDir storage manager.
func NewEmptyDir(volumeName, mountPath, sizeLimit string) *EmptyDir {
	return &EmptyDir{volumeName: volumeName, mountPath: mountPath, sizeLimit: sizeLimit}
}

func (e *EmptyDir) Volumes() []corev1.Volume {
	src := &corev1.EmptyDirVolumeSource{}
	if e.sizeLimit != "" {
		if q, err := parseQuantity(e.sizeLimit); err == nil {
			src.SizeLimit = &q
		}
	}
	return []corev1.Volume{{
		Name:         e.volumeName,
		VolumeSource: corev1.VolumeSource{EmptyDir: src},
	}}
}

func (e *EmptyDir) MountsFor(containerName string) []corev1.VolumeMount {
	return []corev1.VolumeMount{{Name: e.volumeName, MountPath: e.mountPath}}
}

func (e *EmptyDir) ClaimTemplates() []PVCTemplate       { return nil }
func (e *EmptyDir) StandaloneClaims() []StandaloneClaim { return nil }
