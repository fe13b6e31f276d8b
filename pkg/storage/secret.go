package storage

import corev1 "k8s.io/api/core/v1"

// Secret backs a single read-only mount with an existing Secret.
type Secret struct {
	volumeName string
	secretName string
	mountPath  string
}

// NewSecret builds a Secret storage manager.
func NewSecret(volumeName, secretName, mountPath string) *Secret {
	return &Secret{volumeName: volumeName, secretName: secretName, mountPath: mountPath}
}

func (s *Secret) Volumes() []corev1.Volume {
	return []corev1.Volume{{
		Name: s.volumeName,
		VolumeSource: corev1.VolumeSource{
			Secret: &corev1.SecretVolumeSource{SecretName: s.secretName},
		},
	}}
}

func (s *Secret) MountsFor(containerName string) []corev1.VolumeMount {
	return []corev1.VolumeMount{{Name: s.volumeName, MountPath: s.mountPath, ReadOnly: true}}
}

func (s *Secret) ClaimTemplates() []PVCTemplate       { return nil }
func (s *Secret) StandaloneClaims() []StandaloneClaim { return nil }
