package storage

import corev1 "k8s.io/api/core/v1"

// ConfigMap backs a single read-only mount with an existing (or
// orchestrator-created) ConfigMap.
type ConfigMap struct {
	volumeName    string
	configMapName string
	mountPath     string
}

// NewConfigMap builds a ConfigMap storage manager referencing an
// already-named ConfigMap (the orchestrator creates it ahead of the
// workload when the name is derived, e.g. via FileMaterial).
func NewConfigMap(volumeName, configMapName, mountPath string) *ConfigMap {
	return &ConfigMap{volumeName: volumeName, configMapName: configMapName, mountPath: mountPath}
}

func (c *ConfigMap) Volumes() []corev1.Volume {
	return []corev1.Volume{{
		Name: c.volumeName,
		VolumeSource: corev1.VolumeSource{
			ConfigMap: &corev1.ConfigMapVolumeSource{
				LocalObjectReference: corev1.LocalObjectReference{Name: c.configMapName},
			},
		},
	}}
}

func (c *ConfigMap) MountsFor(containerName string) []corev1.VolumeMount {
	return []corev1.VolumeMount{{Name: c.volumeName, MountPath: c.mountPath, ReadOnly: true}}
}

func (c *ConfigMap) ClaimTemplates() []PVCTemplate       { return nil }
func (c *ConfigMap) StandaloneClaims() []StandaloneClaim { return nil }
