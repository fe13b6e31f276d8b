package storage

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// File is a single (path, contents) pair rendered into a ConfigMap entry.
// Path is used as the ConfigMap data key (basename only — ConfigMap keys
// can't contain '/').
type File struct {
	Path     string
	Contents []byte
}

// FileMaterial is the generalized init-script storage variant: a list of
// files the orchestrator renders into a ConfigMap plus a read-only Volume
// and Mount, created and wired as a single unit so a pod template never
// references a ConfigMap that doesn't exist yet (see orchestrator step 2).
//
// This replaces a PostgreSQL-specific init-script code path with a shape
// any module can reuse (pkg/modules/postgres does, for its init SQL).
type FileMaterial struct {
	volumeName string
	mountPath  string
	files      []File
}

// NewFileMaterial builds a FileMaterial. volumeName defaults to
// "init-scripts" when empty.
func NewFileMaterial(volumeName, mountPath string, files ...File) *FileMaterial {
	if volumeName == "" {
		volumeName = "init-scripts"
	}
	return &FileMaterial{volumeName: volumeName, mountPath: mountPath, files: files}
}

// ConfigMapName derives the configmap name for podName, following the
// stable `{pod-name}-init` naming convention.
func (f *FileMaterial) ConfigMapName(podName string) string {
	return podName + "-init"
}

// Render produces the ConfigMap the orchestrator must create before any
// pod template mounting it, plus the Manager exposing the matching
// volume/mount for that ConfigMap. Both must be wired together or not at
// all — Render enforces that by construction.
func (f *FileMaterial) Render(podName string, labels map[string]string) (*corev1.ConfigMap, Manager) {
	name := f.ConfigMapName(podName)
	data := make(map[string][]byte, len(f.files))
	for _, file := range f.files {
		data[baseName(file.Path)] = file.Contents
	}
	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:   name,
			Labels: labels,
		},
		BinaryData: data,
	}
	mgr := NewConfigMap(f.volumeName, name, f.mountPath)
	return cm, mgr
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
