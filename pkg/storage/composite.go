package storage

import corev1 "k8s.io/api/core/v1"

// Composite unions an arbitrary number of child storage managers.
type Composite struct {
	children []Manager
}

// NewComposite builds a Composite over children, in order.
func NewComposite(children ...Manager) *Composite {
	return &Composite{children: children}
}

func (c *Composite) Volumes() []corev1.Volume {
	var out []corev1.Volume
	for _, child := range c.children {
		out = append(out, child.Volumes()...)
	}
	return out
}

func (c *Composite) MountsFor(containerName string) []corev1.VolumeMount {
	var out []corev1.VolumeMount
	for _, child := range c.children {
		out = append(out, child.MountsFor(containerName)...)
	}
	return out
}

func (c *Composite) ClaimTemplates() []PVCTemplate {
	var out []PVCTemplate
	for _, child := range c.children {
		out = append(out, child.ClaimTemplates()...)
	}
	return out
}

func (c *Composite) StandaloneClaims() []StandaloneClaim {
	var out []StandaloneClaim
	for _, child := range c.children {
		out = append(out, child.StandaloneClaims()...)
	}
	return out
}
