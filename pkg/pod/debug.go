package pod

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// debugSnapshot is the subset of a descriptor worth printing for
// troubleshooting a failed test run; it deliberately omits manager
// internals (client handles, cached Service/Deployment objects) that don't
// marshal meaningfully.
type debugSnapshot struct {
	Name       string            `json:"name"`
	Namespace  string            `json:"namespace,omitempty"`
	Image      string            `json:"image"`
	Ports      []int32           `json:"ports,omitempty"`
	Env        map[string]string `json:"env,omitempty"`
	Labels     map[string]string `json:"labels,omitempty"`
	Ordered    bool              `json:"ordered"`
	Replicas   int32             `json:"replicas"`
	State      string            `json:"state"`
	InstanceID string            `json:"instanceId"`
}

// DebugDump renders the Pod's current configuration and state as YAML, for
// attaching to a failed test's output.
func (p *Pod) DebugDump() (string, error) {
	snapshot := debugSnapshot{
		Name:       p.d.name,
		Namespace:  p.d.namespace,
		Image:      p.d.image,
		Ports:      p.d.ports,
		Env:        p.d.env,
		Labels:     p.d.labels,
		Ordered:    p.d.ordered,
		Replicas:   p.d.replicas,
		State:      p.State().String(),
		InstanceID: p.d.instanceID.String(),
	}
	out, err := yaml.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("pod: debug dump: %w", err)
	}
	return string(out), nil
}
