package svc

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/klog/v2"
)

// compositeChild pairs a concrete manager with the name suffix applied to
// its Config.Name at Create time (conventionally "" for the first child).
type compositeChild struct {
	manager Manager
	suffix  string
}

// Composite holds an ordered list of concrete managers and a parallel list
// of name suffixes. The first created service is the "primary" returned by
// Service().
type Composite struct {
	children []compositeChild
	primary  *corev1.Service
	baseName string
}

// NewComposite builds an empty Composite. Pass suffix "" to Add for the
// primary manager (conventionally the first).
func NewComposite() *Composite {
	return &Composite{}
}

// Add appends a sub-manager with the given name suffix.
func (c *Composite) Add(manager Manager, suffix string) *Composite {
	c.children = append(c.children, compositeChild{manager: manager, suffix: suffix})
	return c
}

func (c *Composite) Create(ctx context.Context, cfg Config) (*corev1.Service, error) {
	c.baseName = cfg.Name
	for i, child := range c.children {
		childCfg := cfg
		childCfg.Name = cfg.Name + child.suffix
		created, err := child.manager.Create(ctx, childCfg)
		if err != nil {
			// Roll back already-created siblings in reverse order.
			for j := i - 1; j >= 0; j-- {
				if delErr := c.children[j].manager.Delete(ctx); delErr != nil {
					klog.Warningf("svc: composite rollback delete failed: %v", delErr)
				}
			}
			return nil, fmt.Errorf("svc: composite: create %s: %w", childCfg.Name, err)
		}
		if i == 0 {
			c.primary = created
		}
	}
	return c.primary, nil
}

// Delete deletes sub-managers in reverse order; individual failures are
// logged and swallowed.
func (c *Composite) Delete(ctx context.Context) error {
	for i := len(c.children) - 1; i >= 0; i-- {
		if err := c.children[i].manager.Delete(ctx); err != nil {
			klog.Warningf("svc: composite: delete child %d failed: %v", i, err)
		}
	}
	return nil
}

func (c *Composite) Service() *corev1.Service { return c.primary }
func (c *Composite) Name() string             { return c.baseName }
func (c *Composite) Kind() string             { return "Composite" }

// Children exposes the configured sub-managers for introspection (e.g. the
// orchestrator needing the Headless child's name to hand to an ordered
// workload).
func (c *Composite) Children() []Manager {
	out := make([]Manager, len(c.children))
	for i, child := range c.children {
		out[i] = child.manager
	}
	return out
}
