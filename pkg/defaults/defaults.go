// Package defaults implements the ambient, scope-partitioned resolution of
// "the cluster" and "the shared namespace" so parallel tests don't clobber
// each other. Go has no inheritable thread-local primitive, so §4.7's
// thread-scoped Defaults is realized here as an explicit Scope value a
// framework adapter creates once per test, plus a context.Context carrier
// for call paths that already thread a Context (see SPEC_FULL.md Open
// Question O1).
package defaults

import (
	"context"
	"sync"

	"github.com/testpods-go/testpods/pkg/cluster"
)

// ClusterSupplier lazily resolves a cluster.Handle, e.g. by auto-discovery
// against local cluster tooling.
type ClusterSupplier func() (cluster.Handle, error)

// Scope holds the thread-scoped overrides for one logical "thread" (a test,
// or a goroutine derived from one via Fork). A Scope is safe for concurrent
// reads but a single value must not be mutated concurrently — mirroring the
// single-owner contract of a real thread-local.
type Scope struct {
	mu        sync.RWMutex
	cluster   ClusterSupplier
	namespace string
}

// NewScope creates an empty Scope. Framework adapters call this once when
// entering a test's lifecycle.
func NewScope() *Scope {
	return &Scope{}
}

// SetCluster overrides the cluster supplier for this scope.
func (s *Scope) SetCluster(supplier ClusterSupplier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cluster = supplier
}

// SetNamespace overrides the shared namespace for this scope.
func (s *Scope) SetNamespace(namespace string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.namespace = namespace
}

// Clear removes this scope's overrides. It does not affect any Scope
// derived from it via Fork, nor any parent it was forked from.
func (s *Scope) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cluster = nil
	s.namespace = ""
}

// Fork snapshots this scope's current overrides into a new, independent
// Scope — the mechanism by which a child goroutine "inherits" its parent's
// thread-scoped entries at spawn time. Subsequent mutations on either scope
// do not cross-contaminate.
func (s *Scope) Fork() *Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Scope{cluster: s.cluster, namespace: s.namespace}
}

// HasClusterConfigured reports true when this scope (tier 1) or the
// process-wide Global default (tier 2) has a cluster supplier set.
func (s *Scope) HasClusterConfigured() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cluster != nil {
		return true
	}
	return Global.hasCluster()
}

// ResolveCluster resolves the cluster for this scope in tier order:
// scope override, then process-wide default, then auto-discovery.
func (s *Scope) ResolveCluster() (cluster.Handle, error) {
	s.mu.RLock()
	supplier := s.cluster
	s.mu.RUnlock()
	if supplier != nil {
		return supplier()
	}
	return Global.resolveCluster()
}

// ResolveNamespace resolves the shared namespace for this scope: scope
// override, then process-wide default.
func (s *Scope) ResolveNamespace() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.namespace != "" {
		return s.namespace
	}
	return Global.namespace()
}

type contextKey struct{}

// WithScope attaches scope to ctx for call paths that already thread a
// context.Context instead of carrying a Scope value explicitly.
func WithScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, contextKey{}, scope)
}

// FromContext retrieves a Scope previously attached with WithScope.
func FromContext(ctx context.Context) (*Scope, bool) {
	scope, ok := ctx.Value(contextKey{}).(*Scope)
	return scope, ok
}
