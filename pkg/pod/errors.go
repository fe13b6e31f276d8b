// Package pod implements PodDescriptor and the PodLifecycleOrchestrator:
// the top-level component that composes a workload, zero-or-more
// services, and a storage plan, sequences their creation, gates on a
// wait.Strategy, records the external endpoint, and tears everything down
// in reverse order.
package pod

import (
	"errors"
	"fmt"
)

// ErrKind is the closed error taxonomy every error this package returns is
// tagged with, matching spec.md §7.
type ErrKind int

const (
	// ErrConfiguration covers invalid namespace names, unreachable image
	// references, a missing required pod name — caught before any
	// cluster call is made.
	ErrConfiguration ErrKind = iota
	// ErrPrecondition covers accessing the external endpoint before
	// ready, or starting the same pod twice.
	ErrPrecondition
	// ErrClusterAPI covers create conflicts, permission denied, an
	// unreachable API server.
	ErrClusterAPI
	// ErrReadinessTimeout covers a wait.Strategy that did not succeed
	// within its budget.
	ErrReadinessTimeout
	// ErrRollbackPartial covers a start() failure where one or more
	// rollback deletes also failed.
	ErrRollbackPartial
	// ErrTeardownPartial covers a stop() that encountered failures. Stop
	// never returns it: teardown failures are logged and Stop returns nil.
	ErrTeardownPartial
)

func (k ErrKind) String() string {
	switch k {
	case ErrConfiguration:
		return "configuration"
	case ErrPrecondition:
		return "precondition"
	case ErrClusterAPI:
		return "cluster-api"
	case ErrReadinessTimeout:
		return "readiness-timeout"
	case ErrRollbackPartial:
		return "rollback-partial"
	case ErrTeardownPartial:
		return "teardown-partial"
	default:
		return "unknown"
	}
}

// Error is the typed error every failure path in this package produces. It
// carries the pod's identity, the step that failed, and the error kind, so
// callers can discriminate configuration mistakes from transient cluster
// trouble with errors.As.
type Error struct {
	Kind      ErrKind
	PodName   string
	Namespace string
	Step      string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pod %s/%s: %s: %s: %v", e.Namespace, e.PodName, e.Step, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrapErr(kind ErrKind, podName, namespace, step string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, PodName: podName, Namespace: namespace, Step: step, Err: err}
}

// IsKind reports whether err (or something it wraps) is a *Error of kind k.
func IsKind(err error, k ErrKind) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind == k
	}
	return false
}
