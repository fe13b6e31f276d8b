package pod

import (
	"context"

	"k8s.io/klog/v2"
)

// rollbackEntry pairs a human-readable description with the undo closure
// for one resource the Orchestrator created. Entries are appended
// immediately after their creating call returns, regardless of whether a
// later step fails, so a failure at step N still unwinds steps 1..N-1.
type rollbackEntry struct {
	step string
	undo func(ctx context.Context) error
}

// unwind runs entries in reverse insertion order, logging and swallowing
// individual failures — a rollback delete failing must not prevent the
// rest of the rollback from running.
func unwind(ctx context.Context, podName string, entries []rollbackEntry) []error {
	var failures []error
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if err := e.undo(ctx); err != nil {
			klog.Warningf("pod: %s: rollback %s failed: %v", podName, e.step, err)
			failures = append(failures, err)
		}
	}
	return failures
}
