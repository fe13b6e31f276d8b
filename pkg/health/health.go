// Package health provides the /healthz and /readyz HTTP endpoints a
// long-running testpods-go process (e.g. testpodsctl cleanup --watch)
// exposes for its own liveness/readiness, independent of any pod this
// module provisions.
package health

import (
	"net/http"
	"sync/atomic"
)

// Checker tracks a single atomic readiness flag and serves it over HTTP.
// Liveness is unconditional — if the process can answer at all, it's
// alive; readiness reflects whatever the caller last reported via
// SetReady.
type Checker struct {
	ready atomic.Bool
}

// NewHealthChecker builds a Checker that starts out not-ready.
func NewHealthChecker() *Checker {
	c := &Checker{}
	c.ready.Store(false)
	return c
}

// SetReady updates the readiness flag queried by ReadinessHandler.
func (c *Checker) SetReady(ready bool) {
	c.ready.Store(ready)
}

// IsReady reports the current readiness flag.
func (c *Checker) IsReady() bool {
	return c.ready.Load()
}

// LivenessHandler always reports ok: reaching this handler at all is
// proof the process is alive.
func (c *Checker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

// ReadinessHandler reports 200 once SetReady(true) has been called, and
// 503 otherwise (e.g. before the initial cluster discovery completes).
func (c *Checker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c.IsReady() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
	})
}

// AttachHealthEndpoints registers /healthz and /readyz on mux.
func AttachHealthEndpoints(mux *http.ServeMux, checker *Checker) {
	mux.Handle("/healthz", checker.LivenessHandler())
	mux.Handle("/readyz", checker.ReadinessHandler())
}
