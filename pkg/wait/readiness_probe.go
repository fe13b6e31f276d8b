package wait

import (
	"context"
	"time"
)

// ReadinessProbe polls the cluster's own readiness signal on the workload
// (e.g. ready-replica count). Cheapest strategy when the workload already
// carries container probes.
type ReadinessProbe struct {
	cfg   pollConfig
	check func(ctx context.Context) (bool, error)
}

// ForReadinessProbe builds a ReadinessProbe strategy. check typically
// delegates to a workload.Manager's IsReady.
func ForReadinessProbe(check func(ctx context.Context) (bool, error), opts ...Option) *ReadinessProbe {
	cfg := defaultPollConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &ReadinessProbe{cfg: cfg, check: check}
}

func (s *ReadinessProbe) WaitUntilReady(ctx context.Context, deadline time.Duration) error {
	return poll(ctx, deadline, s.cfg, "readiness-probe", s.check)
}
