package wait

import (
	"context"
	"net"
	"time"
)

// TCP succeeds on the first clean connect-then-close to the target address.
type TCP struct {
	cfg    pollConfig
	dialer net.Dialer
	addr   string
}

// ForTCP builds a TCP wait strategy against host:port addr.
func ForTCP(addr string, opts ...Option) *TCP {
	cfg := defaultPollConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &TCP{cfg: cfg, addr: addr}
}

func (s *TCP) WaitUntilReady(ctx context.Context, deadline time.Duration) error {
	return poll(ctx, deadline, s.cfg, "tcp", func(ctx context.Context) (bool, error) {
		conn, err := s.dialer.DialContext(ctx, "tcp", s.addr)
		if err != nil {
			return false, err
		}
		_ = conn.Close()
		return true, nil
	})
}
