package wait

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTP issues a GET to a URL derived from the pod endpoint and path,
// succeeding when the response status falls in AcceptableCodes.
type HTTP struct {
	cfg             pollConfig
	client          *http.Client
	url             string
	acceptableCodes func(status int) bool
}

// defaultAcceptable matches the spec's default 200-399 range.
func defaultAcceptable(status int) bool { return status >= 200 && status < 400 }

// ForHTTP builds an HTTP wait strategy. acceptableCodes, if non-empty,
// overrides the default 200-399 acceptance range. Redirects are not
// followed (the spec's "follows redirects off by default").
func ForHTTP(url string, acceptableCodes []int, opts ...Option) *HTTP {
	cfg := defaultPollConfig()
	for _, o := range opts {
		o(&cfg)
	}
	accept := defaultAcceptable
	if len(acceptableCodes) > 0 {
		set := make(map[int]struct{}, len(acceptableCodes))
		for _, c := range acceptableCodes {
			set[c] = struct{}{}
		}
		accept = func(status int) bool {
			_, ok := set[status]
			return ok
		}
	}
	return &HTTP{
		cfg: cfg,
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		url:             url,
		acceptableCodes: accept,
	}
}

func (s *HTTP) WaitUntilReady(ctx context.Context, deadline time.Duration) error {
	return poll(ctx, deadline, s.cfg, "http", func(ctx context.Context) (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return false, err
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return false, err
		}
		defer resp.Body.Close()
		if s.acceptableCodes(resp.StatusCode) {
			return true, nil
		}
		if resp.StatusCode >= 500 {
			return false, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return false, nil
	})
}
