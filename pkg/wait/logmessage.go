package wait

import (
	"context"
	"io"
	"regexp"
	"time"
)

// LogMessage streams container logs and succeeds after N matches of a
// regular expression.
type LogMessage struct {
	cfg      pollConfig
	streamer LogStreamer
	pattern  *regexp.Regexp
	matchesN int
}

// ForLogMessage builds a LogMessage wait strategy. n defaults to 1 when <= 0.
func ForLogMessage(streamer LogStreamer, pattern *regexp.Regexp, n int, opts ...Option) *LogMessage {
	cfg := defaultPollConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if n <= 0 {
		n = 1
	}
	return &LogMessage{cfg: cfg, streamer: streamer, pattern: pattern, matchesN: n}
}

// WaitUntilReady opens a log stream and scans it line by line rather than
// using the shared poll() helper's retry-per-tick model. If a stream ends
// or fails before N matches, it is reopened after the poll interval and
// counting starts again from zero on the new stream; failed opens count
// against the tolerance in total, not only consecutively. ctx/deadline
// cancellation is checked before each line read.
func (s *LogMessage) WaitUntilReady(ctx context.Context, deadline time.Duration) error {
	if deadline <= 0 {
		return errTimeoutf("logmessage")
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	var lastErr error
	openAttempts := 0
	for {
		stream, err := s.streamer.StreamLogs(ctx)
		if err != nil {
			lastErr = err
			openAttempts++
			if openAttempts > s.cfg.tolerance {
				return wrapTimeoutf("logmessage", lastErr)
			}
			select {
			case <-ctx.Done():
				return wrapTimeoutf("logmessage", lastErr)
			case <-time.After(s.cfg.interval):
				continue
			}
		}

		matched, err := s.scan(ctx, stream)
		_ = stream.Close()
		if matched {
			return nil
		}
		if err != nil && err != io.EOF {
			lastErr = err
		}
		select {
		case <-ctx.Done():
			return wrapTimeoutf("logmessage", lastErr)
		case <-time.After(s.cfg.interval):
		}
	}
}

// scan reads lines until matchesN matches are seen, the stream ends, or ctx
// is cancelled.
func (s *LogMessage) scan(ctx context.Context, stream LogStream) (bool, error) {
	matches := 0
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}
		line, err := stream.ReadLine()
		if err != nil {
			return false, err
		}
		if s.pattern.MatchString(line) {
			matches++
			if matches >= s.matchesN {
				return true, nil
			}
		}
	}
}
