package wait

import (
	"context"
	"fmt"
	"time"
)

// mode selects ALL-must-pass versus ANY-must-pass semantics for Composite.
type mode int

const (
	modeAll mode = iota
	modeAny
)

// Composite runs an ordered list of sub-strategies sequentially, sharing
// the composite's deadline budget across them.
type Composite struct {
	strategies []Strategy
	mode       mode
}

// ForAll builds a Composite requiring every strategy to succeed in order.
// An empty list succeeds immediately.
func ForAll(strategies ...Strategy) *Composite {
	return &Composite{strategies: strategies, mode: modeAll}
}

// ForAny builds a Composite requiring at least one strategy to succeed.
// An empty list fails immediately.
func ForAny(strategies ...Strategy) *Composite {
	return &Composite{strategies: strategies, mode: modeAny}
}

func (c *Composite) WaitUntilReady(ctx context.Context, deadline time.Duration) error {
	if len(c.strategies) == 0 {
		if c.mode == modeAll {
			return nil
		}
		return fmt.Errorf("wait: composite(any): %w: no strategies configured", ErrTimeout)
	}

	deadlineAt := time.Now().Add(deadline)
	var lastErr error
	for i, s := range c.strategies {
		remaining := time.Until(deadlineAt)
		if remaining <= 0 {
			remaining = 0
		}
		err := s.WaitUntilReady(ctx, remaining)
		if err == nil {
			if c.mode == modeAny {
				return nil
			}
			continue
		}
		lastErr = fmt.Errorf("composite: strategy %d: %w", i, err)
		if c.mode == modeAll {
			return lastErr
		}
	}
	if c.mode == modeAny {
		return fmt.Errorf("wait: composite(any): %w: %v", ErrTimeout, lastErr)
	}
	return nil
}
