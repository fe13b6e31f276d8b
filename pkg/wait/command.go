package wait

import (
	"context"
	"time"
)

// Command execs a command inside the target container, succeeding on exit
// code 0. Used e.g. for `pg_isready`.
type Command struct {
	cfg     pollConfig
	runner  CommandRunner
	command []string
}

// ForCommand builds a Command wait strategy.
func ForCommand(runner CommandRunner, command []string, opts ...Option) *Command {
	cfg := defaultPollConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Command{cfg: cfg, runner: runner, command: command}
}

func (s *Command) WaitUntilReady(ctx context.Context, deadline time.Duration) error {
	return poll(ctx, deadline, s.cfg, "command", func(ctx context.Context) (bool, error) {
		exitCode, _, _, err := s.runner.RunCommand(ctx, s.command)
		if err != nil {
			return false, err
		}
		return exitCode == 0, nil
	})
}
