package wait

import "fmt"

func errTimeoutf(name string) error {
	return fmt.Errorf("wait: %s: %w", name, ErrTimeout)
}

func wrapTimeoutf(name string, cause error) error {
	if cause == nil {
		return errTimeoutf(name)
	}
	return fmt.Errorf("wait: %s: %w: last error: %v", name, ErrTimeout, cause)
}
