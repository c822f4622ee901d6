package ppbfs

import (
	"errors"
	"fmt"
)

// ErrInvariantViolation is wrapped by every error reporting a broken search invariant. Such an
// error aborts the query: continuing would corrupt the level ordering or the path counts.
var ErrInvariantViolation = errors.New("ppbfs invariant violation")

type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvariantViolation, e.Op, e.Detail)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

func invariantf(op, format string, args ...any) error {
	return &InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)}
}
