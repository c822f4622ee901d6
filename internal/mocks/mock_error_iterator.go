package mocks

import (
	"context"
	"errors"

	"github.com/openfga/ppbfs/pkg/graph"
)

// ErrSimulatedRead is returned by the iterators of this package when they fail.
var ErrSimulatedRead = errors.New("simulated read error")

// errorIterator returns its first item, then fails on every later Next.
type errorIterator[T any] struct {
	items []T
	read  bool
}

func (s *errorIterator[T]) Next(ctx context.Context) (T, error) {
	var val T

	if ctx.Err() != nil {
		return val, ctx.Err()
	}

	// simulate a failure after the first read
	if s.read {
		return val, ErrSimulatedRead
	}
	s.read = true

	if len(s.items) == 0 {
		return val, ErrSimulatedRead
	}
	return s.items[0], nil
}

func (s *errorIterator[T]) Stop() {}

// NewErrorIterator returns an iterator that yields the first relationship, then fails.
func NewErrorIterator(relationships []graph.Relationship) graph.Iterator[graph.Relationship] {
	return &errorIterator[graph.Relationship]{items: relationships}
}
