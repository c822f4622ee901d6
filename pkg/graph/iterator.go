package graph

import (
	"context"
	"errors"
)

var ErrIteratorDone = errors.New("iterator done")

type Iterator[T any] interface {
	// Next will return the next available item. If the context is cancelled or times out, it should return ErrIteratorDone
	Next(ctx context.Context) (T, error)
	// Stop terminates iteration over the underlying iterator.
	Stop()
}

type staticIterator[T any] struct {
	items []T
}

func (s *staticIterator[T]) Next(ctx context.Context) (T, error) {
	var val T
	select {
	case <-ctx.Done():
		return val, ErrIteratorDone
	default:
		if len(s.items) == 0 {
			return val, ErrIteratorDone
		}

		next, rest := s.items[0], s.items[1:]
		s.items = rest

		return next, nil
	}
}

func (s *staticIterator[T]) Stop() {}

// NewStaticIterator returns an Iterator that iterates over the provided slice.
func NewStaticIterator[T any](items []T) Iterator[T] {
	return &staticIterator[T]{items: items}
}

type filteredIterator[T any] struct {
	iter   Iterator[T]
	filter func(T) bool
}

func (f *filteredIterator[T]) Next(ctx context.Context) (T, error) {
	for {
		val, err := f.iter.Next(ctx)
		if err != nil {
			return val, err
		}
		if f.filter(val) {
			return val, nil
		}
	}
}

func (f *filteredIterator[T]) Stop() {
	f.iter.Stop()
}

// NewFilteredIterator returns an iterator that only yields the values of iter accepted by filter.
func NewFilteredIterator[T any](iter Iterator[T], filter func(T) bool) Iterator[T] {
	return &filteredIterator[T]{iter: iter, filter: filter}
}

// ToArray drains the iterator and stops it.
func ToArray[T any](ctx context.Context, iter Iterator[T]) ([]T, error) {
	defer iter.Stop()

	var res []T
	for {
		val, err := iter.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrIteratorDone) {
				return res, nil
			}
			return nil, err
		}
		res = append(res, val)
	}
}
