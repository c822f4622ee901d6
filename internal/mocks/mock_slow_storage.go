package mocks

import (
	"context"
	"time"

	"github.com/openfga/ppbfs/pkg/graph"
)

// slowReader is a proxy to a graph.Reader whose relationship reads are delayed by readDelay.
// This allows simulating queries that outlive their context.
type slowReader struct {
	readDelay time.Duration
	graph.Reader
}

// NewMockSlowReader returns a wrapper of a reader that adds artificial delays into relationship reads.
func NewMockSlowReader(r graph.Reader, readDelay time.Duration) graph.Reader {
	return &slowReader{
		readDelay: readDelay,
		Reader:    r,
	}
}

func (m *slowReader) Relationships(ctx context.Context, nodeID int64, direction graph.Direction, types []string) (graph.Iterator[graph.Relationship], error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(m.readDelay):
	}
	return m.Reader.Relationships(ctx, nodeID, direction, types)
}
