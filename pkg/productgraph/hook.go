package productgraph

import (
	"github.com/openfga/ppbfs/pkg/graph"
)

// Hook observes the storage reads issued by a cursor.
type Hook interface {
	OnRelationshipRead(nodeID int64, direction graph.Direction, types []string)
	OnNodeRead(nodeID int64)
}

type NoopHook struct{}

func (NoopHook) OnRelationshipRead(int64, graph.Direction, []string) {}
func (NoopHook) OnNodeRead(int64)                                    {}

// CountingHook counts reads. It is not safe for concurrent use, like the cursor it observes.
type CountingHook struct {
	RelationshipReads int
	NodeReads         int
}

func (c *CountingHook) OnRelationshipRead(int64, graph.Direction, []string) {
	c.RelationshipReads++
}

func (c *CountingHook) OnNodeRead(int64) {
	c.NodeReads++
}
