package graph

import (
	"context"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Fixture is a graph described in YAML:
//
//	nodes:
//	  - id: 1
//	    labels: [Person]
//	relationships:
//	  - id: 10
//	    start: 1
//	    end: 2
//	    type: KNOWS
type Fixture struct {
	Nodes         []Node         `json:"nodes"`
	Relationships []Relationship `json:"relationships"`
}

// ParseFixture decodes and validates a YAML fixture.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse graph fixture: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

// LoadFixture reads and parses the fixture at path.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph fixture: %w", err)
	}
	return ParseFixture(data)
}

// Validate checks that ids are unique and that every relationship connects known nodes.
func (f *Fixture) Validate() error {
	nodes := make(map[int64]struct{}, len(f.Nodes))
	for _, n := range f.Nodes {
		if _, ok := nodes[n.ID]; ok {
			return fmt.Errorf("duplicate node id %d", n.ID)
		}
		nodes[n.ID] = struct{}{}
	}

	rels := make(map[int64]struct{}, len(f.Relationships))
	for _, r := range f.Relationships {
		if _, ok := rels[r.ID]; ok {
			return fmt.Errorf("duplicate relationship id %d", r.ID)
		}
		rels[r.ID] = struct{}{}

		if _, ok := nodes[r.Start]; !ok {
			return fmt.Errorf("%w: relationship %d starts at unknown node %d", ErrInvalidRelationship, r.ID, r.Start)
		}
		if _, ok := nodes[r.End]; !ok {
			return fmt.Errorf("%w: relationship %d ends at unknown node %d", ErrInvalidRelationship, r.ID, r.End)
		}
	}

	return nil
}

// WriteTo writes the fixture into the given store.
func (f *Fixture) WriteTo(ctx context.Context, w Writer) error {
	if err := w.WriteNodes(ctx, f.Nodes); err != nil {
		return err
	}
	return w.WriteRelationships(ctx, f.Relationships)
}

// Marshal encodes the fixture back to YAML.
func (f *Fixture) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}
