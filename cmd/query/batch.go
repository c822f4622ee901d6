package query

import (
	"errors"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/openfga/ppbfs/pkg/automaton"
	"github.com/openfga/ppbfs/pkg/config"
	"github.com/openfga/ppbfs/pkg/graph"
	"github.com/openfga/ppbfs/pkg/pathfind"
)

// Batch is a YAML file of queries:
//
//	queries:
//	  - name: friends-of-friends
//	    source: 1
//	    target: 3
//	    types: [KNOWS]
//	    direction: both
//	    min: 1
//	    max: 3
//	    k: 2
//	    mode: groups
//	    where: 'rel.props.since > 2000'
type Batch struct {
	Queries []Entry `json:"queries"`
}

// Entry is one quantified path pattern `(source)(-[:types]-){min,max}(target)`.
type Entry struct {
	Name      string   `json:"name"`
	Source    int64    `json:"source"`
	Target    *int64   `json:"target,omitempty"`
	Types     []string `json:"types,omitempty"`
	Direction string   `json:"direction,omitempty"`
	// Min defaults to 1.
	Min *int `json:"min,omitempty"`
	// Max defaults to unbounded.
	Max *int `json:"max,omitempty"`
	// K, Mode and Search default to the query config.
	K      int    `json:"k,omitempty"`
	Mode   string `json:"mode,omitempty"`
	Search string `json:"search,omitempty"`
	// Where is a CEL predicate on every traversed relationship, bound as `rel`.
	Where string `json:"where,omitempty"`
	// NodeWhere is a CEL predicate on every reached node, bound as `node`.
	NodeWhere string `json:"nodeWhere,omitempty"`
}

// ParseBatch decodes a YAML batch and names unnamed entries by position.
func ParseBatch(data []byte) (*Batch, error) {
	var b Batch
	if err := yaml.UnmarshalStrict(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse query batch: %w", err)
	}

	if len(b.Queries) == 0 {
		return nil, errors.New("the query batch is empty")
	}

	for i := range b.Queries {
		if b.Queries[i].Name == "" {
			b.Queries[i].Name = fmt.Sprintf("query-%d", i)
		}
	}

	return &b, nil
}

// LoadBatch reads and parses the batch at path.
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query batch: %w", err)
	}
	return ParseBatch(data)
}

// Query compiles the entry, filling unset knobs from defaults.
func (e Entry) Query(defaults config.QueryConfig) (pathfind.Query, error) {
	direction, err := graph.ParseDirection(e.Direction)
	if err != nil {
		return pathfind.Query{}, err
	}

	minHops, maxHops := 1, -1
	if e.Min != nil {
		minHops = *e.Min
	}
	if e.Max != nil {
		maxHops = *e.Max
	}

	var opts []automaton.TransitionOption
	if e.Where != "" {
		opts = append(opts, automaton.WithRelationshipPredicate(e.Where))
	}
	if e.NodeWhere != "" {
		opts = append(opts, automaton.WithNodePredicate(e.NodeWhere))
	}

	a, err := automaton.Quantified(e.Types, direction, minHops, maxHops, opts...)
	if err != nil {
		return pathfind.Query{}, err
	}

	k := e.K
	if k == 0 {
		k = defaults.K
	}

	mode := e.Mode
	if mode == "" {
		mode = defaults.Mode
	}
	m, err := pathfind.ParseMode(mode)
	if err != nil {
		return pathfind.Query{}, err
	}

	search := e.Search
	if search == "" {
		search = defaults.Search
	}
	s, err := pathfind.ParseSearchMode(search)
	if err != nil {
		return pathfind.Query{}, err
	}

	q := pathfind.Query{
		Source:    e.Source,
		Target:    e.Target,
		Automaton: a,
		K:         k,
		Mode:      m,
		Search:    s,
	}

	return q, q.Validate()
}
