package ppbfs

import (
	"slices"

	"golang.org/x/exp/maps"

	"github.com/openfga/ppbfs/pkg/automaton"
	"github.com/openfga/ppbfs/pkg/graph"
	"github.com/openfga/ppbfs/pkg/productgraph"
)

type stateKey struct {
	nodeID  int64
	stateID int
}

// levelBuffer collects the node states created or newly discovered while a level is being built.
type levelBuffer struct {
	index      map[stateKey]int
	discovered [2][]*NodeState
}

func newLevelBuffer() *levelBuffer {
	return &levelBuffer{index: make(map[stateKey]int)}
}

// Repository owns every node state and signpost of one search, addressed by dense index.
//
// Committed levels are read-only history. New node states go to the open buffer, so the frontier
// can be iterated while the next level is built. Lookups see the history and the open buffer.
type Repository struct {
	nodes     []*NodeState
	signposts []*Signpost

	levels   []map[stateKey]int
	buffer   *levelBuffer
	frontier [2][]*NodeState

	signpostIndex map[signpostKey]*Signpost

	onCreate func(*NodeState)
}

// NewRepository returns an empty repository. onCreate, when set, is called once for every new
// node state before it is returned.
func NewRepository(onCreate func(*NodeState)) *Repository {
	return &Repository{
		signpostIndex: make(map[signpostKey]*Signpost),
		onCreate:      onCreate,
	}
}

// OpenBuffer starts a new level. An already open buffer is kept.
func (r *Repository) OpenBuffer() {
	if r.buffer == nil {
		r.buffer = newLevelBuffer()
	}
}

// CommitBuffer appends the open buffer to the history and makes the node states discovered in
// direction the new frontier of that direction. Discoveries in the other direction stay pending
// until that direction commits.
func (r *Repository) CommitBuffer(direction productgraph.Direction) {
	if r.buffer == nil {
		r.frontier[direction] = nil
		return
	}

	if len(r.buffer.index) > 0 {
		r.levels = append(r.levels, r.buffer.index)
		r.buffer.index = make(map[stateKey]int)
	}

	r.frontier[direction] = r.buffer.discovered[direction]
	r.buffer.discovered[direction] = nil

	other := productgraph.Forward
	if direction == productgraph.Forward {
		other = productgraph.Backward
	}
	if len(r.buffer.discovered[other]) == 0 {
		r.buffer = nil
	}
}

// Get returns the node state of the pair, if any.
func (r *Repository) Get(nodeID int64, stateID int) (*NodeState, bool) {
	key := stateKey{nodeID: nodeID, stateID: stateID}
	if r.buffer != nil {
		if idx, ok := r.buffer.index[key]; ok {
			return r.nodes[idx], true
		}
	}
	for i := len(r.levels) - 1; i >= 0; i-- {
		if idx, ok := r.levels[i][key]; ok {
			return r.nodes[idx], true
		}
	}
	return nil, false
}

// Discover returns the node state of the pair, creating it in the open buffer when unknown, and
// marks it discovered in direction. The boolean reports whether it was not yet discovered in
// that direction, in which case it joins the next frontier of that direction.
func (r *Repository) Discover(nodeID int64, state *automaton.State, direction productgraph.Direction, depth int) (*NodeState, bool) {
	ns, ok := r.Get(nodeID, state.ID())
	if !ok {
		r.OpenBuffer()
		ns = &NodeState{
			id:           len(r.nodes),
			nodeID:       nodeID,
			state:        state,
			registeredAt: -1,
		}
		r.nodes = append(r.nodes, ns)
		r.buffer.index[stateKey{nodeID: nodeID, stateID: state.ID()}] = ns.id
		if r.onCreate != nil {
			r.onCreate(ns)
		}
	}

	switch direction {
	case productgraph.Forward:
		if ns.discoveredForward {
			return ns, false
		}
		ns.discoveredForward = true
		ns.forwardDepth = depth
	case productgraph.Backward:
		if ns.discoveredBackward {
			return ns, false
		}
		ns.discoveredBackward = true
		ns.backwardDepth = depth
	}

	r.OpenBuffer()
	r.buffer.discovered[direction] = append(r.buffer.discovered[direction], ns)
	return ns, true
}

// Signpost returns the signpost identified by its endpoints and relationship, creating it when
// unknown. The boolean reports creation.
func (r *Repository) Signpost(kind SignpostKind, prev, forward *NodeState, rel graph.Relationship, expansion *automaton.RelationshipExpansion, juxtaposition *automaton.NodeJuxtaposition) (*Signpost, bool) {
	sp := &Signpost{
		kind:              kind,
		prev:              prev,
		forward:           forward,
		relationship:      rel,
		expansion:         expansion,
		juxtaposition:     juxtaposition,
		minTargetDistance: NoTargetDistance,
	}

	key := sp.key()
	if existing, ok := r.signpostIndex[key]; ok {
		return existing, false
	}

	sp.id = len(r.signposts)
	r.signposts = append(r.signposts, sp)
	r.signpostIndex[key] = sp
	if kind == NodeJuxtaposition {
		prev.juxtapositions = append(prev.juxtapositions, sp)
	}
	return sp, true
}

// Frontier returns the committed frontier of direction. It must not be mutated.
func (r *Repository) Frontier(direction productgraph.Direction) []*NodeState {
	return r.frontier[direction]
}

// FrontierByNode groups the frontier of direction by data node, in ascending node id order.
func (r *Repository) FrontierByNode(direction productgraph.Direction) ([]int64, map[int64][]*NodeState) {
	groups := make(map[int64][]*NodeState)
	for _, ns := range r.frontier[direction] {
		groups[ns.nodeID] = append(groups[ns.nodeID], ns)
	}
	keys := maps.Keys(groups)
	slices.Sort(keys)
	return keys, groups
}

func (r *Repository) NodeStateCount() int {
	return len(r.nodes)
}

func (r *Repository) SignpostCount() int {
	return len(r.signposts)
}

func (r *Repository) Levels() int {
	return len(r.levels)
}

// Close releases every record at once.
func (r *Repository) Close() {
	r.nodes = nil
	r.signposts = nil
	r.levels = nil
	r.buffer = nil
	r.frontier = [2][]*NodeState{}
	r.signpostIndex = nil
}
