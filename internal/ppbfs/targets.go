package ppbfs

// TargetCounter is the remaining quota of paths or path groups of one target data node. Every
// accepting node state of that data node shares it.
type TargetCounter struct {
	nodeID          int64
	remaining       int
	lastGroupLength int
}

func (c *TargetCounter) NodeID() int64 {
	return c.nodeID
}

func (c *TargetCounter) Remaining() int {
	return c.remaining
}

// saturated reports whether no further path of the given length may be emitted. In group mode a
// group that has started keeps emitting all of its paths.
func (c *TargetCounter) saturated(length int, groups bool) bool {
	if c.remaining > 0 {
		return false
	}
	return !groups || c.lastGroupLength != length
}

// TargetTracker owns the target counters and the targets registered during the current level.
type TargetTracker struct {
	k          int
	groups     bool
	intoTarget *int64

	counters map[int64]*TargetCounter
	live     int
	level    []*NodeState
}

func NewTargetTracker(k int, groups bool, intoTarget *int64) *TargetTracker {
	return &TargetTracker{
		k:          k,
		groups:     groups,
		intoTarget: intoTarget,
		counters:   make(map[int64]*TargetCounter),
	}
}

// accepts reports whether node states of the pair are targets.
func (t *TargetTracker) accepts(ns *NodeState) bool {
	if !ns.state.IsFinal() {
		return false
	}
	return t.intoTarget == nil || *t.intoTarget == ns.nodeID
}

// counterFor returns the counter of the data node, creating a live one.
func (t *TargetTracker) counterFor(nodeID int64) *TargetCounter {
	if c, ok := t.counters[nodeID]; ok {
		return c
	}
	c := &TargetCounter{nodeID: nodeID, remaining: t.k, lastGroupLength: -1}
	t.counters[nodeID] = c
	if c.remaining > 0 {
		t.live++
	}
	return c
}

// register adds ns to the targets of the level at depth. A node state is registered at most once
// per level.
func (t *TargetTracker) register(ns *NodeState, depth int) error {
	if ns.registeredAt == depth {
		return invariantf("registerTarget", "%v registered twice at depth %d", ns, depth)
	}
	ns.registeredAt = depth
	t.level = append(t.level, ns)
	return nil
}

// takeLevel returns and clears the targets registered since the last call.
func (t *TargetTracker) takeLevel() []*NodeState {
	level := t.level
	t.level = nil
	return level
}

func (t *TargetTracker) hasLevelTargets() bool {
	return len(t.level) > 0
}

// decrement consumes one unit of quota for a path of the given length: one per path, or one per
// distinct length in group mode.
func (t *TargetTracker) decrement(c *TargetCounter, length int) error {
	if t.groups && c.lastGroupLength == length {
		return nil
	}
	if c.remaining <= 0 {
		return invariantf("decrementTargetCount", "target %d decremented below zero", c.nodeID)
	}

	c.remaining--
	c.lastGroupLength = length
	if c.remaining == 0 {
		t.live--
	}
	return nil
}

func (t *TargetTracker) saturated(c *TargetCounter, length int) bool {
	return c.saturated(length, t.groups)
}

// Live is the number of target data nodes discovered so far that still want paths.
func (t *TargetTracker) Live() int {
	return t.live
}

// intoTargetSaturated reports whether a single-target search has nothing left to find.
func (t *TargetTracker) intoTargetSaturated() bool {
	if t.intoTarget == nil {
		return false
	}
	c, ok := t.counters[*t.intoTarget]
	return ok && c.remaining == 0
}
