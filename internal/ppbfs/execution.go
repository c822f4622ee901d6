package ppbfs

import (
	"github.com/openfga/ppbfs/pkg/logger"
)

type phase int

const (
	// expanding is the phase in which the current level is built and propagated.
	expanding phase = iota
	// tracing is the phase in which the targets of the current level are traced.
	tracing
)

type pairKey struct {
	node       int
	fromSource int
	toTarget   int
}

// ExecutionContext is the state of one search shared by the expander, the propagation pass, the
// tracer and the driver. It is owned by a single goroutine.
type ExecutionContext struct {
	depth         int
	forwardDepth  int
	backwardDepth int
	phase         phase

	repo     *Repository
	schedule *Schedule
	targets  *TargetTracker
	source   *NodeState

	scheduled       map[pairKey]struct{}
	relationshipIDs map[int64]struct{}

	logger logger.Logger
}

func NewExecutionContext(targets *TargetTracker, l logger.Logger) *ExecutionContext {
	ec := &ExecutionContext{
		schedule:        NewSchedule(),
		targets:         targets,
		scheduled:       make(map[pairKey]struct{}),
		relationshipIDs: make(map[int64]struct{}),
		logger:          l,
	}
	ec.repo = NewRepository(ec.classify)
	return ec
}

// classify marks a new node state as a target when its data node and state are accepted. A
// target is at distance zero from itself.
func (ec *ExecutionContext) classify(ns *NodeState) {
	if !ec.targets.accepts(ns) {
		return
	}
	ns.target = ec.targets.counterFor(ns.nodeID)
	ns.targetDistances.set(0)
}

func (ec *ExecutionContext) Depth() int {
	return ec.depth
}

func (ec *ExecutionContext) Repository() *Repository {
	return ec.repo
}

// addSourceLength records that ns is reachable from the source at length. A target reached at the
// current depth is registered for tracing. The new length is combined with every known distance
// to a target, and flows unchanged through the juxtapositions leaving ns.
func (ec *ExecutionContext) addSourceLength(ns *NodeState, length int) error {
	if !ns.lengths.Set(Source, length) {
		return nil
	}

	if ns.IsTarget() && length == ec.depth && !ec.targets.saturated(ns.target, length) {
		if err := ec.targets.register(ns, ec.depth); err != nil {
			return err
		}
	}

	for _, distance := range ns.targetDistances.members() {
		if err := ec.maybeSchedule(ns, length, distance); err != nil {
			return err
		}
	}

	for _, sp := range ns.juxtapositions {
		if err := ec.addSignpostLength(sp, length); err != nil {
			return err
		}
	}
	return nil
}

// addSignpostLength certifies length at the forward node of sp, unless sp was pruned at length.
func (ec *ExecutionContext) addSignpostLength(sp *Signpost, length int) error {
	if sp.lengths.Has(Pruned, length) || !sp.lengths.Set(Source, length) {
		return nil
	}
	return ec.addSourceLength(sp.forward, length)
}

// addTargetDistance records that a target is reachable from ns at distance.
func (ec *ExecutionContext) addTargetDistance(ns *NodeState, distance int) error {
	if !ns.targetDistances.set(distance) {
		return nil
	}
	for _, length := range ns.lengths.All(Source) {
		if err := ec.maybeSchedule(ns, length, distance); err != nil {
			return err
		}
	}
	return nil
}

// traceSignpost registers sp as leading to a target at distance from its forward node. The first
// registration makes sp a target signpost of its prev node.
func (ec *ExecutionContext) traceSignpost(sp *Signpost, distance int) error {
	if sp.minTargetDistance == NoTargetDistance {
		if err := sp.setMinTargetDistance(distance); err != nil {
			return err
		}
		sp.prev.targetSignposts = append(sp.prev.targetSignposts, sp)
	}

	if !sp.targetDistances.set(distance) {
		return nil
	}
	return ec.addTargetDistance(sp.prev, distance+sp.DataLength())
}

// maybeSchedule schedules the pair once for the lifetime of the search. Pairs whose total length
// has already been propagated are stale and dropped: the total of the current level is still
// accepted while the level is being built, not once its targets are being traced.
func (ec *ExecutionContext) maybeSchedule(ns *NodeState, fromSource, toTarget int) error {
	if !ec.schedulable(fromSource + toTarget) {
		return nil
	}

	key := pairKey{node: ns.id, fromSource: fromSource, toTarget: toTarget}
	if _, ok := ec.scheduled[key]; ok {
		return nil
	}
	ec.scheduled[key] = struct{}{}
	ec.schedule.Add(ns, fromSource, toTarget)
	return nil
}

func (ec *ExecutionContext) schedulable(total int) bool {
	if total < ec.depth {
		return false
	}
	return total > ec.depth || ec.phase == expanding
}

// propagateAll processes every pair scheduled for total, in increasing length from source. Pairs
// scheduled for total while it runs are processed too. No pair may be pending for a smaller total:
// it would never be propagated.
func (ec *ExecutionContext) propagateAll(total int) error {
	if pending, ok := ec.schedule.MinTotal(); ok && pending < total {
		return invariantf("schedule", "pairs scheduled for total %d are behind depth %d", pending, total)
	}

	for {
		fromSource, nodes, ok := ec.schedule.takeFirst(total)
		if !ok {
			break
		}
		for _, ns := range nodes {
			if err := ec.propagateLengthPair(ns, fromSource, total-fromSource); err != nil {
				return err
			}
		}
	}
	ec.schedule.drop(total)
	return nil
}

// propagateLengthPair pushes the pair one hop toward the target side through every target
// signpost of ns traced at the matching distance.
func (ec *ExecutionContext) propagateLengthPair(ns *NodeState, fromSource, toTarget int) error {
	if !ns.HasLength(fromSource) {
		return nil
	}

	for _, sp := range ns.targetSignposts {
		distance := toTarget - sp.DataLength()
		if distance < 0 || !sp.targetDistances.has(distance) {
			continue
		}
		if err := ec.addSignpostLength(sp, fromSource+sp.DataLength()); err != nil {
			return err
		}
	}
	return nil
}
