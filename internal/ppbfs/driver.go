// Package ppbfs implements the product-graph path-propagating breadth-first search. It enumerates
// the shortest trails, or groups of trails of equal length, from a source node to the nodes
// accepted by an automaton, level by level, without materializing every walk.
package ppbfs

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/openfga/ppbfs/pkg/automaton"
	"github.com/openfga/ppbfs/pkg/graph"
	"github.com/openfga/ppbfs/pkg/logger"
	"github.com/openfga/ppbfs/pkg/productgraph"
)

// ErrIteratorDone is returned by Next once every trail has been returned.
var ErrIteratorDone = graph.ErrIteratorDone

// PathPredicate decides whether a traced path is returned. Rejected paths do not count toward K.
type PathPredicate func(TracedPath) (bool, error)

type driverState int

const (
	zeroHop driverState = iota
	running
	exhausted
)

// DriverOption configures a Driver.
type DriverOption func(d *Driver)

// WithK sets the number of paths, or of path groups, returned per target. The default is 1.
func WithK(k int) DriverOption {
	return func(d *Driver) {
		d.k = k
	}
}

// WithGroups counts groups of paths of equal length toward K instead of single paths.
func WithGroups() DriverOption {
	return func(d *Driver) {
		d.groups = true
	}
}

// WithIntoTarget restricts the targets to a single data node. The search stops as soon as that
// node is saturated.
func WithIntoTarget(nodeID int64) DriverOption {
	return func(d *Driver) {
		d.intoTarget = &nodeID
	}
}

// WithBidirectional also searches backward from the accepting states of the single target. It
// has no effect without WithIntoTarget.
func WithBidirectional(finals ...*automaton.State) DriverOption {
	return func(d *Driver) {
		d.finals = finals
		d.bidirectional = true
	}
}

func WithLogger(l logger.Logger) DriverOption {
	return func(d *Driver) {
		d.logger = l
	}
}

// WithMaxDepth bounds the length of the returned paths. A negative value, the default, leaves it
// unbounded.
func WithMaxDepth(depth int) DriverOption {
	return func(d *Driver) {
		d.maxDepth = depth
	}
}

func WithPredicate(p PathPredicate) DriverOption {
	return func(d *Driver) {
		d.predicate = p
	}
}

// Stats describes the work done by a Driver so far.
type Stats struct {
	Depth          int
	ForwardDepth   int
	BackwardDepth  int
	Levels         int
	NodeStates     int
	Signposts      int
	PathsReturned  int
	TargetsTraced  int
	ScheduledPairs int
}

// Driver runs one search and returns its trails lazily, in non-decreasing length. It must be used
// from a single goroutine.
type Driver struct {
	cursor   productgraph.Cursor
	sourceID int64
	start    *automaton.State

	k             int
	groups        bool
	intoTarget    *int64
	bidirectional bool
	finals        []*automaton.State
	maxDepth      int
	predicate     PathPredicate
	logger        logger.Logger

	ec       *ExecutionContext
	expander *Expander
	tracer   *Tracer

	state   driverState
	backlog []*NodeState
	err     error

	pathsReturned int
	targetsTraced int
}

// New returns a driver enumerating the trails from source, starting in state start.
func New(cursor productgraph.Cursor, source int64, start *automaton.State, opts ...DriverOption) *Driver {
	d := &Driver{
		cursor:   cursor,
		sourceID: source,
		start:    start,
		k:        1,
		maxDepth: -1,
		logger:   logger.NewNoopLogger(),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.intoTarget == nil {
		d.bidirectional = false
	}

	d.ec = NewExecutionContext(NewTargetTracker(d.k, d.groups, d.intoTarget), d.logger)
	d.expander = NewExpander(d.ec, cursor)
	d.tracer = NewTracer(d.ec)
	return d
}

// SetTraceHook installs a hook observing the storage reads of the search.
func (d *Driver) SetTraceHook(hook productgraph.Hook) {
	d.cursor.SetTraceHook(hook)
}

// Next returns the next trail, or ErrIteratorDone once there is none left. After any error the
// driver is unusable and every further call returns the same error.
func (d *Driver) Next(ctx context.Context) (TracedPath, error) {
	if d.err != nil {
		return TracedPath{}, d.err
	}

	path, err := d.next(ctx)
	if err != nil {
		d.err = err
		if !errors.Is(err, ErrIteratorDone) {
			d.logger.Debug("ppbfs search aborted", zap.Error(err), zap.Int("depth", d.ec.depth))
		}
		return TracedPath{}, err
	}

	d.pathsReturned++
	return path, nil
}

func (d *Driver) next(ctx context.Context) (TracedPath, error) {
	for {
		if err := ctx.Err(); err != nil {
			return TracedPath{}, err
		}

		if d.intoTargetDone() {
			return TracedPath{}, ErrIteratorDone
		}

		if d.tracer.Active() {
			path, ok, err := d.tracer.Next()
			if err != nil {
				return TracedPath{}, err
			}
			if ok {
				accepted, err := d.accept(path)
				if err != nil {
					return TracedPath{}, err
				}
				if accepted {
					return path, nil
				}
				continue
			}
		}

		if len(d.backlog) > 0 {
			target := d.backlog[0]
			d.backlog = d.backlog[1:]
			if d.ec.targets.saturated(target.target, d.ec.depth) {
				continue
			}
			d.targetsTraced++
			d.tracer.Initialize(target, d.ec.depth)
			continue
		}

		switch d.state {
		case zeroHop:
			if err := d.zeroHopLevel(ctx); err != nil {
				return TracedPath{}, err
			}
			d.state = running
		case running:
			more, err := d.nextLevelWithTargets(ctx)
			if err != nil {
				return TracedPath{}, err
			}
			if !more {
				d.state = exhausted
				d.logger.Debug("ppbfs search exhausted", zap.Int("depth", d.ec.depth), zap.Int("paths", d.pathsReturned))
				return TracedPath{}, ErrIteratorDone
			}
		case exhausted:
			return TracedPath{}, ErrIteratorDone
		}
		d.backlog = d.ec.targets.takeLevel()
	}
}

// intoTargetDone reports whether a single-target search has nothing left to return. In group
// mode the last group is returned in full, so the search stops once the level it belongs to has
// been traced.
func (d *Driver) intoTargetDone() bool {
	if !d.ec.targets.intoTargetSaturated() {
		return false
	}
	return !d.groups || (!d.tracer.Active() && len(d.backlog) == 0)
}

// accept applies saturation and the predicate to a traced path and counts it when returned.
func (d *Driver) accept(path TracedPath) (bool, error) {
	counter := d.tracer.Target().target
	if d.ec.targets.saturated(counter, path.Length) {
		return false, nil
	}

	if d.predicate != nil {
		ok, err := d.predicate(path)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	if err := d.ec.targets.decrement(counter, path.Length); err != nil {
		return false, err
	}
	return true, nil
}

// zeroHopLevel discovers the source and the juxtapositions around it, which finds the zero length
// path when the source is itself a target.
func (d *Driver) zeroHopLevel(ctx context.Context) error {
	ec := d.ec
	ec.depth = 0
	ec.phase = expanding
	ec.repo.OpenBuffer()

	source, _ := ec.repo.Discover(d.sourceID, d.start, productgraph.Forward, 0)
	ec.source = source
	if err := ec.addSourceLength(source, 0); err != nil {
		return err
	}
	if err := d.expander.flood(ctx, source, productgraph.Forward); err != nil {
		return err
	}

	if d.bidirectional {
		for _, final := range d.finals {
			if _, err := d.expander.Discover(ctx, *d.intoTarget, final, productgraph.Backward, 0); err != nil {
				return err
			}
		}
	}

	ec.repo.CommitBuffer(productgraph.Forward)
	if d.bidirectional {
		ec.repo.CommitBuffer(productgraph.Backward)
	}

	if err := ec.propagateAll(0); err != nil {
		return err
	}
	ec.phase = tracing
	d.logLevel(ctx, productgraph.Forward)
	return nil
}

// nextLevel builds and propagates the next level. It reports false once no path can be longer
// than the current depth.
func (d *Driver) nextLevel(ctx context.Context) (bool, error) {
	ec := d.ec
	forward := ec.repo.Frontier(productgraph.Forward)
	var backward []*NodeState
	if d.bidirectional {
		backward = ec.repo.Frontier(productgraph.Backward)
	}

	if len(forward) == 0 && len(backward) == 0 {
		// A trail never repeats a relationship, so it is never longer than the number of
		// relationships seen.
		if ec.schedule.IsEmpty() || ec.targets.Live() == 0 || ec.depth >= len(ec.relationshipIDs) {
			return false, nil
		}
	}
	if d.maxDepth >= 0 && ec.depth >= d.maxDepth {
		return false, nil
	}

	ec.depth++
	ec.phase = expanding

	direction := productgraph.Forward
	if len(forward) == 0 || (len(backward) > 0 && len(backward) < len(forward)) {
		direction = productgraph.Backward
	}

	if len(forward) > 0 || len(backward) > 0 {
		ec.repo.OpenBuffer()
		if direction == productgraph.Forward {
			ec.forwardDepth++
		} else {
			ec.backwardDepth++
		}
		if err := d.expander.Expand(ctx, direction); err != nil {
			return false, err
		}
		ec.repo.CommitBuffer(direction)
	}

	if err := ec.propagateAll(ec.depth); err != nil {
		return false, err
	}
	ec.phase = tracing
	d.logLevel(ctx, direction)
	return true, nil
}

// nextLevelWithTargets advances until a level registers a target or the search is exhausted.
func (d *Driver) nextLevelWithTargets(ctx context.Context) (bool, error) {
	for !d.ec.targets.hasLevelTargets() {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		more, err := d.nextLevel(ctx)
		if err != nil || !more {
			return false, err
		}
	}
	return true, nil
}

func (d *Driver) logLevel(ctx context.Context, direction productgraph.Direction) {
	ec := d.ec
	trace.SpanFromContext(ctx).AddEvent("ppbfs.level", trace.WithAttributes(
		attribute.Int("depth", ec.depth),
		attribute.String("direction", direction.String()),
		attribute.Int("node_states", ec.repo.NodeStateCount()),
	))
	d.logger.Debug("ppbfs level completed",
		zap.Int("depth", ec.depth),
		zap.Stringer("direction", direction),
		zap.Int("forward_frontier", len(ec.repo.Frontier(productgraph.Forward))),
		zap.Int("backward_frontier", len(ec.repo.Frontier(productgraph.Backward))),
		zap.Int("scheduled", ec.schedule.Len()),
		zap.Int("live_targets", ec.targets.Live()),
	)
}

func (d *Driver) Stats() Stats {
	ec := d.ec
	return Stats{
		Depth:          ec.depth,
		ForwardDepth:   ec.forwardDepth,
		BackwardDepth:  ec.backwardDepth,
		Levels:         ec.repo.Levels(),
		NodeStates:     ec.repo.NodeStateCount(),
		Signposts:      ec.repo.SignpostCount(),
		PathsReturned:  d.pathsReturned,
		TargetsTraced:  d.targetsTraced,
		ScheduledPairs: ec.schedule.Len(),
	}
}

// Close releases the search state. The driver returns ErrIteratorDone afterwards.
func (d *Driver) Close() {
	d.ec.repo.Close()
	d.backlog = nil
	d.state = exhausted
	if d.err == nil {
		d.err = ErrIteratorDone
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("depth=%d levels=%d node_states=%d signposts=%d paths=%d", s.Depth, s.Levels, s.NodeStates, s.Signposts, s.PathsReturned)
}
