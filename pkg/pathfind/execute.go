package pathfind

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/natefinch/wrap"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/openfga/ppbfs/internal/build"
	"github.com/openfga/ppbfs/internal/ppbfs"
	"github.com/openfga/ppbfs/pkg/graph"
	"github.com/openfga/ppbfs/pkg/logger"
	"github.com/openfga/ppbfs/pkg/productgraph"
	"github.com/openfga/ppbfs/pkg/telemetry"
)

var tracer = otel.Tracer("pkg/pathfind")

// ErrIteratorDone is returned by Rows.Next once every row has been returned.
var ErrIteratorDone = ppbfs.ErrIteratorDone

var (
	levelsExpandedHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace:                       build.ProjectName,
		Name:                            "levels_expanded",
		Help:                            "The number of levels expanded per query.",
		Buckets:                         []float64{1, 2, 4, 8, 16, 32, 64},
		NativeHistogramBucketFactor:     1.1,
		NativeHistogramMaxBucketNumber:  100,
		NativeHistogramMinResetDuration: time.Hour,
	})

	nodeStatesHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace:                       build.ProjectName,
		Name:                            "node_states",
		Help:                            "The number of node states created per query.",
		Buckets:                         []float64{1, 10, 100, 1000, 10000, 100000},
		NativeHistogramBucketFactor:     1.1,
		NativeHistogramMaxBucketNumber:  100,
		NativeHistogramMinResetDuration: time.Hour,
	})

	queryDurationHistogram = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:                       build.ProjectName,
		Name:                            "query_duration_ms",
		Help:                            "The time between the start of a query and its last row, in milliseconds.",
		Buckets:                         []float64{1, 5, 10, 25, 50, 100, 500, 1000, 5000},
		NativeHistogramBucketFactor:     1.1,
		NativeHistogramMaxBucketNumber:  100,
		NativeHistogramMinResetDuration: time.Hour,
	}, []string{"mode", "search"})

	pathsEmittedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: build.ProjectName,
		Name:      "paths_emitted_total",
		Help:      "The total number of rows returned by queries.",
	}, []string{"mode"})
)

// Stats describes the work done by a query.
type Stats = ppbfs.Stats

type config struct {
	logger    logger.Logger
	predicate func(Path) (bool, error)
	hook      productgraph.Hook
	maxDepth  int
}

type Option func(*config)

func WithLogger(l logger.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithPredicate filters paths after they are traced. A rejected path does not count toward K.
func WithPredicate(predicate func(Path) (bool, error)) Option {
	return func(c *config) {
		c.predicate = predicate
	}
}

// WithTraceHook observes the storage reads of the query.
func WithTraceHook(hook productgraph.Hook) Option {
	return func(c *config) {
		c.hook = hook
	}
}

// WithMaxDepth bounds the length of the returned paths. Negative means unbounded.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// Rows is the lazy result of a query. It is not safe for concurrent use.
type Rows[R any] struct {
	id          ulid.ULID
	query       Query
	driver      *ppbfs.Driver
	materialize func(Path) (R, error)
	logger      logger.Logger
	span        trace.Span
	started     time.Time
	returned    int
	stopped     bool
	err         error
}

// Execute starts q against reader. Rows are produced on demand by Next, each path turned into a
// row by materialize. The caller must Stop the rows.
func Execute[R any](ctx context.Context, reader graph.Reader, q Query, materialize func(Path) (R, error), opts ...Option) (*Rows[R], error) {
	cfg := &config{
		logger:   logger.NewNoopLogger(),
		maxDepth: -1,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}

	id := ulid.Make()
	ctx, span := tracer.Start(ctx, "pathfind.Execute", trace.WithAttributes(
		attribute.String("execution_id", id.String()),
		attribute.Int64("source", q.Source),
		attribute.Int("k", q.k()),
		attribute.String("mode", q.Mode.String()),
		attribute.String("search", q.Search.String()),
	))

	if err := checkNodes(ctx, reader, q); err != nil {
		telemetry.TraceError(span, err)
		span.End()
		return nil, err
	}

	log := cfg.logger.With(zap.String("execution_id", id.String()))

	driverOpts := []ppbfs.DriverOption{
		ppbfs.WithK(q.k()),
		ppbfs.WithLogger(log),
		ppbfs.WithMaxDepth(cfg.maxDepth),
	}
	if q.Mode == Groups {
		driverOpts = append(driverOpts, ppbfs.WithGroups())
	}
	if q.Target != nil {
		driverOpts = append(driverOpts, ppbfs.WithIntoTarget(*q.Target))
		if q.Search == Bidirectional {
			driverOpts = append(driverOpts, ppbfs.WithBidirectional(q.Automaton.FinalStates()...))
		}
	}
	if predicate := cfg.predicate; predicate != nil {
		driverOpts = append(driverOpts, ppbfs.WithPredicate(func(p ppbfs.TracedPath) (bool, error) {
			return predicate(newPath(p))
		}))
	}

	driver := ppbfs.New(productgraph.NewCursor(reader), q.Source, q.Automaton.Start(), driverOpts...)
	if cfg.hook != nil {
		driver.SetTraceHook(cfg.hook)
	}

	log.Debug("pathfind query started",
		zap.Int64("source", q.Source),
		zap.Int("k", q.k()),
		zap.Stringer("mode", q.Mode),
		zap.Stringer("search", q.Search),
	)

	return &Rows[R]{
		id:          id,
		query:       q,
		driver:      driver,
		materialize: materialize,
		logger:      log,
		span:        span,
		started:     time.Now(),
	}, nil
}

func checkNodes(ctx context.Context, reader graph.Reader, q Query) error {
	ids := []int64{q.Source}
	if q.Target != nil {
		ids = append(ids, *q.Target)
	}

	for _, id := range ids {
		if _, err := reader.Node(ctx, id); err != nil {
			if errors.Is(err, graph.ErrNotFound) {
				return wrap.With(fmt.Errorf("unknown node %d: %w", id, err), ErrUnknownNode)
			}
			return err
		}
	}
	return nil
}

// ID returns the execution id of the query, as found in its logs and span.
func (r *Rows[R]) ID() string {
	return r.id.String()
}

// Next returns the next row, or ErrIteratorDone. An error other than ErrIteratorDone stops the
// rows, and every later call returns that same error.
func (r *Rows[R]) Next(ctx context.Context) (R, error) {
	var zero R
	if r.err != nil {
		return zero, r.err
	}
	if r.stopped {
		return zero, ErrIteratorDone
	}

	p, err := r.driver.Next(ctx)
	if err != nil {
		if !errors.Is(err, ErrIteratorDone) {
			r.fail(err)
			r.logger.Error("pathfind query failed", zap.Error(err))
			r.Stop()
		}
		return zero, err
	}

	row, err := r.materialize(newPath(p))
	if err != nil {
		r.fail(err)
		r.Stop()
		return zero, err
	}

	r.returned++
	pathsEmittedCounter.WithLabelValues(r.query.Mode.String()).Inc()
	return row, nil
}

func (r *Rows[R]) fail(err error) {
	r.err = err
	telemetry.TraceError(r.span, err)
}

// Stats returns the work done so far.
func (r *Rows[R]) Stats() Stats {
	return r.driver.Stats()
}

// Stop releases the query. It is safe to call more than once.
func (r *Rows[R]) Stop() {
	if r.stopped {
		return
	}
	r.stopped = true

	stats := r.driver.Stats()
	r.driver.Close()

	levelsExpandedHistogram.Observe(float64(stats.Levels))
	nodeStatesHistogram.Observe(float64(stats.NodeStates))
	elapsed := time.Since(r.started)
	queryDurationHistogram.WithLabelValues(r.query.Mode.String(), r.query.Search.String()).
		Observe(float64(elapsed.Milliseconds()))

	r.span.SetAttributes(
		attribute.Int("rows", r.returned),
		attribute.Int("depth", stats.Depth),
		attribute.Int("node_states", stats.NodeStates),
	)
	r.span.End()

	r.logger.Info("pathfind query completed",
		zap.Int("rows", r.returned),
		zap.Int("depth", stats.Depth),
		zap.Int("levels", stats.Levels),
		zap.Int("node_states", stats.NodeStates),
		zap.Duration("elapsed", elapsed),
	)
}

// Collect returns every remaining row and stops rows.
func Collect[R any](ctx context.Context, rows *Rows[R]) ([]R, error) {
	defer rows.Stop()

	var res []R
	for {
		row, err := rows.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrIteratorDone) {
				return res, nil
			}
			return nil, err
		}
		res = append(res, row)
	}
}
