// Package sqlite provides a graph store persisted in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/openfga/ppbfs/pkg/graph"
	"github.com/openfga/ppbfs/pkg/logger"
)

var tracer = otel.Tracer("pkg/graph/sqlite")

func startTrace(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "sqlite."+name)
}

// Store provides a SQLite based implementation of [graph.Store].
type Store struct {
	stbl   sq.StatementBuilderType
	db     *sql.DB
	logger logger.Logger
}

var _ graph.Store = (*Store)(nil)

type StoreOption func(*Store)

func WithLogger(l logger.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

// PrepareDSN prepares a raw DSN for use with SQLite, specifying defaults for journal mode and busy timeout.
func PrepareDSN(uri string) (string, error) {
	query := url.Values{}
	var err error

	if i := strings.Index(uri, "?"); i != -1 {
		query, err = url.ParseQuery(uri[i+1:])
		if err != nil {
			return uri, fmt.Errorf("error parsing dsn: %w", err)
		}

		uri = uri[:i]
	}

	foundJournalMode := false
	foundBusyTimeout := false
	for _, val := range query["_pragma"] {
		if strings.HasPrefix(val, "journal_mode") {
			foundJournalMode = true
		} else if strings.HasPrefix(val, "busy_timeout") {
			foundBusyTimeout = true
		}
	}

	if !foundJournalMode {
		query.Add("_pragma", "journal_mode(WAL)")
	}
	if !foundBusyTimeout {
		query.Add("_pragma", "busy_timeout(100)")
	}
	if !query.Has("_txlock") {
		query.Set("_txlock", "immediate")
	}

	return uri + "?" + query.Encode(), nil
}

// New opens the store at uri. The schema must have been created with [Migrate].
func New(uri string, opts ...StoreOption) (*Store, error) {
	uri, err := PrepareDSN(uri)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", uri)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite connection: %w", err)
	}

	s := &Store{
		stbl:   sq.StatementBuilder.RunWith(db),
		db:     db,
		logger: logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Close see [graph.Reader].Close.
func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Warn("failed to close sqlite graph store", zap.Error(err))
	}
}

func (s *Store) Node(ctx context.Context, id int64) (graph.Node, error) {
	ctx, span := startTrace(ctx, "Node")
	defer span.End()

	var labels, properties string
	err := s.stbl.
		Select("labels", "properties").
		From("nodes").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx).
		Scan(&labels, &properties)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return graph.Node{}, fmt.Errorf("%w: node %d", graph.ErrNotFound, id)
		}
		return graph.Node{}, fmt.Errorf("sqlite read node: %w", err)
	}

	return graph.Node{
		ID:         id,
		Labels:     decodeLabels(labels),
		Properties: decodeProperties(properties),
	}, nil
}

func (s *Store) Relationships(ctx context.Context, nodeID int64, direction graph.Direction, types []string) (graph.Iterator[graph.Relationship], error) {
	ctx, span := startTrace(ctx, "Relationships")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("node_id", nodeID),
		attribute.String("direction", direction.String()),
	)

	sb := s.stbl.
		Select("id", "start_node", "end_node", "type", "properties").
		From("relationships").
		OrderBy("id")

	switch direction {
	case graph.DirectionOutgoing:
		sb = sb.Where(sq.Eq{"start_node": nodeID})
	case graph.DirectionIncoming:
		sb = sb.Where(sq.Eq{"end_node": nodeID})
	default:
		sb = sb.Where(sq.Or{sq.Eq{"start_node": nodeID}, sq.Eq{"end_node": nodeID}})
	}
	if len(types) > 0 {
		sb = sb.Where(sq.Eq{"type": types})
	}

	rows, err := sb.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlite read relationships: %w", err)
	}

	return &relationshipIterator{rows: rows}, nil
}

type relationshipIterator struct {
	rows *sql.Rows
}

func (r *relationshipIterator) Next(ctx context.Context) (graph.Relationship, error) {
	if ctx.Err() != nil {
		return graph.Relationship{}, graph.ErrIteratorDone
	}

	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return graph.Relationship{}, fmt.Errorf("sqlite iterate relationships: %w", err)
		}
		return graph.Relationship{}, graph.ErrIteratorDone
	}

	var rel graph.Relationship
	var properties string
	if err := r.rows.Scan(&rel.ID, &rel.Start, &rel.End, &rel.Type, &properties); err != nil {
		return graph.Relationship{}, fmt.Errorf("sqlite scan relationship: %w", err)
	}
	rel.Properties = decodeProperties(properties)

	return rel, nil
}

func (r *relationshipIterator) Stop() {
	_ = r.rows.Close()
}

func (s *Store) WriteNodes(ctx context.Context, nodes []graph.Node) error {
	ctx, span := startTrace(ctx, "WriteNodes")
	defer span.End()

	if len(nodes) == 0 {
		return nil
	}

	ib := s.stbl.
		Insert("nodes").
		Columns("id", "labels", "properties", "inserted_at")
	for _, n := range nodes {
		labels, err := encode(n.Labels, "[]")
		if err != nil {
			return err
		}
		properties, err := encode(n.Properties, "{}")
		if err != nil {
			return err
		}
		ib = ib.Values(n.ID, labels, properties, sq.Expr("datetime('subsec')"))
	}
	ib = ib.Suffix("ON CONFLICT (id) DO UPDATE SET labels = excluded.labels, properties = excluded.properties")

	if _, err := ib.ExecContext(ctx); err != nil {
		return fmt.Errorf("sqlite write nodes: %w", err)
	}
	return nil
}

func (s *Store) WriteRelationships(ctx context.Context, relationships []graph.Relationship) error {
	ctx, span := startTrace(ctx, "WriteRelationships")
	defer span.End()

	if len(relationships) == 0 {
		return nil
	}

	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin transaction: %w", err)
	}
	defer func() {
		_ = txn.Rollback()
	}()

	ids := make([]int64, 0, 2*len(relationships))
	for _, r := range relationships {
		ids = append(ids, r.Start, r.End)
	}

	var known int
	err = s.stbl.
		Select("COUNT(DISTINCT id)").
		From("nodes").
		Where(sq.Eq{"id": ids}).
		RunWith(txn). // Part of a txn.
		QueryRowContext(ctx).
		Scan(&known)
	if err != nil {
		return fmt.Errorf("sqlite check relationship endpoints: %w", err)
	}
	if known != countDistinct(ids) {
		return fmt.Errorf("%w: relationship endpoint is not a known node", graph.ErrInvalidRelationship)
	}

	ib := s.stbl.
		Insert("relationships").
		Columns("id", "start_node", "end_node", "type", "properties", "inserted_at")
	for _, r := range relationships {
		properties, err := encode(r.Properties, "{}")
		if err != nil {
			return err
		}
		ib = ib.Values(r.ID, r.Start, r.End, r.Type, properties, sq.Expr("datetime('subsec')"))
	}
	ib = ib.Suffix("ON CONFLICT (id) DO UPDATE SET start_node = excluded.start_node, end_node = excluded.end_node, type = excluded.type, properties = excluded.properties")

	if _, err := ib.RunWith(txn).ExecContext(ctx); err != nil { // Part of a txn.
		return fmt.Errorf("sqlite write relationships: %w", err)
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("sqlite commit relationships: %w", err)
	}
	return nil
}

func countDistinct(ids []int64) int {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return len(set)
}

func encode(v any, empty string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode column: %w", err)
	}
	if string(b) == "null" {
		return empty, nil
	}
	return string(b), nil
}

func decodeLabels(s string) []string {
	var labels []string
	for _, l := range gjson.Parse(s).Array() {
		labels = append(labels, l.String())
	}
	return labels
}

func decodeProperties(s string) map[string]any {
	props, ok := gjson.Parse(s).Value().(map[string]any)
	if !ok || len(props) == 0 {
		return nil
	}
	return props
}
