package graph

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/Yiling-J/theine-go"
	"github.com/cespare/xxhash/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/openfga/ppbfs/internal/build"
)

const (
	defaultMaxCacheSize = 10000
	defaultCacheTTL     = 10 * time.Second
)

var (
	cacheHitCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: build.ProjectName,
		Name:      "cache_hits_total",
		Help:      "The total number of graph reads served from the cache.",
	}, []string{"kind"})

	cacheMissCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: build.ProjectName,
		Name:      "cache_misses_total",
		Help:      "The total number of graph reads that missed the cache.",
	}, []string{"kind"})
)

type cachedRelationships struct {
	relationships []Relationship
	expiresAt     time.Time
}

// CachedReader is a Reader that memoizes node and relationship reads of the wrapped Reader.
type CachedReader struct {
	Reader
	nodes         *theine.Cache[int64, Node]
	relationships *theine.Cache[uint64, cachedRelationships]
	maxSize       int64
	ttl           time.Duration
}

type CachedReaderOpt func(*CachedReader)

// WithMaxCacheSize bounds the number of entries held by each cache.
func WithMaxCacheSize(size int64) CachedReaderOpt {
	return func(c *CachedReader) {
		c.maxSize = size
	}
}

// WithCacheTTL sets how long a relationship read stays valid.
func WithCacheTTL(ttl time.Duration) CachedReaderOpt {
	return func(c *CachedReader) {
		c.ttl = ttl
	}
}

var _ Reader = (*CachedReader)(nil)

// NewCachedReader wraps reader with bounded caches.
func NewCachedReader(reader Reader, opts ...CachedReaderOpt) (*CachedReader, error) {
	c := &CachedReader{
		Reader:  reader,
		maxSize: defaultMaxCacheSize,
		ttl:     defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}

	var err error
	c.nodes, err = theine.NewBuilder[int64, Node](c.maxSize).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build node cache: %w", err)
	}

	c.relationships, err = theine.NewBuilder[uint64, cachedRelationships](c.maxSize).Build()
	if err != nil {
		c.nodes.Close()
		return nil, fmt.Errorf("failed to build relationship cache: %w", err)
	}

	return c, nil
}

func (c *CachedReader) Node(ctx context.Context, id int64) (Node, error) {
	if n, ok := c.nodes.Get(id); ok {
		cacheHitCounter.WithLabelValues("node").Inc()
		return n, nil
	}
	cacheMissCounter.WithLabelValues("node").Inc()

	n, err := c.Reader.Node(ctx, id)
	if err != nil {
		return Node{}, err
	}
	c.nodes.SetWithTTL(id, n, 1, c.ttl)

	return n, nil
}

func (c *CachedReader) Relationships(ctx context.Context, nodeID int64, direction Direction, types []string) (Iterator[Relationship], error) {
	key := relationshipsCacheKey(nodeID, direction, types)

	if entry, ok := c.relationships.Get(key); ok && time.Now().Before(entry.expiresAt) {
		cacheHitCounter.WithLabelValues("relationships").Inc()
		return NewStaticIterator(slices.Clone(entry.relationships)), nil
	}
	cacheMissCounter.WithLabelValues("relationships").Inc()

	iter, err := c.Reader.Relationships(ctx, nodeID, direction, types)
	if err != nil {
		return nil, err
	}

	rels, err := ToArray(ctx, iter)
	if err != nil {
		return nil, err
	}

	c.relationships.SetWithTTL(key, cachedRelationships{
		relationships: rels,
		expiresAt:     time.Now().Add(c.ttl),
	}, int64(len(rels)+1), c.ttl)

	return NewStaticIterator(slices.Clone(rels)), nil
}

// Close releases the caches and closes the wrapped reader.
func (c *CachedReader) Close() {
	c.nodes.Close()
	c.relationships.Close()
	c.Reader.Close()
}

func relationshipsCacheKey(nodeID int64, direction Direction, types []string) uint64 {
	sorted := slices.Clone(types)
	slices.Sort(sorted)

	h := xxhash.New()
	_, _ = h.WriteString(strconv.FormatInt(nodeID, 10))
	_, _ = h.WriteString("/")
	_, _ = h.WriteString(direction.String())
	for _, t := range sorted {
		_, _ = h.WriteString("/")
		_, _ = h.WriteString(t)
	}
	return h.Sum64()
}
