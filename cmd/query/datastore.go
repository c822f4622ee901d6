package query

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/openfga/ppbfs/pkg/config"
	"github.com/openfga/ppbfs/pkg/graph"
	"github.com/openfga/ppbfs/pkg/graph/memory"
	"github.com/openfga/ppbfs/pkg/graph/sqlite"
	"github.com/openfga/ppbfs/pkg/logger"
)

// openReader opens the configured graph store, behind a read cache when one is configured.
func openReader(ctx context.Context, cfg config.DatastoreConfig, log logger.Logger) (graph.Reader, error) {
	var reader graph.Reader

	switch cfg.Engine {
	case "memory":
		fixture, err := graph.LoadFixture(cfg.Fixture)
		if err != nil {
			return nil, err
		}
		store, err := memory.NewFromFixture(ctx, fixture)
		if err != nil {
			return nil, err
		}
		reader = store
		log.Info("using 'memory' storage engine",
			zap.String("fixture", cfg.Fixture),
			zap.Int("nodes", len(fixture.Nodes)),
			zap.Int("relationships", len(fixture.Relationships)),
		)
	case "sqlite":
		store, err := sqlite.New(cfg.URI, sqlite.WithLogger(log))
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite datastore: %w", err)
		}
		reader = store
		log.Info("using 'sqlite' storage engine", zap.String("uri", cfg.URI))
	default:
		return nil, fmt.Errorf("storage engine '%s' is unsupported", cfg.Engine)
	}

	if cfg.CacheSize == 0 {
		return reader, nil
	}

	cached, err := graph.NewCachedReader(reader,
		graph.WithMaxCacheSize(cfg.CacheSize),
		graph.WithCacheTTL(cfg.CacheTTL),
	)
	if err != nil {
		reader.Close()
		return nil, err
	}
	return cached, nil
}
