package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/openfga/ppbfs/assets"
	"github.com/openfga/ppbfs/pkg/logger"
)

// MigrationConfig configures a schema migration run.
type MigrationConfig struct {
	URI string
	// TargetVersion is the schema version to migrate to. Zero means the latest version.
	TargetVersion uint
	Timeout       time.Duration
	Verbose       bool
	Logger        logger.Logger
}

// Migrate creates or migrates the graph schema at config.URI.
func Migrate(ctx context.Context, config MigrationConfig) error {
	if config.Logger == nil {
		config.Logger = logger.NewNoopLogger()
	}

	goose.SetLogger(goose.NopLogger())
	goose.SetVerbose(config.Verbose)

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set sqlite dialect: %w", err)
	}

	uri, err := PrepareDSN(config.URI)
	if err != nil {
		return err
	}

	db, err := goose.OpenDBWithDriver("sqlite", uri)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}
	defer db.Close()

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = config.Timeout
	err = backoff.Retry(func() error {
		return db.PingContext(ctx)
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return fmt.Errorf("failed to initialize sqlite connection: %w", err)
	}

	goose.SetBaseFS(assets.EmbedMigrations)

	return executeMigrations(db, config)
}

// CurrentVersion returns the schema version of the database at uri.
func CurrentVersion(uri string) (int64, error) {
	uri, err := PrepareDSN(uri)
	if err != nil {
		return 0, err
	}

	db, err := goose.OpenDBWithDriver("sqlite", uri)
	if err != nil {
		return 0, fmt.Errorf("failed to open sqlite connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(assets.EmbedMigrations)
	return goose.GetDBVersion(db)
}

func executeMigrations(db *sql.DB, config MigrationConfig) error {
	migrationsPath := assets.SqliteMigrationDir

	currentVersion, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get sqlite db version: %w", err)
	}

	config.Logger.Info("sqlite current version", zap.Int64("version", currentVersion))

	if config.TargetVersion == 0 {
		if err := goose.Up(db, migrationsPath); err != nil {
			return fmt.Errorf("failed to run sqlite migrations: %w", err)
		}
		config.Logger.Info("sqlite migration done")
		return nil
	}

	targetVersion := int64(config.TargetVersion)

	switch {
	case targetVersion < currentVersion:
		if err := goose.DownTo(db, migrationsPath, targetVersion); err != nil {
			return fmt.Errorf("failed to run sqlite migrations down to %v: %w", targetVersion, err)
		}
	case targetVersion > currentVersion:
		if err := goose.UpTo(db, migrationsPath, targetVersion); err != nil {
			return fmt.Errorf("failed to run sqlite migrations up to %v: %w", targetVersion, err)
		}
	default:
		config.Logger.Info("sqlite nothing to do")
		return nil
	}

	config.Logger.Info("sqlite migration done", zap.Int64("version", targetVersion))
	return nil
}
