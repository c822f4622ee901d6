// Package config contains the knobs and defaults of the ppbfs binary.
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

const (
	DefaultK                  = 1
	DefaultMaxConcurrent      = 4
	DefaultMaxDepth           = -1
	DefaultCacheSize          = 10000
	DefaultCacheTTL           = 10 * time.Second
	DefaultMigrationTimeout   = 5 * time.Second
	DefaultSlowQueryThreshold = 0
)

type LogConfig struct {
	// Format is the log format to use in the log output (e.g. 'text' or 'json')
	Format string

	// Level is the log level to use in the log output (e.g. 'none', 'debug', or 'info')
	Level string

	// Format of the timestamp in the log output (e.g. 'Unix'(default) or 'ISO8601')
	TimestampFormat string
}

// DatastoreConfig selects the graph store queries run against.
type DatastoreConfig struct {
	// Engine is 'memory', loaded from a fixture, or 'sqlite'.
	Engine string
	URI    string
	// Fixture is the YAML graph loaded into the memory engine.
	Fixture string

	// CacheSize bounds the relationship read cache. Zero disables the cache.
	CacheSize int64
	CacheTTL  time.Duration
}

// QueryConfig holds the defaults applied to queries that do not set them.
type QueryConfig struct {
	K int
	// Mode is 'paths' or 'groups'.
	Mode string
	// Search is 'unidirectional' or 'bidirectional'.
	Search string
	// MaxDepth bounds path length. Negative means unbounded.
	MaxDepth int
	// MaxConcurrent is the number of queries of a batch run at the same time.
	MaxConcurrent int
}

type MetricConfig struct {
	Enabled bool
	// Output is the file the metrics are written to after a batch. Empty means stderr.
	Output string
}

type TraceConfig struct {
	Enabled     bool
	Endpoint    string
	SampleRatio float64
	ServiceName string
	// SlowQueryThreshold, when positive, only exports the traces of slower queries.
	SlowQueryThreshold time.Duration
}

type Config struct {
	Log       LogConfig
	Datastore DatastoreConfig
	Query     QueryConfig
	Metrics   MetricConfig
	Trace     TraceConfig
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Format:          "text",
			Level:           "info",
			TimestampFormat: "Unix",
		},
		Datastore: DatastoreConfig{
			Engine:    "memory",
			CacheSize: DefaultCacheSize,
			CacheTTL:  DefaultCacheTTL,
		},
		Query: QueryConfig{
			K:             DefaultK,
			Mode:          "paths",
			Search:        "unidirectional",
			MaxDepth:      DefaultMaxDepth,
			MaxConcurrent: DefaultMaxConcurrent,
		},
		Trace: TraceConfig{
			Endpoint:           "0.0.0.0:4317",
			SampleRatio:        0.2,
			ServiceName:        "ppbfs",
			SlowQueryThreshold: DefaultSlowQueryThreshold,
		},
	}
}

// Verify returns an error describing the first invalid setting.
func (cfg *Config) Verify() error {
	if !slices.Contains([]string{"text", "json"}, cfg.Log.Format) {
		return fmt.Errorf("config 'log.format' must be one of ['text', 'json']")
	}

	if !slices.Contains([]string{"none", "debug", "info", "warn", "error", "panic", "fatal"}, cfg.Log.Level) {
		return fmt.Errorf(
			"config 'log.level' must be one of ['none', 'debug', 'info', 'warn', 'error', 'panic', 'fatal']",
		)
	}

	if cfg.Log.TimestampFormat != "Unix" && cfg.Log.TimestampFormat != "ISO8601" {
		return fmt.Errorf("config 'log.TimestampFormat' must be one of ['Unix', 'ISO8601']")
	}

	switch cfg.Datastore.Engine {
	case "memory":
		if cfg.Datastore.Fixture == "" {
			return errors.New("the memory engine needs a graph fixture")
		}
	case "sqlite":
		if cfg.Datastore.URI == "" {
			return errors.New("the sqlite engine needs a datastore uri")
		}
	default:
		return fmt.Errorf("config 'datastore.engine' must be one of ['memory', 'sqlite'], got '%s'", cfg.Datastore.Engine)
	}

	if cfg.Datastore.CacheSize < 0 {
		return fmt.Errorf("config 'datastore.cacheSize' cannot be negative")
	}
	if cfg.Datastore.CacheSize > 0 && cfg.Datastore.CacheTTL <= 0 {
		return fmt.Errorf("config 'datastore.cacheTTL' must be positive when the cache is enabled")
	}

	if cfg.Query.K < 1 {
		return fmt.Errorf("config 'query.k' must be at least 1, got %d", cfg.Query.K)
	}
	if !slices.Contains([]string{"paths", "groups"}, cfg.Query.Mode) {
		return fmt.Errorf("config 'query.mode' must be one of ['paths', 'groups']")
	}
	if !slices.Contains([]string{"unidirectional", "bidirectional"}, cfg.Query.Search) {
		return fmt.Errorf("config 'query.search' must be one of ['unidirectional', 'bidirectional']")
	}
	if cfg.Query.MaxConcurrent < 1 {
		return fmt.Errorf("config 'query.maxConcurrent' must be at least 1, got %d", cfg.Query.MaxConcurrent)
	}

	if cfg.Trace.Enabled && (cfg.Trace.SampleRatio < 0 || cfg.Trace.SampleRatio > 1) {
		return fmt.Errorf("config 'trace.sampleRatio' must be within [0, 1]")
	}

	return nil
}
