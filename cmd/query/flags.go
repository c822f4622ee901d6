package query

import (
	"github.com/spf13/cobra"

	"github.com/openfga/ppbfs/cmd/util"
	"github.com/openfga/ppbfs/pkg/config"
)

// bindQueryFlags binds the cobra cmd flags to the equivalent config value being managed
// by viper. This bridges the config between cobra flags and viper flags.
func bindQueryFlags(command *cobra.Command) {
	defaultConfig := config.DefaultConfig()
	flags := command.Flags()

	util.MustBindPFlag(queriesFlag, flags.Lookup(queriesFlag))
	util.MustBindEnv(queriesFlag, "PPBFS_QUERIES")

	util.MustBindPFlag(outputFlag, flags.Lookup(outputFlag))
	util.MustBindEnv(outputFlag, "PPBFS_OUTPUT")

	flags.String("datastore-engine", defaultConfig.Datastore.Engine, "the graph store engine ('memory' or 'sqlite')")
	util.MustBindPFlag("datastore.engine", flags.Lookup("datastore-engine"))
	util.MustBindEnv("datastore.engine", "PPBFS_DATASTORE_ENGINE")

	flags.String("datastore-uri", defaultConfig.Datastore.URI, "the sqlite database file of the 'sqlite' engine")
	util.MustBindPFlag("datastore.uri", flags.Lookup("datastore-uri"))
	util.MustBindEnv("datastore.uri", "PPBFS_DATASTORE_URI")

	flags.String("graph", defaultConfig.Datastore.Fixture, "the YAML graph fixture loaded by the 'memory' engine")
	util.MustBindPFlag("datastore.fixture", flags.Lookup("graph"))
	util.MustBindEnv("datastore.fixture", "PPBFS_DATASTORE_FIXTURE")

	flags.Int64("datastore-cache-size", defaultConfig.Datastore.CacheSize, "the number of node and relationship reads kept in the read cache (0 disables the cache)")
	util.MustBindPFlag("datastore.cacheSize", flags.Lookup("datastore-cache-size"))
	util.MustBindEnv("datastore.cacheSize", "PPBFS_DATASTORE_CACHE_SIZE", "PPBFS_DATASTORE_CACHESIZE")

	flags.Duration("datastore-cache-ttl", defaultConfig.Datastore.CacheTTL, "the time to live of the read cache entries")
	util.MustBindPFlag("datastore.cacheTTL", flags.Lookup("datastore-cache-ttl"))
	util.MustBindEnv("datastore.cacheTTL", "PPBFS_DATASTORE_CACHE_TTL", "PPBFS_DATASTORE_CACHETTL")

	flags.Int("k", defaultConfig.Query.K, "the number of paths (or length groups) returned per target when a query does not set one")
	util.MustBindPFlag("query.k", flags.Lookup("k"))
	util.MustBindEnv("query.k", "PPBFS_QUERY_K")

	flags.String("mode", defaultConfig.Query.Mode, "what K counts when a query does not set it ('paths' or 'groups')")
	util.MustBindPFlag("query.mode", flags.Lookup("mode"))
	util.MustBindEnv("query.mode", "PPBFS_QUERY_MODE")

	flags.String("search", defaultConfig.Query.Search, "the search direction when a query does not set it ('unidirectional' or 'bidirectional')")
	util.MustBindPFlag("query.search", flags.Lookup("search"))
	util.MustBindEnv("query.search", "PPBFS_QUERY_SEARCH")

	flags.Int("max-depth", defaultConfig.Query.MaxDepth, "the maximum length of a returned path (negative is unbounded)")
	util.MustBindPFlag("query.maxDepth", flags.Lookup("max-depth"))
	util.MustBindEnv("query.maxDepth", "PPBFS_QUERY_MAX_DEPTH", "PPBFS_QUERY_MAXDEPTH")

	flags.Int("max-concurrent", defaultConfig.Query.MaxConcurrent, "the number of queries of the batch run at the same time")
	util.MustBindPFlag("query.maxConcurrent", flags.Lookup("max-concurrent"))
	util.MustBindEnv("query.maxConcurrent", "PPBFS_QUERY_MAX_CONCURRENT", "PPBFS_QUERY_MAXCONCURRENT")

	flags.String("log-format", defaultConfig.Log.Format, "the log format to output logs in ('text' or 'json')")
	util.MustBindPFlag("log.format", flags.Lookup("log-format"))
	util.MustBindEnv("log.format", "PPBFS_LOG_FORMAT")

	flags.String("log-level", defaultConfig.Log.Level, "the log level to output logs at ('none', 'debug', 'info', 'warn', 'error', 'panic', 'fatal')")
	util.MustBindPFlag("log.level", flags.Lookup("log-level"))
	util.MustBindEnv("log.level", "PPBFS_LOG_LEVEL")

	flags.String("log-timestamp-format", defaultConfig.Log.TimestampFormat, "the timestamp format to use for log messages ('Unix' or 'ISO8601')")
	util.MustBindPFlag("log.timestampFormat", flags.Lookup("log-timestamp-format"))
	util.MustBindEnv("log.timestampFormat", "PPBFS_LOG_TIMESTAMP_FORMAT")

	flags.Bool("metrics-enabled", defaultConfig.Metrics.Enabled, "write the prometheus metrics of the batch once it completes")
	util.MustBindPFlag("metrics.enabled", flags.Lookup("metrics-enabled"))
	util.MustBindEnv("metrics.enabled", "PPBFS_METRICS_ENABLED")

	flags.String("metrics-output", defaultConfig.Metrics.Output, "the file the metrics are written to (stderr when empty)")
	util.MustBindPFlag("metrics.output", flags.Lookup("metrics-output"))
	util.MustBindEnv("metrics.output", "PPBFS_METRICS_OUTPUT")

	flags.Bool("trace-enabled", defaultConfig.Trace.Enabled, "enable tracing")
	util.MustBindPFlag("trace.enabled", flags.Lookup("trace-enabled"))
	util.MustBindEnv("trace.enabled", "PPBFS_TRACE_ENABLED")

	flags.String("trace-otlp-endpoint", defaultConfig.Trace.Endpoint, "the endpoint of the trace collector")
	util.MustBindPFlag("trace.endpoint", flags.Lookup("trace-otlp-endpoint"))
	util.MustBindEnv("trace.endpoint", "PPBFS_TRACE_OTLP_ENDPOINT")

	flags.Float64("trace-sample-ratio", defaultConfig.Trace.SampleRatio, "the fraction of traces to sample. 1 means all, 0 means none.")
	util.MustBindPFlag("trace.sampleRatio", flags.Lookup("trace-sample-ratio"))
	util.MustBindEnv("trace.sampleRatio", "PPBFS_TRACE_SAMPLE_RATIO")

	flags.String("trace-service-name", defaultConfig.Trace.ServiceName, "the service name included in sampled traces")
	util.MustBindPFlag("trace.serviceName", flags.Lookup("trace-service-name"))
	util.MustBindEnv("trace.serviceName", "PPBFS_TRACE_SERVICE_NAME")

	flags.Duration("trace-slow-query-threshold", defaultConfig.Trace.SlowQueryThreshold, "only export the traces of queries slower than this (0 exports every sampled trace)")
	util.MustBindPFlag("trace.slowQueryThreshold", flags.Lookup("trace-slow-query-threshold"))
	util.MustBindEnv("trace.slowQueryThreshold", "PPBFS_TRACE_SLOW_QUERY_THRESHOLD")
}
