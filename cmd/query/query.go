// Package query contains the command that runs a batch of path queries against a graph store.
package query

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/openfga/ppbfs/cmd"
	"github.com/openfga/ppbfs/pkg/config"
	"github.com/openfga/ppbfs/pkg/graph"
	"github.com/openfga/ppbfs/pkg/logger"
	"github.com/openfga/ppbfs/pkg/pathfind"
	"github.com/openfga/ppbfs/pkg/telemetry"
)

const (
	queriesFlag = "queries"
	outputFlag  = "output"
)

func NewQueryCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "query",
		Short: "Run a batch of path queries",
		Long: `Run every query of a YAML batch against the configured graph store and print the
returned paths in the order the queries appear in the batch. A failing query does not
stop the others.`,
		RunE: runQuery,
		Args: cobra.NoArgs,
	}

	flags := command.Flags()
	flags.String(queriesFlag, "", "(required) the YAML file holding the batch of queries")
	flags.String(outputFlag, "text", "the output format of the results ('text' or 'json')")

	bindQueryFlags(command)

	return command
}

// Result is the outcome of one query of a batch.
type Result struct {
	Name  string          `json:"name"`
	ID    string          `json:"id,omitempty"`
	Paths []pathfind.Path `json:"paths"`
	Stats *ResultStats    `json:"stats,omitempty"`
	Error string          `json:"error,omitempty"`
}

type ResultStats struct {
	Depth      int   `json:"depth"`
	Levels     int   `json:"levels"`
	NodeStates int   `json:"nodeStates"`
	Signposts  int   `json:"signposts"`
	ElapsedMs  int64 `json:"elapsedMs"`
}

func runQuery(command *cobra.Command, _ []string) error {
	cfg, err := cmd.ReadConfig()
	if err != nil {
		return err
	}

	if err := cfg.Verify(); err != nil {
		return err
	}

	output := viper.GetString(outputFlag)
	if output != "text" && output != "json" {
		return fmt.Errorf("'%s' must be one of ['text', 'json']", outputFlag)
	}

	queriesPath := viper.GetString(queriesFlag)
	if queriesPath == "" {
		return fmt.Errorf("missing query batch")
	}

	batch, err := LoadBatch(queriesPath)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(
		logger.WithFormat(cfg.Log.Format),
		logger.WithLevel(cfg.Log.Level),
		logger.WithTimestampFormat(cfg.Log.TimestampFormat),
	)
	if err != nil {
		return err
	}

	ctx := command.Context()

	if cfg.Trace.Enabled {
		log.Info(fmt.Sprintf("🕵 tracing enabled: sampling ratio is %v and sending traces to '%s'", cfg.Trace.SampleRatio, cfg.Trace.Endpoint))

		_, shutdown, err := telemetry.NewTracerProvider(ctx,
			telemetry.WithOTLPEndpoint(cfg.Trace.Endpoint),
			telemetry.WithServiceName(cfg.Trace.ServiceName),
			telemetry.WithSamplingRatio(cfg.Trace.SampleRatio),
			telemetry.WithSlowQueryThreshold(cfg.Trace.SlowQueryThreshold),
		)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error("failed to shutdown tracing", zap.Error(err))
			}
		}()
	}

	reader, err := openReader(ctx, cfg.Datastore, log)
	if err != nil {
		return err
	}
	defer reader.Close()

	results := RunBatch(ctx, reader, batch, cfg.Query, log)

	if err := writeResults(command.OutOrStdout(), output, results); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		if err := writeMetrics(cfg.Metrics, command.ErrOrStderr()); err != nil {
			return err
		}
	}

	return nil
}

// RunBatch runs the queries of batch with at most cfg.MaxConcurrent running at once. The results
// are in batch order.
func RunBatch(ctx context.Context, reader graph.Reader, batch *Batch, cfg config.QueryConfig, log logger.Logger) []Result {
	results := make([]Result, len(batch.Queries))

	p := pool.New().WithContext(ctx).WithMaxGoroutines(max(cfg.MaxConcurrent, 1))
	for i, entry := range batch.Queries {
		p.Go(func(ctx context.Context) error {
			results[i] = runEntry(ctx, reader, entry, cfg, log)
			return nil
		})
	}
	_ = p.Wait()

	return results
}

func runEntry(ctx context.Context, reader graph.Reader, entry Entry, cfg config.QueryConfig, log logger.Logger) Result {
	res := Result{Name: entry.Name}
	log = log.With(zap.String("query", entry.Name))

	q, err := entry.Query(cfg)
	if err != nil {
		log.Warn("invalid query", zap.Error(err))
		res.Error = err.Error()
		return res
	}

	started := time.Now()
	rows, err := pathfind.Execute(ctx, reader, q, pathfind.Identity,
		pathfind.WithLogger(log),
		pathfind.WithMaxDepth(cfg.MaxDepth),
	)
	if err != nil {
		log.Warn("query failed", zap.Error(err))
		res.Error = err.Error()
		return res
	}
	res.ID = rows.ID()

	paths, err := pathfind.Collect(ctx, rows)
	stats := rows.Stats()
	res.Stats = &ResultStats{
		Depth:      stats.Depth,
		Levels:     stats.Levels,
		NodeStates: stats.NodeStates,
		Signposts:  stats.Signposts,
		ElapsedMs:  time.Since(started).Milliseconds(),
	}
	if err != nil {
		log.Warn("query failed", zap.Error(err))
		res.Error = err.Error()
		return res
	}

	res.Paths = paths
	return res
}

func writeMetrics(cfg config.MetricConfig, stderr io.Writer) error {
	w := stderr
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("failed to create metrics output: %w", err)
		}
		defer f.Close()
		w = f
	}

	return telemetry.WriteMetrics(w, prometheus.DefaultGatherer)
}
