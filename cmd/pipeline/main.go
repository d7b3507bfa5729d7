// jobsight pipeline — reads a raw postings export, normalizes each row
// through the model into the cleaned CSV table, then runs the aggregation
// passes that produce the dashboard chart artifacts.
//
// Stages are separately skippable so a re-aggregation never has to pay for
// model calls again.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/joho/godotenv"

	"jobsight/internal/aggregate"
	"jobsight/internal/ingest"
	"jobsight/internal/llm"
	"jobsight/internal/metrics"
	"jobsight/internal/normalize"
	"jobsight/internal/table"
)

func main() {
	_ = godotenv.Load()

	var (
		input         = flag.String("input", env.Str("INPUT_PATH", "data/jobs.xlsx"), "raw postings export (.xlsx or .csv)")
		sink          = flag.String("sink", env.Str("SINK_PATH", "data/jobs_clean.csv"), "cleaned table path")
		outDir        = flag.String("out", env.Str("OUT_DIR", "static/data"), "chart artifact directory")
		skipClean     = flag.Bool("skip-clean", false, "reuse the existing cleaned table, run aggregation only")
		skipAggregate = flag.Bool("skip-aggregate", false, "build the cleaned table only")
		parallel      = flag.Bool("parallel", true, "run aggregation passes concurrently")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting pipeline",
		slog.String("input", *input),
		slog.String("sink", *sink),
		slog.String("out", *outDir),
	)

	if !*skipClean {
		if err := runClean(ctx, *input, *sink); err != nil {
			slog.Error("clean stage failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	if !*skipAggregate {
		if err := runAggregate(ctx, *sink, *outDir, *parallel); err != nil {
			slog.Error("aggregate stage failed", slog.Any("error", err))
			os.Exit(1)
		}
	}

	slog.Info("pipeline done")
	os.Stdout.WriteString(metrics.Format())
}

func runClean(ctx context.Context, input, sink string) error {
	rows, err := ingest.ReadPostings(input)
	if err != nil {
		return err
	}
	slog.Info("postings loaded", slog.Int("rows", len(rows)))

	client := llm.New(llm.Config{
		BaseURL:     env.Str("LLM_API_BASE", "https://api.deepseek.com/v1"),
		APIKey:      env.Str("LLM_API_KEY", ""),
		Model:       env.Str("LLM_MODEL", "deepseek-chat"),
		Temperature: float32(env.Float("LLM_TEMPERATURE", 0.1)),
		MaxTokens:   env.Int("LLM_MAX_TOKENS", 2048),
	})

	builder := table.NewBuilder(table.Config{
		Normalizer: normalize.New(normalize.Config{
			Client:    client,
			Attempts:  env.Int("LLM_ATTEMPTS", 3),
			RetryWait: env.Duration("LLM_RETRY_WAIT", 1500*time.Millisecond),
		}),
		SinkPath: sink,
		RowDelay: env.Duration("ROW_DELAY", 500*time.Millisecond),
	})

	written, err := builder.Build(ctx, rows)
	if err != nil {
		return err
	}
	slog.Info("cleaned table built", slog.Int("rows_written", written), slog.String("sink", sink))
	return nil
}

func runAggregate(ctx context.Context, sink, outDir string, parallel bool) error {
	t, err := aggregate.Load(sink)
	if err != nil {
		return err
	}
	slog.Info("table loaded", slog.Int("rows", len(t.Rows)))

	if err := aggregate.RunAll(ctx, t, outDir, parallel); err != nil {
		return err
	}
	slog.Info("artifacts written", slog.Int("passes", len(aggregate.Passes)), slog.String("dir", outDir))
	return nil
}
