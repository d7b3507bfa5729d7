// Package table drives the normalizer over every raw row and persists the
// results to an append-only CSV sink, one flushed record per model round
// trip, so a crashed run can resume without redoing completed rows.
package table

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"jobsight/internal/metrics"
	"jobsight/internal/normalize"
	"jobsight/internal/posting"
)

// Sink column names, shared with the aggregation engine.
const (
	ColTitle          = "title"
	ColCompany        = "company"
	ColCity           = "city"
	ColRegion         = "region"
	ColSalaryMin      = "salary_min"
	ColSalaryMax      = "salary_max"
	ColSalaryMedian   = "salary_median"
	ColExperienceBand = "experience_band"
	ColExpYearsMin    = "experience_years_min"
	ColExpYearsMax    = "experience_years_max"
	ColDegreeLevel    = "degree_level"
	ColAITags         = "ai_tags"
	ColPrimaryDir     = "primary_direction"
	ColSummary        = "summary"
	ColCoreSkills     = "core_skills"
	ColPublishDate    = "publish_date"
	ColPublishMonth   = "publish_month"
)

// Header is the sink column order. Written once per file.
var Header = []string{
	ColTitle, ColCompany, ColCity, ColRegion,
	ColSalaryMin, ColSalaryMax, ColSalaryMedian,
	ColExperienceBand, ColExpYearsMin, ColExpYearsMax,
	ColDegreeLevel, ColAITags, ColPrimaryDir,
	ColSummary, ColCoreSkills,
	ColPublishDate, ColPublishMonth,
}

// ListSeparator joins ordered list fields into one CSV cell.
const ListSeparator = "、"

// Config holds builder settings.
type Config struct {
	Normalizer *normalize.Normalizer
	SinkPath   string
	RowDelay   time.Duration // pacing between model round-trips, default 500ms
}

// Builder runs the sequential normalize-and-append loop.
type Builder struct {
	norm    *normalize.Normalizer
	path    string
	limiter *rate.Limiter
}

// NewBuilder constructs a Builder, applying the default row delay.
func NewBuilder(cfg Config) *Builder {
	delay := cfg.RowDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &Builder{
		norm:    cfg.Normalizer,
		path:    cfg.SinkPath,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Build processes raw rows in input order, exactly once each, appending one
// record per row. Rows already present in the sink from a prior partial run
// are skipped, so re-running after a crash never duplicates output.
// Returns the count of rows written this run. Per-row normalization failures
// are absorbed by the fallback record; only a broken sink or a cancelled
// context aborts.
func (b *Builder) Build(ctx context.Context, rows []posting.RawPosting) (int, error) {
	existing, validSize, err := scanSink(b.path)
	if err != nil {
		return 0, err
	}

	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("table: open sink %s: %w", b.path, err)
	}
	defer f.Close()

	// Drop any torn tail a hard crash left behind, so the record it
	// belonged to gets rewritten whole.
	if err := f.Truncate(validSize); err != nil {
		return 0, fmt.Errorf("table: truncate sink %s: %w", b.path, err)
	}

	w := csv.NewWriter(f)
	if validSize == 0 {
		if err := w.Write(Header); err != nil {
			return 0, fmt.Errorf("table: write header: %w", err)
		}
		w.Flush()
	} else {
		slog.Info("resuming into existing sink",
			slog.String("path", b.path),
			slog.Int("rows_done", existing),
		)
	}

	written := 0
	total := len(rows)
	for i, raw := range rows {
		if i < existing {
			continue
		}
		if err := b.limiter.Wait(ctx); err != nil {
			return written, err
		}

		slog.Info("processing row",
			slog.Int("row", i+1),
			slog.Int("total", total),
			slog.String("title", raw.Title),
			slog.String("city", raw.City),
		)

		p := b.norm.Normalize(ctx, raw)
		if cerr := ctx.Err(); cerr != nil {
			// A cancelled context ends the attempt loop early, so the
			// record is a fallback that never got its retry budget.
			// Persisting it would make resume skip this row forever.
			return written, cerr
		}
		p.ComputeSalaryMedian()
		p.PublishDate = strings.TrimSpace(raw.PublishDate)
		p.PublishMonth = posting.MonthKey(raw.PublishDate)

		if err := w.Write(encodeRecord(p)); err != nil {
			return written, fmt.Errorf("table: write row %d: %w", i, err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return written, fmt.Errorf("table: flush row %d: %w", i, err)
		}

		metrics.IncrRowsProcessed()
		written++
	}

	if err := f.Sync(); err != nil {
		return written, fmt.Errorf("table: sync sink: %w", err)
	}
	return written, nil
}

// encodeRecord flattens a NormalizedPosting into one CSV record in Header
// order. List fields are joined with ListSeparator; absent numerics are
// empty cells.
func encodeRecord(p posting.NormalizedPosting) []string {
	return []string{
		p.Title, p.Company, p.City, p.Region,
		intCell(p.SalaryMin), intCell(p.SalaryMax), floatCell(p.SalaryMedian),
		string(p.ExperienceBand), intCell(p.ExperienceYearsMin), intCell(p.ExperienceYearsMax),
		string(p.DegreeLevel),
		strings.Join(p.AITags, ListSeparator),
		p.PrimaryDirection,
		p.Summary,
		strings.Join(p.CoreSkills, ListSeparator),
		p.PublishDate, p.PublishMonth,
	}
}

func intCell(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func floatCell(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// scanSink returns the number of complete data records already in the sink
// and the byte length of the sink up to the end of the last complete
// record. A record that fails to parse or is short on fields can only be
// the tail of a crashed write, so scanning stops there; everything past
// that offset is garbage to truncate. Missing file reports 0, 0.
func scanSink(path string) (rows int, validSize int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("table: open sink %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	count := 0
	var end int64
	for {
		rec, rerr := r.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil || len(rec) != len(Header) {
			break
		}
		count++
		end = r.InputOffset()
	}
	if count == 0 {
		return 0, 0, nil
	}
	return count - 1, end, nil
}
