package aggregate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"jobsight/internal/metrics"
)

// Pass is one independent aggregation over the table, producing one named
// JSON artifact.
type Pass struct {
	Name string // artifact base name, e.g. "trend" → trend.json
	Run  func(t *Table) (any, error)
}

// Passes is the registry of all aggregation passes. Each output shape
// matches what the dashboard front end consumes.
var Passes = []Pass{
	{Name: "trend", Run: buildTrend},
	{Name: "geo", Run: buildGeo},
	{Name: "rose", Run: buildRose},
	{Name: "wordcloud", Run: buildWordcloud},
	{Name: "skills_top10", Run: buildSkillsTop10},
	{Name: "skills_graph", Run: func(t *Table) (any, error) { return buildSkillsGraph(t, graphTopSkills, graphMinWeight), nil }},
	{Name: "region_summary", Run: buildRegionSummary},
	{Name: "city_month_trend", Run: buildCityMonthTrend},
	{Name: "city_job_rank", Run: buildCityJobRank},
	{Name: "job_category_rose", Run: buildCategoryRose},
	{Name: "job_category_compare", Run: buildCategoryCompare},
	{Name: "job_category_radar", Run: buildCategoryRadar},
	{Name: "category_wordcloud", Run: buildCategoryWordcloud},
	{Name: "degree_counts", Run: buildDegreeCounts},
	{Name: "degree_salary", Run: buildDegreeSalary},
	{Name: "salary_bins", Run: buildSalaryBins},
	{Name: "experience_salary_boxplot", Run: buildExperienceBoxplot},
	{Name: "city_direction_sankey", Run: buildSankey},
	{Name: "exp_degree_salary_bubble", Run: buildExpDegreeBubble},
	{Name: "skill_cockpit", Run: buildSkillCockpit},
	{Name: "skill_drill", Run: func(t *Table) (any, error) { return buildSkillDrill(t, drillTopSkills, drillMinSupport), nil }},
}

// RunAll executes every registered pass against one snapshot, writing each
// artifact under outDir. Passes share no mutable state, so they may run
// concurrently without changing any observable result.
func RunAll(ctx context.Context, t *Table, outDir string, parallel bool) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("aggregate: mkdir %s: %w", outDir, err)
	}

	g, _ := errgroup.WithContext(ctx)
	if !parallel {
		g.SetLimit(1)
	}
	for _, p := range Passes {
		g.Go(func() error {
			payload, err := p.Run(t)
			if err != nil {
				return fmt.Errorf("aggregate: pass %s: %w", p.Name, err)
			}
			path := filepath.Join(outDir, p.Name+".json")
			if err := writeArtifact(path, payload); err != nil {
				return fmt.Errorf("aggregate: pass %s: %w", p.Name, err)
			}
			metrics.IncrArtifactsWritten()
			slog.Info("artifact written", slog.String("pass", p.Name), slog.String("path", path))
			return nil
		})
	}
	return g.Wait()
}

// writeArtifact serializes v as indented UTF-8 JSON without HTML escaping,
// so CJK text stays readable in the artifact files.
func writeArtifact(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// NameValue is the common {name, value} payload element.
type NameValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}
