// Package aggregate rebuilds every chart payload from the normalized table.
// Each pass is an independent pure function over one immutable snapshot;
// passes share null-handling, stable top-K and dense-series policies.
package aggregate

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"jobsight/internal/posting"
	"jobsight/internal/table"
)

// Row is one normalized posting as the aggregation passes see it.
type Row struct {
	Title            string
	Company          string
	City             string
	Region           string
	SalaryMedian     *float64
	ExperienceBand   string
	DegreeLevel      string
	AITags           []string
	CoreSkills       []string
	PrimaryDirection string
	PublishMonth     string
}

// Table is the immutable batch snapshot every pass reads.
type Table struct {
	Rows []Row
}

// requiredColumns must all be present in the sink header; any absence is
// fatal for the whole engine run, before any pass executes.
var requiredColumns = []string{
	table.ColCity, table.ColPrimaryDir, table.ColSalaryMedian,
	table.ColExperienceBand, table.ColDegreeLevel,
	table.ColAITags, table.ColCoreSkills, table.ColPublishMonth,
}

// Load reads the normalized CSV table from path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("aggregate: open table %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("aggregate: read table %s: %w", path, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("aggregate: table %s has no header", path)
	}

	idx := make(map[string]int, len(recs[0]))
	for i, h := range recs[0] {
		idx[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("aggregate: missing required column(s): %s", strings.Join(missing, ", "))
	}

	cell := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	t := &Table{Rows: make([]Row, 0, len(recs)-1)}
	for _, rec := range recs[1:] {
		row := Row{
			Title:            cell(rec, table.ColTitle),
			Company:          cell(rec, table.ColCompany),
			City:             cell(rec, table.ColCity),
			Region:           cell(rec, table.ColRegion),
			ExperienceBand:   cell(rec, table.ColExperienceBand),
			DegreeLevel:      cell(rec, table.ColDegreeLevel),
			PrimaryDirection: cell(rec, table.ColPrimaryDir),
			PublishMonth:     cell(rec, table.ColPublishMonth),
			AITags:           posting.SplitTags(cell(rec, table.ColAITags)),
			CoreSkills:       posting.SplitTags(cell(rec, table.ColCoreSkills)),
		}
		if s := cell(rec, table.ColSalaryMedian); s != "" {
			if v, err := strconv.ParseFloat(s, 64); err == nil {
				row.SalaryMedian = &v
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Months returns the sorted set of distinct non-empty publish months.
// Lexicographic sort is correct for zero-padded YYYY-MM keys.
func (t *Table) Months() []string {
	seen := make(map[string]struct{})
	var months []string
	for _, r := range t.Rows {
		if r.PublishMonth == "" {
			continue
		}
		if _, ok := seen[r.PublishMonth]; !ok {
			seen[r.PublishMonth] = struct{}{}
			months = append(months, r.PublishMonth)
		}
	}
	sort.Strings(months)
	return months
}

// experienceOrderStrings is the display order of experience bands.
func experienceOrderStrings() []string {
	out := make([]string, len(posting.ExperienceOrder))
	for i, b := range posting.ExperienceOrder {
		out[i] = string(b)
	}
	return out
}

// degreeOrderStrings is the display order of degree levels.
func degreeOrderStrings() []string {
	out := make([]string, len(posting.DegreeOrder))
	for i, d := range posting.DegreeOrder {
		out[i] = string(d)
	}
	return out
}

// Salaries collects the non-null salary medians of rows accepted by keep.
func (t *Table) Salaries(keep func(Row) bool) []float64 {
	var out []float64
	for _, r := range t.Rows {
		if r.SalaryMedian != nil && (keep == nil || keep(r)) {
			out = append(out, *r.SalaryMedian)
		}
	}
	return out
}
