package aggregate

import (
	"math"
	"sort"
)

// Salary structure passes: degree counts and salary stats, the global
// salary histogram, experience boxplots and the experience × degree bubble.

// salaryBinEdges bucket the global salary histogram; the last interval is
// open-ended.
var (
	salaryBinEdges  = []float64{0, 5000, 10000, 15000, 20000, 30000, 50000, math.Inf(1)}
	salaryBinLabels = []string{"0-5k", "5k-10k", "10k-15k", "15k-20k", "20k-30k", "30k-50k", "50k+"}
)

// DegreeCountsPayload lists degree frequencies, descending.
type DegreeCountsPayload struct {
	Degrees []string    `json:"degrees"`
	Counts  []int       `json:"counts"`
	Data    []NameValue `json:"data"`
}

func buildDegreeCounts(t *Table) (any, error) {
	degrees := newCounter()
	for _, r := range t.Rows {
		if r.DegreeLevel != "" {
			degrees.add(r.DegreeLevel)
		}
	}
	payload := DegreeCountsPayload{Degrees: []string{}, Counts: []int{}, Data: []NameValue{}}
	for _, e := range degrees.top(0) {
		payload.Degrees = append(payload.Degrees, e.Name)
		payload.Counts = append(payload.Counts, e.Count)
		payload.Data = append(payload.Data, NameValue{Name: e.Name, Value: e.Count})
	}
	return payload, nil
}

// DegreeSalaryPayload carries parallel per-degree salary statistics,
// ordered by median ascending. Degrees with no salaried rows are omitted.
type DegreeSalaryPayload struct {
	Degrees []string  `json:"degrees"`
	Count   []int     `json:"count"`
	Mean    []float64 `json:"mean"`
	Median  []float64 `json:"median"`
	Min     []float64 `json:"min"`
	Max     []float64 `json:"max"`
}

func buildDegreeSalary(t *Table) (any, error) {
	type degreeStat struct {
		degree string
		vals   []float64
	}
	var stats []degreeStat
	for _, d := range degreeOrderStrings() {
		vals := t.Salaries(func(r Row) bool { return r.DegreeLevel == d })
		if len(vals) == 0 {
			continue
		}
		stats = append(stats, degreeStat{degree: d, vals: vals})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return FiveNumber(stats[i].vals)[2] < FiveNumber(stats[j].vals)[2]
	})

	payload := DegreeSalaryPayload{
		Degrees: []string{}, Count: []int{},
		Mean: []float64{}, Median: []float64{}, Min: []float64{}, Max: []float64{},
	}
	for _, s := range stats {
		five := FiveNumber(s.vals)
		mean, _ := Mean(s.vals)
		payload.Degrees = append(payload.Degrees, s.degree)
		payload.Count = append(payload.Count, len(s.vals))
		payload.Mean = append(payload.Mean, round2(mean))
		payload.Median = append(payload.Median, round2(five[2]))
		payload.Min = append(payload.Min, round2(five[0]))
		payload.Max = append(payload.Max, round2(five[4]))
	}
	return payload, nil
}

// SalaryBinsPayload is the global salary histogram. Every configured label
// appears even with a zero count; BinEdges carries "inf" for the open end.
type SalaryBinsPayload struct {
	Bins     []string `json:"bins"`
	Counts   []int    `json:"counts"`
	BinEdges []any    `json:"bin_edges"`
}

func buildSalaryBins(t *Table) (any, error) {
	values := t.Salaries(nil)
	payload := SalaryBinsPayload{
		Bins:     salaryBinLabels,
		Counts:   Histogram(values, salaryBinEdges),
		BinEdges: []any{},
	}
	for i, e := range salaryBinEdges {
		if i == len(salaryBinEdges)-1 {
			payload.BinEdges = append(payload.BinEdges, "inf")
		} else {
			payload.BinEdges = append(payload.BinEdges, e)
		}
	}
	return payload, nil
}

// BoxplotPayload carries [min, Q1, median, Q3, max] per experience band in
// band display order; bands with no salaried rows are omitted, not
// zero-filled.
type BoxplotPayload struct {
	Categories []string    `json:"categories"`
	BoxData    [][]float64 `json:"boxData"`
	Outliers   [][]float64 `json:"outliers"`
}

func buildExperienceBoxplot(t *Table) (any, error) {
	payload := BoxplotPayload{Categories: []string{}, BoxData: [][]float64{}, Outliers: [][]float64{}}
	for _, band := range experienceOrderStrings() {
		vals := t.Salaries(func(r Row) bool { return r.ExperienceBand == band })
		five := FiveNumber(vals)
		if five == nil {
			continue
		}
		payload.Categories = append(payload.Categories, band)
		payload.BoxData = append(payload.BoxData, five)
	}
	return payload, nil
}

// BubblePoint is one experience × degree cell.
type BubblePoint struct {
	Exp       string  `json:"exp"`
	Degree    string  `json:"degree"`
	AvgSalary float64 `json:"avg_salary"`
	Count     int     `json:"count"`
}

// BubblePayload is the three-dimensional experience/degree/salary view.
type BubblePayload struct {
	ExpLevels    []string      `json:"exp_levels"`
	DegreeLevels []string      `json:"degree_levels"`
	Data         []BubblePoint `json:"data"`
}

func buildExpDegreeBubble(t *Table) (any, error) {
	payload := BubblePayload{ExpLevels: []string{}, DegreeLevels: []string{}, Data: []BubblePoint{}}

	present := func(check func(Row) string, order []string) []string {
		var out []string
		for _, v := range order {
			for _, r := range t.Rows {
				if check(r) == v {
					out = append(out, v)
					break
				}
			}
		}
		return out
	}
	payload.ExpLevels = present(func(r Row) string { return r.ExperienceBand }, experienceOrderStrings())
	payload.DegreeLevels = present(func(r Row) string { return r.DegreeLevel }, degreeOrderStrings())

	for _, exp := range payload.ExpLevels {
		for _, deg := range payload.DegreeLevels {
			vals := t.Salaries(func(r Row) bool { return r.ExperienceBand == exp && r.DegreeLevel == deg })
			mean, ok := Mean(vals)
			if !ok {
				continue
			}
			payload.Data = append(payload.Data, BubblePoint{
				Exp: exp, Degree: deg,
				AvgSalary: round2(mean), Count: len(vals),
			})
		}
	}
	return payload, nil
}
