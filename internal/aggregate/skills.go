package aggregate

import (
	"math"
	"sort"
)

// Skill passes: top-10 ranking, co-occurrence graph, per-skill drilldown.

const (
	rankTopSkills   = 10
	graphTopSkills  = 30
	graphMinWeight  = 5
	drillTopSkills  = 50
	drillMinSupport = 10

	// Node visual size: 10..30, sub-linear in frequency.
	nodeSizeBase  = 10.0
	nodeSizeRange = 20.0
	nodeSizeCurve = 0.6
)

// SkillsTopPayload carries the ranking both as parallel arrays and as
// {name, value} pairs, for bar and pie components respectively.
type SkillsTopPayload struct {
	Skills []string    `json:"skills"`
	Counts []int       `json:"counts"`
	Data   []NameValue `json:"data"`
}

func skillCounter(t *Table) *counter {
	c := newCounter()
	for _, r := range t.Rows {
		for _, s := range r.CoreSkills {
			c.add(s)
		}
	}
	return c
}

func buildSkillsTop10(t *Table) (any, error) {
	payload := SkillsTopPayload{Skills: []string{}, Counts: []int{}, Data: []NameValue{}}
	for _, e := range skillCounter(t).top(rankTopSkills) {
		payload.Skills = append(payload.Skills, e.Name)
		payload.Counts = append(payload.Counts, e.Count)
		payload.Data = append(payload.Data, NameValue{Name: e.Name, Value: e.Count})
	}
	return payload, nil
}

// GraphNode is one skill node; SymbolSize is a bounded, monotonic display
// weight derived from frequency.
type GraphNode struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Value      int     `json:"value"`
	SymbolSize float64 `json:"symbolSize"`
}

// GraphLink is one co-occurrence edge.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Value  int    `json:"value"`
}

// GraphPayload is the co-occurrence graph.
type GraphPayload struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// buildSkillsGraph keeps the topN most frequent skills as nodes and counts,
// per posting, all unordered pairs among that posting's deduplicated skills
// that are both in the top set. Edges below minWeight are dropped.
func buildSkillsGraph(t *Table, topN, minWeight int) GraphPayload {
	freq := skillCounter(t)
	top := freq.top(topN)
	topSet := make(map[string]struct{}, len(top))
	for _, e := range top {
		topSet[e.Name] = struct{}{}
	}

	type pair struct{ a, b string }
	pairCounts := make(map[pair]int)
	for _, r := range t.Rows {
		var kept []string
		seen := make(map[string]struct{}, len(r.CoreSkills))
		for _, s := range r.CoreSkills {
			if _, ok := topSet[s]; !ok {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			kept = append(kept, s)
		}
		sort.Strings(kept)
		for i := 0; i < len(kept); i++ {
			for j := i + 1; j < len(kept); j++ {
				pairCounts[pair{kept[i], kept[j]}]++
			}
		}
	}

	maxCount := 0
	for _, e := range top {
		if e.Count > maxCount {
			maxCount = e.Count
		}
	}

	payload := GraphPayload{Nodes: []GraphNode{}, Links: []GraphLink{}}
	for _, e := range top {
		ratio := 0.0
		if maxCount > 0 {
			ratio = float64(e.Count) / float64(maxCount)
		}
		payload.Nodes = append(payload.Nodes, GraphNode{
			ID:         e.Name,
			Name:       e.Name,
			Value:      e.Count,
			SymbolSize: round2(nodeSizeBase + nodeSizeRange*math.Pow(ratio, nodeSizeCurve)),
		})
	}

	edges := make([]pair, 0, len(pairCounts))
	for p, w := range pairCounts {
		if w >= minWeight {
			edges = append(edges, p)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].a != edges[j].a {
			return edges[i].a < edges[j].a
		}
		return edges[i].b < edges[j].b
	})
	for _, p := range edges {
		payload.Links = append(payload.Links, GraphLink{Source: p.a, Target: p.b, Value: pairCounts[p]})
	}
	return payload
}

// drillBinEdges / drillBinLabels bucket per-skill salaries.
var (
	drillBinEdges  = []float64{0, 5000, 10000, 15000, 20000, 30000, 40000, 60000, 100000}
	drillBinLabels = []string{"0-5k", "5-10k", "10-15k", "15-20k", "20-30k", "30-40k", "40-60k", "60k+"}
)

// BinValue is one histogram bucket.
type BinValue struct {
	Bin   string `json:"bin"`
	Value int    `json:"value"`
}

// SkillDrillData is the drilldown payload for one skill.
type SkillDrillData struct {
	TotalJobs        int                `json:"total_jobs"`
	SalaryHist       []BinValue         `json:"salary_hist"`
	SalarySampleSize int                `json:"salary_sample_size"`
	ExpSalary        map[string]float64 `json:"exp_salary"`
	CityCounts       []NameValue        `json:"city_counts"`
	DirectionCounts  []NameValue        `json:"direction_counts"`
}

// SkillDrillPayload drives the per-skill drilldown page.
type SkillDrillPayload struct {
	Skills          []string                  `json:"skills"`
	ExperienceOrder []string                  `json:"experience_order"`
	SalaryBins      []string                  `json:"salary_bins"`
	RadarMax        float64                   `json:"radar_max"`
	SkillData       map[string]SkillDrillData `json:"skill_data"`
}

func buildSkillDrill(t *Table, topN, minSupport int) SkillDrillPayload {
	payload := SkillDrillPayload{
		Skills:          []string{},
		ExperienceOrder: experienceOrderStrings(),
		SalaryBins:      drillBinLabels,
		RadarMax:        drillRadarMax(t),
		SkillData:       map[string]SkillDrillData{},
	}

	for _, e := range skillCounter(t).top(topN) {
		sub := rowsWithSkill(t, e.Name)
		if len(sub) < minSupport {
			continue
		}
		payload.Skills = append(payload.Skills, e.Name)
		payload.SkillData[e.Name] = drillOne(sub)
	}
	return payload
}

func rowsWithSkill(t *Table, skill string) []Row {
	var out []Row
	for _, r := range t.Rows {
		for _, s := range r.CoreSkills {
			if s == skill {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func drillOne(sub []Row) SkillDrillData {
	var salaries []float64
	for _, r := range sub {
		if r.SalaryMedian != nil {
			salaries = append(salaries, *r.SalaryMedian)
		}
	}

	hist := make([]BinValue, len(drillBinLabels))
	for i, c := range Histogram(salaries, drillBinEdges) {
		hist[i] = BinValue{Bin: drillBinLabels[i], Value: c}
	}

	expSalary := make(map[string]float64)
	for _, band := range experienceOrderStrings() {
		var vals []float64
		for _, r := range sub {
			if r.ExperienceBand == band && r.SalaryMedian != nil {
				vals = append(vals, *r.SalaryMedian)
			}
		}
		if mean, ok := Mean(vals); ok {
			expSalary[band] = round2(mean)
		}
	}

	cities := newCounter()
	dirs := newCounter()
	for _, r := range sub {
		if r.City != "" {
			cities.add(r.City)
		}
		if r.PrimaryDirection != "" {
			dirs.add(r.PrimaryDirection)
		}
	}

	toNV := func(entries []entry) []NameValue {
		nv := make([]NameValue, 0, len(entries))
		for _, e := range entries {
			nv = append(nv, NameValue{Name: e.Name, Value: e.Count})
		}
		return nv
	}

	return SkillDrillData{
		TotalJobs:        len(sub),
		SalaryHist:       hist,
		SalarySampleSize: len(salaries),
		ExpSalary:        expSalary,
		CityCounts:       toNV(cities.top(10)),
		DirectionCounts:  toNV(dirs.top(8)),
	}
}

// drillRadarMax is the radar axis ceiling: 1.1 × the highest per-band mean
// salary across the whole table, with a fixed default when no band has data.
func drillRadarMax(t *Table) float64 {
	max := 0.0
	for _, band := range experienceOrderStrings() {
		vals := t.Salaries(func(r Row) bool { return r.ExperienceBand == band })
		if mean, ok := Mean(vals); ok && mean > max {
			max = mean
		}
	}
	if max == 0 {
		return 50000
	}
	return round2(max * 1.1)
}
