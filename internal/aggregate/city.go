package aggregate

import "strings"

// Geographic passes: macro-region summary, city × month trend matrix, city
// job ranking and the city → direction sankey.

const (
	cityTrendTopCities = 9
	cityRankTopCities  = 30
)

// RegionSummaryItem summarizes one macro-region.
type RegionSummaryItem struct {
	Name      string   `json:"name"`
	JobCount  int      `json:"job_count"`
	AvgSalary *float64 `json:"avg_salary"`
}

func buildRegionSummary(t *Table) (any, error) {
	regions := newCounter()
	for _, r := range t.Rows {
		if r.City != "" {
			regions.add(MacroRegion(r.City))
		}
	}

	items := make([]RegionSummaryItem, 0, regions.len())
	for _, e := range regions.top(0) {
		item := RegionSummaryItem{Name: e.Name, JobCount: e.Count}
		vals := t.Salaries(func(r Row) bool { return r.City != "" && MacroRegion(r.City) == e.Name })
		if mean, ok := Mean(vals); ok {
			m := round2(mean)
			item.AvgSalary = &m
		}
		items = append(items, item)
	}
	return items, nil
}

// MonthSeries is one dense line in a months × series matrix.
type MonthSeries struct {
	Name string `json:"name"`
	Data []int  `json:"data"`
}

// MonthMatrixPayload guarantees len(series[i].data) == len(months) for
// every series, absent combinations zero-filled.
type MonthMatrixPayload struct {
	Months []string      `json:"months"`
	Series []MonthSeries `json:"series"`
}

func buildCityMonthTrend(t *Table) (any, error) {
	months := t.Months()
	monthIdx := make(map[string]int, len(months))
	for i, m := range months {
		monthIdx[m] = i
	}

	cities := newCounter()
	for _, r := range t.Rows {
		if r.City != "" {
			cities.add(r.City)
		}
	}

	payload := MonthMatrixPayload{Months: months, Series: []MonthSeries{}}
	for _, e := range cities.top(cityTrendTopCities) {
		data := make([]int, len(months))
		for _, r := range t.Rows {
			if r.City != e.Name || r.PublishMonth == "" {
				continue
			}
			if i, ok := monthIdx[r.PublishMonth]; ok {
				data[i]++
			}
		}
		payload.Series = append(payload.Series, MonthSeries{Name: e.Name, Data: data})
	}
	return payload, nil
}

// CityRankPayload is the top-city bar chart input.
type CityRankPayload struct {
	Cities    []string `json:"cities"`
	JobCounts []int    `json:"job_counts"`
}

func buildCityJobRank(t *Table) (any, error) {
	cities := newCounter()
	for _, r := range t.Rows {
		if r.City != "" {
			cities.add(r.City)
		}
	}
	payload := CityRankPayload{Cities: []string{}, JobCounts: []int{}}
	for _, e := range cities.top(cityRankTopCities) {
		payload.Cities = append(payload.Cities, e.Name)
		payload.JobCounts = append(payload.JobCounts, e.Count)
	}
	return payload, nil
}

// SankeyNode and SankeyLink form the city → direction flow graph.
type SankeyNode struct {
	Name string `json:"name"`
}

type SankeyLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Value  int    `json:"value"`
}

// SankeyPayload lists city nodes first, then direction nodes.
type SankeyPayload struct {
	Nodes []SankeyNode `json:"nodes"`
	Links []SankeyLink `json:"links"`
}

func buildSankey(t *Table) (any, error) {
	cities := newCounter()
	dirs := newCounter()
	flows := newCounter()
	for _, r := range t.Rows {
		if r.City == "" || r.PrimaryDirection == "" {
			continue
		}
		cities.add(r.City)
		dirs.add(r.PrimaryDirection)
		flows.add(r.City + "→" + r.PrimaryDirection)
	}

	payload := SankeyPayload{Nodes: []SankeyNode{}, Links: []SankeyLink{}}
	for _, e := range cities.top(0) {
		payload.Nodes = append(payload.Nodes, SankeyNode{Name: e.Name})
	}
	for _, e := range dirs.top(0) {
		payload.Nodes = append(payload.Nodes, SankeyNode{Name: e.Name})
	}
	for _, e := range flows.top(0) {
		city, dir, _ := strings.Cut(e.Name, "→")
		payload.Links = append(payload.Links, SankeyLink{Source: city, Target: dir, Value: e.Count})
	}
	return payload, nil
}
