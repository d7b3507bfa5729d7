package aggregate

import "math"

// Category passes: top directions treated as job categories, with rose,
// grouped-compare, radar and per-category wordcloud payloads.

const (
	categoryTopK     = 10
	categoryTopWords = 80
)

// categoryStats carries the per-category aggregates shared by the rose,
// compare and radar passes.
type categoryStats struct {
	name       string
	jobCount   int
	avgSalary  *float64
	cityCount  int
	monthCount int
}

func topCategories(t *Table) []categoryStats {
	dirs := newCounter()
	for _, r := range t.Rows {
		if r.PrimaryDirection != "" {
			dirs.add(r.PrimaryDirection)
		}
	}

	var out []categoryStats
	for _, e := range dirs.top(categoryTopK) {
		cs := categoryStats{name: e.Name, jobCount: e.Count}

		if mean, ok := Mean(t.Salaries(func(r Row) bool { return r.PrimaryDirection == e.Name })); ok {
			m := round2(mean)
			cs.avgSalary = &m
		}

		cities := make(map[string]struct{})
		months := make(map[string]struct{})
		for _, r := range t.Rows {
			if r.PrimaryDirection != e.Name {
				continue
			}
			if r.City != "" {
				cities[r.City] = struct{}{}
			}
			if r.PublishMonth != "" {
				months[r.PublishMonth] = struct{}{}
			}
		}
		cs.cityCount = len(cities)
		cs.monthCount = len(months)
		out = append(out, cs)
	}
	return out
}

// CategoryRoseItem is one slice of the category rose chart.
type CategoryRoseItem struct {
	Name      string   `json:"name"`
	Value     int      `json:"value"`
	AvgSalary *float64 `json:"avg_salary"`
}

func buildCategoryRose(t *Table) (any, error) {
	cats := topCategories(t)
	items := make([]CategoryRoseItem, 0, len(cats))
	for _, c := range cats {
		items = append(items, CategoryRoseItem{Name: c.name, Value: c.jobCount, AvgSalary: c.avgSalary})
	}
	return items, nil
}

// CategoryComparePayload feeds the grouped count-vs-salary bar chart.
type CategoryComparePayload struct {
	Categories []string   `json:"categories"`
	JobCount   []int      `json:"job_count"`
	AvgSalary  []*float64 `json:"avg_salary"`
}

func buildCategoryCompare(t *Table) (any, error) {
	payload := CategoryComparePayload{Categories: []string{}, JobCount: []int{}, AvgSalary: []*float64{}}
	for _, c := range topCategories(t) {
		payload.Categories = append(payload.Categories, c.name)
		payload.JobCount = append(payload.JobCount, c.jobCount)
		payload.AvgSalary = append(payload.AvgSalary, c.avgSalary)
	}
	return payload, nil
}

// RadarIndicator is one radar chart axis with its scale ceiling.
type RadarIndicator struct {
	Name string `json:"name"`
	Max  int    `json:"max"`
}

// RadarSeries is one category's position across all four axes.
type RadarSeries struct {
	Name  string    `json:"name"`
	Value []float64 `json:"value"`
}

// CategoryRadarPayload compares categories across job count, average
// salary, city coverage and active months.
type CategoryRadarPayload struct {
	Indicators []RadarIndicator `json:"indicators"`
	Series     []RadarSeries    `json:"series"`
}

// withMargin pads an axis ceiling by 10%, minimum 1.
func withMargin(v float64) int {
	if v <= 0 {
		return 1
	}
	return int(math.Ceil(v * 1.1))
}

func buildCategoryRadar(t *Table) (any, error) {
	cats := topCategories(t)

	var maxJobs, maxSalary, maxCities, maxMonths float64
	for _, c := range cats {
		maxJobs = math.Max(maxJobs, float64(c.jobCount))
		if c.avgSalary != nil {
			maxSalary = math.Max(maxSalary, *c.avgSalary)
		}
		maxCities = math.Max(maxCities, float64(c.cityCount))
		maxMonths = math.Max(maxMonths, float64(c.monthCount))
	}

	payload := CategoryRadarPayload{
		Indicators: []RadarIndicator{
			{Name: "岗位数量", Max: withMargin(maxJobs)},
			{Name: "平均薪资", Max: withMargin(maxSalary)},
			{Name: "城市覆盖数", Max: withMargin(maxCities)},
			{Name: "活跃月份数", Max: withMargin(maxMonths)},
		},
		Series: []RadarSeries{},
	}
	for _, c := range cats {
		salary := 0.0
		if c.avgSalary != nil {
			salary = *c.avgSalary
		}
		payload.Series = append(payload.Series, RadarSeries{
			Name:  c.name,
			Value: []float64{float64(c.jobCount), salary, float64(c.cityCount), float64(c.monthCount)},
		})
	}
	return payload, nil
}

// CategoryWordcloud is the skill wordcloud restricted to one category.
type CategoryWordcloud struct {
	Category string      `json:"category"`
	Words    []NameValue `json:"words"`
}

func buildCategoryWordcloud(t *Table) (any, error) {
	items := []CategoryWordcloud{}
	for _, c := range topCategories(t) {
		words := newCounter()
		for _, r := range t.Rows {
			if r.PrimaryDirection != c.name {
				continue
			}
			for _, s := range r.CoreSkills {
				words.add(s)
			}
		}
		if words.len() == 0 {
			continue
		}
		cw := CategoryWordcloud{Category: c.name, Words: []NameValue{}}
		for _, e := range words.top(categoryTopWords) {
			cw.Words = append(cw.Words, NameValue{Name: e.Name, Value: e.Count})
		}
		items = append(items, cw)
	}
	return items, nil
}
