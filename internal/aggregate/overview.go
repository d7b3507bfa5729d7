package aggregate

// Overview passes: direction trend lines, city geo bubbles, direction rose
// and the global skill wordcloud.

const (
	trendTopDirections = 5
	roseTopDirections  = 12
	wordcloudTopWords  = 100
)

// TrendSeries is one line in the trend chart.
type TrendSeries struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Smooth bool   `json:"smooth"`
	Data   []int  `json:"data"`
}

// TrendPayload is a dense months × series matrix: every series has one data
// point per month, zero-filled where a (series, month) pair is absent.
type TrendPayload struct {
	Months []string      `json:"months"`
	Series []TrendSeries `json:"series"`
}

func buildTrend(t *Table) (any, error) {
	months := t.Months()
	monthIdx := make(map[string]int, len(months))
	for i, m := range months {
		monthIdx[m] = i
	}

	dirCounts := newCounter()
	for _, r := range t.Rows {
		if r.PrimaryDirection != "" {
			dirCounts.add(r.PrimaryDirection)
		}
	}

	payload := TrendPayload{Months: months, Series: []TrendSeries{}}
	for _, e := range dirCounts.top(trendTopDirections) {
		data := make([]int, len(months))
		for _, r := range t.Rows {
			if r.PrimaryDirection != e.Name || r.PublishMonth == "" {
				continue
			}
			if i, ok := monthIdx[r.PublishMonth]; ok {
				data[i]++
			}
		}
		payload.Series = append(payload.Series, TrendSeries{
			Name:   e.Name,
			Type:   "line",
			Smooth: true,
			Data:   data,
		})
	}
	return payload, nil
}

// GeoItem is one city bubble; Salary is the mean salary median of the
// city's salaried rows, omitted when the city has none.
type GeoItem struct {
	Name   string   `json:"name"`
	Value  int      `json:"value"`
	Salary *float64 `json:"salary,omitempty"`
}

func buildGeo(t *Table) (any, error) {
	cities := newCounter()
	for _, r := range t.Rows {
		if r.City != "" {
			cities.add(r.City)
		}
	}

	items := make([]GeoItem, 0, cities.len())
	for _, e := range cities.top(0) {
		item := GeoItem{Name: e.Name, Value: e.Count}
		if mean, ok := Mean(t.Salaries(func(r Row) bool { return r.City == e.Name })); ok {
			m := round2(mean)
			item.Salary = &m
		}
		items = append(items, item)
	}
	return items, nil
}

func buildRose(t *Table) (any, error) {
	dirs := newCounter()
	for _, r := range t.Rows {
		if r.PrimaryDirection != "" {
			dirs.add(r.PrimaryDirection)
		}
	}

	items := make([]GeoItem, 0, roseTopDirections)
	for _, e := range dirs.top(roseTopDirections) {
		item := GeoItem{Name: e.Name, Value: e.Count}
		if mean, ok := Mean(t.Salaries(func(r Row) bool { return r.PrimaryDirection == e.Name })); ok {
			m := round2(mean)
			item.Salary = &m
		}
		items = append(items, item)
	}
	return items, nil
}

func buildWordcloud(t *Table) (any, error) {
	words := newCounter()
	for _, r := range t.Rows {
		for _, tok := range r.CoreSkills {
			words.add(tok)
		}
		for _, tok := range r.AITags {
			words.add(tok)
		}
	}

	items := make([]NameValue, 0, wordcloudTopWords)
	for _, e := range words.top(wordcloudTopWords) {
		items = append(items, NameValue{Name: e.Name, Value: e.Count})
	}
	return items, nil
}
