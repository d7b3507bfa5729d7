package aggregate

import (
	"sort"
	"strings"
)

// Cockpit pass: the one payload the interactive filter page consumes.
// Atomic salaried samples, dimension lists for the dropdowns, and a
// composite-key percentile map for the gauge.

const cockpitTopSkills = 50

// comboKeySeparator joins the degree|exp|city|direction composite key.
const comboKeySeparator = "|"

// CockpitJob is one atomic salaried sample the front end filters freely.
type CockpitJob struct {
	ID        int      `json:"id"`
	City      string   `json:"city"`
	Direction string   `json:"direction"`
	Degree    string   `json:"degree"`
	Exp       string   `json:"exp"`
	Salary    float64  `json:"salary"`
	Skills    []string `json:"skills"`
}

// ComboStat is the five-number salary summary for one filter combination.
type ComboStat struct {
	NJobs  int     `json:"n_jobs"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// CockpitPayload drives the filter cockpit page.
type CockpitPayload struct {
	DegreeList     []string             `json:"degree_list"`
	ExpList        []string             `json:"exp_list"`
	CityList       []string             `json:"city_list"`
	DirectionList  []string             `json:"direction_list"`
	Jobs           []CockpitJob         `json:"jobs"`
	ComboStats     map[string]ComboStat `json:"combo_stats"`
	GlobalSkillTop []NameValue          `json:"global_skill_top"`
}

func buildSkillCockpit(t *Table) (any, error) {
	payload := CockpitPayload{
		DegreeList: []string{}, ExpList: []string{},
		CityList: []string{}, DirectionList: []string{},
		Jobs:       []CockpitJob{},
		ComboStats: map[string]ComboStat{},
	}

	// Rows without a salary are excluded from the cockpit entirely; they
	// cannot feed the gauge.
	for i, r := range t.Rows {
		if r.SalaryMedian == nil {
			continue
		}
		skills := r.CoreSkills
		if skills == nil {
			skills = []string{}
		}
		payload.Jobs = append(payload.Jobs, CockpitJob{
			ID:        i,
			City:      r.City,
			Direction: r.PrimaryDirection,
			Degree:    r.DegreeLevel,
			Exp:       r.ExperienceBand,
			Salary:    *r.SalaryMedian,
			Skills:    skills,
		})
	}

	degrees := make(map[string]struct{})
	exps := make(map[string]struct{})
	cities := make(map[string]struct{})
	dirs := make(map[string]struct{})
	comboVals := make(map[string][]float64)
	for _, j := range payload.Jobs {
		if j.Degree != "" {
			degrees[j.Degree] = struct{}{}
		}
		if j.Exp != "" {
			exps[j.Exp] = struct{}{}
		}
		if j.City != "" {
			cities[j.City] = struct{}{}
		}
		if j.Direction != "" {
			dirs[j.Direction] = struct{}{}
		}
		key := strings.Join([]string{j.Degree, j.Exp, j.City, j.Direction}, comboKeySeparator)
		comboVals[key] = append(comboVals[key], j.Salary)
	}

	payload.DegreeList = sortedKeys(degrees)
	payload.CityList = sortedKeys(cities)
	payload.DirectionList = sortedKeys(dirs)
	for _, band := range experienceOrderStrings() {
		if _, ok := exps[band]; ok {
			payload.ExpList = append(payload.ExpList, band)
		}
	}

	for key, vals := range comboVals {
		five := FiveNumber(vals)
		payload.ComboStats[key] = ComboStat{
			NJobs:  len(vals),
			Min:    five[0],
			Q1:     five[1],
			Median: five[2],
			Q3:     five[3],
			Max:    five[4],
		}
	}

	skills := newCounter()
	for _, j := range payload.Jobs {
		for _, s := range j.Skills {
			skills.add(s)
		}
	}
	payload.GlobalSkillTop = []NameValue{}
	for _, e := range skills.top(cockpitTopSkills) {
		payload.GlobalSkillTop = append(payload.GlobalSkillTop, NameValue{Name: e.Name, Value: e.Count})
	}
	return payload, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
