// Package posting defines the raw and normalized job posting records shared
// by the cleaning pipeline and the aggregation engine, plus the closed enum
// sets every normalized row must conform to.
package posting

import "strings"

// RawPosting is one untyped row of the input spreadsheet. All fields are
// free text exactly as found in the source; Index is the 0-based data row
// number, kept for resume bookkeeping.
type RawPosting struct {
	Index       int
	Title       string
	Company     string
	City        string
	Region      string
	SalaryMin   string
	SalaryMax   string
	Experience  string
	Degree      string
	AIKeywords  string
	Description string
	PublishDate string
}

// ExperienceBand is the closed set of experience requirements.
type ExperienceBand string

const (
	ExpInternship   ExperienceBand = "internship_or_new_grad"
	Exp0to1         ExperienceBand = "0-1y"
	Exp1to3         ExperienceBand = "1-3y"
	Exp3to5         ExperienceBand = "3-5y"
	Exp5to10        ExperienceBand = "5-10y"
	Exp10Plus       ExperienceBand = "10y+"
	ExpNoneRequired ExperienceBand = "none_required"
)

// ExperienceOrder lists bands in display order, junior to senior.
var ExperienceOrder = []ExperienceBand{
	ExpInternship, Exp0to1, Exp1to3, Exp3to5, Exp5to10, Exp10Plus, ExpNoneRequired,
}

// Valid reports whether b is a member of the closed set.
func (b ExperienceBand) Valid() bool {
	switch b {
	case ExpInternship, Exp0to1, Exp1to3, Exp3to5, Exp5to10, Exp10Plus, ExpNoneRequired:
		return true
	}
	return false
}

// DegreeLevel is the closed set of degree requirements.
type DegreeLevel string

const (
	DegreePhD            DegreeLevel = "phd"
	DegreeMasters        DegreeLevel = "masters"
	DegreeBachelor       DegreeLevel = "bachelor"
	DegreeAssociate      DegreeLevel = "associate"
	DegreeBelowAssociate DegreeLevel = "below_associate"
	DegreeNone           DegreeLevel = "none"
)

// DegreeOrder lists levels in display order, highest first.
var DegreeOrder = []DegreeLevel{
	DegreePhD, DegreeMasters, DegreeBachelor, DegreeAssociate, DegreeBelowAssociate, DegreeNone,
}

// Valid reports whether d is a member of the closed set.
func (d DegreeLevel) Valid() bool {
	switch d {
	case DegreePhD, DegreeMasters, DegreeBachelor, DegreeAssociate, DegreeBelowAssociate, DegreeNone:
		return true
	}
	return false
}

// GenericDirection is the catch-all primary direction used when the model
// cannot pick a dominant tag.
const GenericDirection = "人工智能"

// NormalizedPosting is the canonical unit of all downstream analysis.
// Created once per raw row, appended to the normalized table, never mutated.
type NormalizedPosting struct {
	Title              string         `json:"title"`
	Company            string         `json:"company"`
	City               string         `json:"city"`
	Region             string         `json:"region"`
	SalaryMin          *int           `json:"salary_min"`
	SalaryMax          *int           `json:"salary_max"`
	SalaryMedian       *float64       `json:"salary_median"`
	ExperienceBand     ExperienceBand `json:"experience_band"`
	ExperienceYearsMin *int           `json:"experience_years_min"`
	ExperienceYearsMax *int           `json:"experience_years_max"`
	DegreeLevel        DegreeLevel    `json:"degree_level"`
	AITags             []string       `json:"ai_tags"`
	PrimaryDirection   string         `json:"primary_direction"`
	Summary            string         `json:"summary"`
	CoreSkills         []string       `json:"core_skills"`
	PublishDate        string         `json:"publish_date"`
	PublishMonth       string         `json:"publish_month"`
}

// ComputeSalaryMedian sets SalaryMedian to the arithmetic mean of the two
// bounds, or clears it when either bound is absent. Never estimated.
func (p *NormalizedPosting) ComputeSalaryMedian() {
	if p.SalaryMin == nil || p.SalaryMax == nil {
		p.SalaryMedian = nil
		return
	}
	m := (float64(*p.SalaryMin) + float64(*p.SalaryMax)) / 2.0
	p.SalaryMedian = &m
}

// experienceSynonyms maps raw experience text (and the enum tokens
// themselves) onto the closed band set. Lookup is exact after trimming.
var experienceSynonyms = map[string]ExperienceBand{
	"internship_or_new_grad": ExpInternship,
	"0-1y":                   Exp0to1,
	"1-3y":                   Exp1to3,
	"3-5y":                   Exp3to5,
	"5-10y":                  Exp5to10,
	"10y+":                   Exp10Plus,
	"none_required":          ExpNoneRequired,

	"实习/应届":  ExpInternship,
	"实习":     ExpInternship,
	"应届":     ExpInternship,
	"应届生":    ExpInternship,
	"在校生":    ExpInternship,
	"在校/应届":  ExpInternship,
	"1年以内":   Exp0to1,
	"0-1年":   Exp0to1,
	"1年以下":   Exp0to1,
	"1-3年":   Exp1to3,
	"1年及以上":  Exp1to3,
	"2-3年":   Exp1to3,
	"3-5年":   Exp3to5,
	"2-5年":   Exp3to5,
	"3年及以上":  Exp3to5,
	"5-10年":  Exp5to10,
	"5年及以上":  Exp5to10,
	"10年以上":  Exp10Plus,
	"10年及以上": Exp10Plus,
	"无经验要求":  ExpNoneRequired,
	"经验不限":   ExpNoneRequired,
	"不限":     ExpNoneRequired,
	"无需经验":   ExpNoneRequired,
}

// CoerceExperience maps arbitrary experience text onto the closed band set.
// Unmapped input falls back to years-derived banding when bounds are known,
// else to ExpNoneRequired. Never returns an out-of-set value.
func CoerceExperience(text string, yearsMin, yearsMax *int) ExperienceBand {
	if b, ok := experienceSynonyms[strings.TrimSpace(text)]; ok {
		return b
	}
	if yearsMin != nil {
		return BandFromYears(*yearsMin)
	}
	if yearsMax != nil {
		return BandFromYears(*yearsMax)
	}
	return ExpNoneRequired
}

// BandFromYears buckets a minimum-years requirement into the nearest band.
func BandFromYears(years int) ExperienceBand {
	switch {
	case years < 1:
		return Exp0to1
	case years < 3:
		return Exp1to3
	case years < 5:
		return Exp3to5
	case years < 10:
		return Exp5to10
	default:
		return Exp10Plus
	}
}

// degreeSynonyms maps raw degree text (and the enum tokens themselves) onto
// the closed level set.
var degreeSynonyms = map[string]DegreeLevel{
	"phd":             DegreePhD,
	"masters":         DegreeMasters,
	"bachelor":        DegreeBachelor,
	"associate":       DegreeAssociate,
	"below_associate": DegreeBelowAssociate,
	"none":            DegreeNone,

	"博士":    DegreePhD,
	"博士及以上": DegreePhD,
	"硕士":    DegreeMasters,
	"研究生":   DegreeMasters,
	"硕士及以上": DegreeMasters,
	"本科":    DegreeBachelor,
	"学士":    DegreeBachelor,
	"本科及以上": DegreeBachelor,
	"大专":    DegreeAssociate,
	"大专及以上": DegreeAssociate,
	"专科":    DegreeAssociate,
	"中专":    DegreeBelowAssociate,
	"中技":    DegreeBelowAssociate,
	"职高":    DegreeBelowAssociate,
	"高中":    DegreeBelowAssociate,
	"中专及以下": DegreeBelowAssociate,
	"不限":    DegreeNone,
	"学历不限":  DegreeNone,
	"无要求":   DegreeNone,
}

// CoerceDegree maps arbitrary degree text onto the closed level set.
// Unmapped input defaults to DegreeNone.
func CoerceDegree(text string) DegreeLevel {
	if d, ok := degreeSynonyms[strings.TrimSpace(text)]; ok {
		return d
	}
	return DegreeNone
}
