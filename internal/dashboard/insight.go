package dashboard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"jobsight/internal/aggregate"
)

// dataSummary is the condensed chart context handed to the model for both
// the insight narrative and the Q&A endpoints. Kept short on purpose:
// prompts should carry the shape of the market, not the whole dataset.
type dataSummary struct {
	Months      []string
	TotalSeries []int
	Degrees     []aggregate.NameValue
	Categories  []aggregate.GeoItem
	GeoSample   []aggregate.GeoItem
	CityTop     []aggregate.NameValue
	SkillTop    []aggregate.NameValue
}

func loadArtifact(dir, name string, v any) error {
	data, err := os.ReadFile(filepath.Join(dir, name+".json"))
	if err != nil {
		return fmt.Errorf("dashboard: read artifact %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("dashboard: decode artifact %s: %w", name, err)
	}
	return nil
}

// buildSummary assembles the model context from the overview artifacts.
func buildSummary(dir string) (*dataSummary, error) {
	var (
		trend   aggregate.TrendPayload
		degrees aggregate.DegreeCountsPayload
		rose    []aggregate.GeoItem
		geo     []aggregate.GeoItem
		rank    aggregate.CityRankPayload
		skills  aggregate.SkillsTopPayload
	)
	if err := loadArtifact(dir, "trend", &trend); err != nil {
		return nil, err
	}
	if err := loadArtifact(dir, "degree_counts", &degrees); err != nil {
		return nil, err
	}
	if err := loadArtifact(dir, "rose", &rose); err != nil {
		return nil, err
	}
	if err := loadArtifact(dir, "geo", &geo); err != nil {
		return nil, err
	}
	if err := loadArtifact(dir, "city_job_rank", &rank); err != nil {
		return nil, err
	}
	if err := loadArtifact(dir, "skills_top10", &skills); err != nil {
		return nil, err
	}

	s := &dataSummary{Months: trend.Months, Degrees: degrees.Data}
	if len(trend.Series) > 0 {
		s.TotalSeries = trend.Series[0].Data
	}
	s.Categories = head(rose, 8)
	s.GeoSample = head(geo, 15)
	for i, c := range rank.Cities {
		if i >= 10 {
			break
		}
		s.CityTop = append(s.CityTop, aggregate.NameValue{Name: c, Value: rank.JobCounts[i]})
	}
	for i, sk := range skills.Skills {
		if i >= 10 {
			break
		}
		s.SkillTop = append(s.SkillTop, aggregate.NameValue{Name: sk, Value: skills.Counts[i]})
	}
	return s, nil
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Text renders the summary as the prompt context block.
func (s *dataSummary) Text() string {
	var b strings.Builder
	b.WriteString("[时间趋势]\n")
	fmt.Fprintf(&b, "- months: %s\n", jsonLine(s.Months))
	fmt.Fprintf(&b, "- total_job_series: %s\n\n", jsonLine(s.TotalSeries))
	b.WriteString("[学历结构]\n")
	fmt.Fprintf(&b, "- degree_list: %s\n\n", jsonLine(s.Degrees))
	b.WriteString("[岗位类别结构（部分）]\n")
	fmt.Fprintf(&b, "- categories: %s\n\n", jsonLine(s.Categories))
	b.WriteString("[城市分布（部分采样 + Top10）]\n")
	fmt.Fprintf(&b, "- geo_sample: %s\n", jsonLine(s.GeoSample))
	fmt.Fprintf(&b, "- city_top10: %s\n\n", jsonLine(s.CityTop))
	b.WriteString("[技能 Top10]\n")
	fmt.Fprintf(&b, "- skills_top10: %s\n", jsonLine(s.SkillTop))
	return b.String()
}

func jsonLine(v any) string {
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "[]"
	}
	return strings.TrimSpace(buf.String())
}
