// Package normalize turns one raw posting into a closed-schema
// NormalizedPosting via a model-in-the-loop extraction step with
// retry-then-fallback semantics. A single bad record never aborts a run.
package normalize

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"jobsight/internal/llm"
	"jobsight/internal/metrics"
	"jobsight/internal/posting"
)

// Config holds normalizer settings, injected at construction.
type Config struct {
	Client    llm.Client
	Attempts  int           // model call budget, default 3
	RetryWait time.Duration // delay between attempts, default 1.5s
}

// Normalizer drives the extraction contract for single records.
// Stateless between records apart from process-wide metrics.
type Normalizer struct {
	client   llm.Client
	attempts int
	wait     time.Duration
}

// New builds a Normalizer, applying defaults for zero config values.
func New(cfg Config) *Normalizer {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = 1500 * time.Millisecond
	}
	return &Normalizer{client: cfg.Client, attempts: cfg.Attempts, wait: cfg.RetryWait}
}

// modelRecord is the JSON structure expected from the LLM. Numbers are
// decoded as floats to tolerate either integer or decimal notation.
type modelRecord struct {
	Title              string   `json:"title"`
	Company            string   `json:"company"`
	City               string   `json:"city"`
	Region             string   `json:"region"`
	SalaryMin          *float64 `json:"salary_min"`
	SalaryMax          *float64 `json:"salary_max"`
	ExperienceBand     string   `json:"experience_band"`
	ExperienceYearsMin *float64 `json:"experience_years_min"`
	ExperienceYearsMax *float64 `json:"experience_years_max"`
	DegreeLevel        string   `json:"degree_level"`
	AITags             []string `json:"ai_tags"`
	PrimaryDirection   string   `json:"primary_direction"`
	Summary            string   `json:"summary"`
	CoreSkills         []string `json:"core_skills"`
}

// Normalize runs the model round-trip for one raw row. Network failures,
// timeouts and malformed responses are all handled the same way: after the
// attempt budget is exhausted the deterministic fallback record is returned.
// Never returns an error and never panics past this boundary.
func (n *Normalizer) Normalize(ctx context.Context, raw posting.RawPosting) posting.NormalizedPosting {
	prompt := buildPrompt(raw)

	for attempt := 1; attempt <= n.attempts; attempt++ {
		if ctx.Err() != nil {
			break
		}

		metrics.IncrLLMCalls()
		resp, err := n.client.Complete(ctx, systemPrompt, prompt)
		if err == nil {
			rec, perr := parseRecord(resp)
			if perr == nil {
				return n.coerce(raw, rec)
			}
			err = perr
		}

		metrics.IncrLLMErrors()
		slog.Warn("normalize attempt failed",
			slog.Int("row", raw.Index),
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)
		if attempt < n.attempts {
			select {
			case <-time.After(n.wait):
			case <-ctx.Done():
			}
		}
	}

	metrics.IncrFallbacks()
	return Fallback(raw)
}

// buildPrompt embeds every raw field verbatim into the extraction template.
func buildPrompt(raw posting.RawPosting) string {
	return fmt.Sprintf(userInstruction,
		raw.Title, raw.Company, raw.City, raw.Region,
		raw.SalaryMin, raw.SalaryMax,
		raw.Experience, raw.Degree,
		raw.AIKeywords, raw.Description,
	)
}

// parseRecord parses model output as a modelRecord. If the first parse
// fails, a repair attempt normalizes single quotes to double quotes and
// parses once more.
func parseRecord(text string) (modelRecord, error) {
	text = llm.StripFences(text)

	var rec modelRecord
	if err := json.Unmarshal([]byte(text), &rec); err == nil {
		return rec, nil
	}

	repaired := strings.ReplaceAll(text, "'", `"`)
	if err := json.Unmarshal([]byte(repaired), &rec); err != nil {
		return modelRecord{}, fmt.Errorf("parse model response: %w", err)
	}
	metrics.IncrParseRepairs()
	return rec, nil
}

// coerce converts a parsed model record into a NormalizedPosting, enforcing
// the closed enum sets and list invariants. Text fields missing from the
// response are copied through from the raw row.
func (n *Normalizer) coerce(raw posting.RawPosting, rec modelRecord) posting.NormalizedPosting {
	p := posting.NormalizedPosting{
		Title:              orRaw(rec.Title, raw.Title),
		Company:            orRaw(rec.Company, raw.Company),
		City:               orRaw(rec.City, raw.City),
		Region:             orRaw(rec.Region, raw.Region),
		SalaryMin:          toInt(rec.SalaryMin),
		SalaryMax:          toInt(rec.SalaryMax),
		ExperienceYearsMin: toInt(rec.ExperienceYearsMin),
		ExperienceYearsMax: toInt(rec.ExperienceYearsMax),
		Summary:            strings.TrimSpace(rec.Summary),
		AITags:             cleanTokens(rec.AITags),
		CoreSkills:         cleanTokens(rec.CoreSkills),
	}

	expText := strings.TrimSpace(rec.ExperienceBand)
	if expText == "" {
		expText = raw.Experience
	}
	p.ExperienceBand = posting.CoerceExperience(expText, p.ExperienceYearsMin, p.ExperienceYearsMax)

	degText := strings.TrimSpace(rec.DegreeLevel)
	if degText == "" {
		degText = raw.Degree
	}
	p.DegreeLevel = posting.CoerceDegree(degText)

	if len(p.AITags) == 0 {
		p.AITags = posting.Dedup(posting.SplitTags(raw.AIKeywords))
	}

	p.PrimaryDirection = strings.TrimSpace(rec.PrimaryDirection)
	if p.PrimaryDirection == "" {
		if len(p.AITags) > 0 {
			p.PrimaryDirection = p.AITags[0]
		} else {
			p.PrimaryDirection = posting.GenericDirection
		}
	}

	return p
}

// Fallback is the deterministic record used when every attempt is
// exhausted: raw text copied through, enums at their none/unspecified
// values, numeric and list fields empty.
func Fallback(raw posting.RawPosting) posting.NormalizedPosting {
	return posting.NormalizedPosting{
		Title:            raw.Title,
		Company:          raw.Company,
		City:             raw.City,
		Region:           raw.Region,
		ExperienceBand:   posting.ExpNoneRequired,
		DegreeLevel:      posting.DegreeNone,
		PrimaryDirection: posting.GenericDirection,
	}
}

func orRaw(s, raw string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return strings.TrimSpace(raw)
	}
	return s
}

func toInt(f *float64) *int {
	if f == nil {
		return nil
	}
	n := int(math.Round(*f))
	return &n
}

// cleanTokens trims, drops empties and deduplicates, preserving order.
func cleanTokens(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return posting.Dedup(out)
}
