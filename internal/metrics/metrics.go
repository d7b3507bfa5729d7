// Package metrics tracks operational counters across the pipeline and the
// dashboard. Counters are process-wide and safe for concurrent use.
package metrics

import (
	"fmt"
	"strings"
	"sync/atomic"
)

var counters struct {
	RowsProcessed    atomic.Int64
	LLMCalls         atomic.Int64
	LLMErrors        atomic.Int64
	ParseRepairs     atomic.Int64
	Fallbacks        atomic.Int64
	ArtifactsWritten atomic.Int64
	ChatRequests     atomic.Int64
	InsightRequests  atomic.Int64
}

func IncrRowsProcessed()    { counters.RowsProcessed.Add(1) }
func IncrLLMCalls()         { counters.LLMCalls.Add(1) }
func IncrLLMErrors()        { counters.LLMErrors.Add(1) }
func IncrParseRepairs()     { counters.ParseRepairs.Add(1) }
func IncrFallbacks()        { counters.Fallbacks.Add(1) }
func IncrArtifactsWritten() { counters.ArtifactsWritten.Add(1) }
func IncrChatRequests()     { counters.ChatRequests.Add(1) }
func IncrInsightRequests()  { counters.InsightRequests.Add(1) }

// Snapshot returns a copy of all counters.
func Snapshot() map[string]int64 {
	return map[string]int64{
		"rows_processed":    counters.RowsProcessed.Load(),
		"llm_calls":         counters.LLMCalls.Load(),
		"llm_errors":        counters.LLMErrors.Load(),
		"parse_repairs":     counters.ParseRepairs.Load(),
		"fallbacks":         counters.Fallbacks.Load(),
		"artifacts_written": counters.ArtifactsWritten.Load(),
		"chat_requests":     counters.ChatRequests.Load(),
		"insight_requests":  counters.InsightRequests.Load(),
	}
}

// Format returns counters as a simple text format for an HTTP endpoint.
func Format() string {
	m := Snapshot()
	keys := []string{
		"rows_processed", "llm_calls", "llm_errors",
		"parse_repairs", "fallbacks", "artifacts_written",
		"chat_requests", "insight_requests",
	}
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}
