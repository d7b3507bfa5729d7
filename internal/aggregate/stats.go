package aggregate

import (
	"math"
	"sort"
)

// Percentile computes the p-th percentile (0..100) of an ascending-sorted
// slice using linear interpolation between closest ranks, matching the
// numpy default. The slice must be non-empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// FiveNumber returns [min, Q1, median, Q3, max] of values, or nil for an
// empty input.
func FiveNumber(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return []float64{
		sorted[0],
		Percentile(sorted, 25),
		Percentile(sorted, 50),
		Percentile(sorted, 75),
		sorted[len(sorted)-1],
	}
}

// Mean returns the arithmetic mean, or ok=false for an empty input.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// round2 rounds to two decimal places, the precision the chart payloads use.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Histogram buckets values into half-open intervals [edges[i], edges[i+1]).
// len(edges) must be len(labels)+1; the final edge may be +Inf for an
// open-ended last bucket. Every bucket appears in the result, zero counts
// included. Values outside all buckets are dropped.
func Histogram(values []float64, edges []float64) []int {
	counts := make([]int, len(edges)-1)
	for _, v := range values {
		for i := 0; i < len(edges)-1; i++ {
			if v >= edges[i] && v < edges[i+1] {
				counts[i]++
				break
			}
		}
	}
	return counts
}

// entry is one (name, count) pair from a counter.
type entry struct {
	Name  string
	Count int
}

// counter accumulates counts while remembering first-seen order so that
// top-K selection breaks ties stably by input order.
type counter struct {
	counts map[string]int
	order  map[string]int
	next   int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int), order: make(map[string]int)}
}

func (c *counter) add(key string) { c.addN(key, 1) }

func (c *counter) addN(key string, n int) {
	if _, ok := c.counts[key]; !ok {
		c.order[key] = c.next
		c.next++
	}
	c.counts[key] += n
}

func (c *counter) count(key string) int { return c.counts[key] }

func (c *counter) len() int { return len(c.counts) }

// top returns entries sorted by count descending, ties by first-seen order.
// k <= 0 returns all entries.
func (c *counter) top(k int) []entry {
	entries := make([]entry, 0, len(c.counts))
	for name, count := range c.counts {
		entries = append(entries, entry{Name: name, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return c.order[entries[i].Name] < c.order[entries[j].Name]
	})
	if k > 0 && len(entries) > k {
		entries = entries[:k]
	}
	return entries
}
