package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"single value", []float64{42}, 50, 42},
		{"median of even count interpolates", []float64{10000, 12000}, 50, 11000},
		{"q1 of four", []float64{1, 2, 3, 4}, 25, 1.75},
		{"q3 of four", []float64{1, 2, 3, 4}, 75, 3.25},
		{"p0 is min", []float64{5, 9, 13}, 0, 5},
		{"p100 is max", []float64{5, 9, 13}, 100, 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentile(tt.sorted, tt.p), 1e-9)
		})
	}
}

func TestFiveNumber(t *testing.T) {
	assert.Nil(t, FiveNumber(nil))

	five := FiveNumber([]float64{12000, 10000})
	require.Len(t, five, 5)
	assert.Equal(t, 10000.0, five[0])
	assert.Equal(t, 11000.0, five[2])
	assert.Equal(t, 12000.0, five[4])

	// Input order must not matter.
	assert.Equal(t, five, FiveNumber([]float64{10000, 12000}))
}

func TestMean(t *testing.T) {
	_, ok := Mean(nil)
	assert.False(t, ok)

	m, ok := Mean([]float64{8000, 12000, 16000})
	require.True(t, ok)
	assert.Equal(t, 12000.0, m)
}

func TestHistogram(t *testing.T) {
	edges := []float64{0, 10, 20, math.Inf(1)}

	t.Run("half open buckets", func(t *testing.T) {
		// 10 belongs to [10,20), not [0,10).
		counts := Histogram([]float64{0, 9.99, 10, 19, 20, 1e9}, edges)
		assert.Equal(t, []int{2, 2, 2}, counts)
	})

	t.Run("total equals value count", func(t *testing.T) {
		values := []float64{3, 7, 11, 25, 40000}
		sum := 0
		for _, c := range Histogram(values, edges) {
			sum += c
		}
		assert.Equal(t, len(values), sum)
	})

	t.Run("empty buckets stay zero", func(t *testing.T) {
		counts := Histogram([]float64{25}, edges)
		assert.Equal(t, []int{0, 0, 1}, counts)
	})
}

func TestCounterTopStableTies(t *testing.T) {
	c := newCounter()
	for _, k := range []string{"b", "a", "b", "c", "a", "d"} {
		c.add(k)
	}
	// a and b tie at 2: b was seen first. c and d tie at 1: c was seen first.
	top := c.top(3)
	require.Len(t, top, 3)
	assert.Equal(t, "b", top[0].Name)
	assert.Equal(t, "a", top[1].Name)
	assert.Equal(t, "c", top[2].Name)

	assert.Len(t, c.top(0), 4)
	assert.Len(t, c.top(100), 4)
}

func TestMacroRegion(t *testing.T) {
	assert.Equal(t, "华东", MacroRegion("上海"))
	assert.Equal(t, "华北", MacroRegion("北京"))
	assert.Equal(t, "华南", MacroRegion("深圳"))
	assert.Equal(t, "西南", MacroRegion("拉萨"))
	assert.Equal(t, RegionOther, MacroRegion("鹤岗"))
	assert.Equal(t, RegionOther, MacroRegion(""))
}
