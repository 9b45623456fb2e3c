package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	stats := computeStats(SourcePrimary, []int{400000, 300000, 350000, 320000, 380000, 310000})

	assert.Equal(t, SourcePrimary, stats.Source)
	assert.Equal(t, 6, stats.Count)
	assert.Equal(t, 300000, stats.Min)
	assert.Equal(t, 400000, stats.Max)
	assert.Equal(t, 343333, stats.Avg)
	// Even count: median is the mean of the two middle values.
	assert.Equal(t, 335000, stats.Median)
	// Sample holds the five cheapest, ascending.
	assert.Equal(t, []int{300000, 310000, 320000, 350000, 380000}, stats.Sample)
	assert.False(t, stats.Timestamp.IsZero())
	assert.Empty(t, stats.Error)
}

func TestComputeStatsSingleObservation(t *testing.T) {
	stats := computeStats(SourceSecondary, []int{250000})

	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 250000, stats.Min)
	assert.Equal(t, 250000, stats.Max)
	assert.Equal(t, 250000, stats.Avg)
	assert.Equal(t, 250000, stats.Median)
	assert.Equal(t, []int{250000}, stats.Sample)
}

func TestEmptyStats(t *testing.T) {
	stats := emptyStats("no market data found")

	assert.Equal(t, SourceNone, stats.Source)
	assert.Zero(t, stats.Count)
	assert.Zero(t, stats.Median)
	assert.Equal(t, "no market data found", stats.Error)
	assert.False(t, stats.Timestamp.IsZero())
}
