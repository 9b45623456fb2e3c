package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutlierFilterRemovesExtremeObservation(t *testing.T) {
	prices := []int{
		300000, 310000, 320000, 330000, 340000, 350000,
		360000, 380000, 400000, 410000, 420000, 2000000,
	}

	kept := OutlierFilter{}.Filter(prices)

	assert.Len(t, kept, 11)
	assert.NotContains(t, kept, 2000000)
	assert.Contains(t, kept, 300000)
	assert.Contains(t, kept, 420000)
}

func TestOutlierFilterSmallSamplePassthrough(t *testing.T) {
	prices := []int{100, 999999, 5}
	assert.Equal(t, prices, OutlierFilter{}.Filter(prices))

	assert.Empty(t, OutlierFilter{}.Filter(nil))
}

func TestOutlierFilterPreservesInputOrder(t *testing.T) {
	prices := []int{420000, 300000, 2000000, 350000, 310000, 400000}

	kept := OutlierFilter{}.Filter(prices)

	assert.Equal(t, []int{420000, 300000, 350000, 310000, 400000}, kept)
}

func TestOutlierFilterDegenerateFenceFallsBackToFloor(t *testing.T) {
	// An inverted fence (negative multiplier) rejects everything; the filter
	// must then fall back to the raw observations above the floor so a
	// non-empty plausible input never yields an empty result.
	filter := OutlierFilter{Multiplier: -1}

	kept := filter.Filter([]int{3000, 10000, 20000, 30000})
	assert.Equal(t, []int{10000, 20000, 30000}, kept)

	// Only when nothing exceeds the floor may the result be empty.
	assert.Empty(t, filter.Filter([]int{1000, 2000, 3000, 4000}))
}

func TestOutlierFilterCustomFloor(t *testing.T) {
	filter := OutlierFilter{Multiplier: -1, Floor: 15000}

	kept := filter.Filter([]int{3000, 10000, 20000, 30000})
	assert.Equal(t, []int{20000, 30000}, kept)
}
