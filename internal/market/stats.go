package market

import (
	"sort"
	"time"
)

// Source identifies which data source produced a Stats value.
const (
	SourcePrimary   = "primary"
	SourceSecondary = "secondary"
	SourceNone      = "none"
)

// Stats is the aggregated market price summary for a query.
// Amounts are in CLP. When Count is 0 the numeric fields are all zero,
// Source is "none" and Error explains why no data was found.
type Stats struct {
	Source    string    `json:"source"`
	Count     int       `json:"count"`
	Min       int       `json:"min"`
	Max       int       `json:"max"`
	Avg       int       `json:"avg"`
	Median    int       `json:"median"`
	Sample    []int     `json:"prices_sample,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

const sampleSize = 5

// computeStats builds a Stats value from a non-empty list of observations.
func computeStats(source string, prices []int) Stats {
	sorted := make([]int, len(prices))
	copy(sorted, prices)
	sort.Ints(sorted)

	sum := 0
	for _, p := range sorted {
		sum += p
	}

	n := len(sorted)
	var median int
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	sample := sorted
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	return Stats{
		Source:    source,
		Count:     n,
		Min:       sorted[0],
		Max:       sorted[n-1],
		Avg:       sum / n,
		Median:    median,
		Sample:    sample,
		Timestamp: time.Now(),
	}
}

// emptyStats is the sentinel returned when no usable market data exists.
func emptyStats(reason string) Stats {
	return Stats{
		Source:    SourceNone,
		Timestamp: time.Now(),
		Error:     reason,
	}
}
