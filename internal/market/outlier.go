package market

import "sort"

// DefaultPriceFloor is the minimum plausible price in CLP for a real product
// listing. Amounts at or below it are assumed to be shipping costs or
// accessory prices picked up by text mining.
const DefaultPriceFloor = 5000

// DefaultIQRMultiplier is the interquartile-range factor for the outlier
// fence. 1.5 is the conventional Tukey value; it is a tunable, not a business
// rule.
const DefaultIQRMultiplier = 1.5

// minOutlierSample is the smallest sample for which quartile spread is
// meaningful. Below it the filter passes input through unchanged.
const minOutlierSample = 4

// OutlierFilter removes statistically implausible price observations using an
// interquartile-range rule. The zero value uses the default floor and
// multiplier.
type OutlierFilter struct {
	Multiplier float64
	Floor      int
}

// Filter returns the prices that fall within the IQR fence.
//
// Fewer than 4 observations are returned unchanged. Quartiles are index-based
// (sorted[n/4] and sorted[3n/4]). If the fence would reject every
// observation, the original values above the plausibility floor are returned
// instead, so the result is only empty when no input exceeds the floor.
func (f OutlierFilter) Filter(prices []int) []int {
	if len(prices) < minOutlierSample {
		return prices
	}

	multiplier := f.Multiplier
	if multiplier == 0 {
		multiplier = DefaultIQRMultiplier
	}

	sorted := make([]int, len(prices))
	copy(sorted, prices)
	sort.Ints(sorted)

	q1 := float64(sorted[len(sorted)/4])
	q3 := float64(sorted[3*len(sorted)/4])
	iqr := q3 - q1
	lower := q1 - multiplier*iqr
	upper := q3 + multiplier*iqr

	var kept []int
	for _, p := range prices {
		if float64(p) >= lower && float64(p) <= upper {
			kept = append(kept, p)
		}
	}

	if len(kept) == 0 {
		return f.aboveFloor(prices)
	}
	return kept
}

// aboveFloor returns the subset of prices strictly above the plausibility
// floor.
func (f OutlierFilter) aboveFloor(prices []int) []int {
	floor := f.Floor
	if floor == 0 {
		floor = DefaultPriceFloor
	}
	var kept []int
	for _, p := range prices {
		if p > floor {
			kept = append(kept, p)
		}
	}
	return kept
}
