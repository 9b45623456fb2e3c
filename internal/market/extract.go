package market

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultAccessoryKeywords mark a search result as being about an accessory
// (phone case, screen protector) rather than the product itself. Any hit
// rejects the whole result so an accessory price is never scored as the
// product.
var DefaultAccessoryKeywords = []string{
	"funda",
	"carcasa",
	"case",
	"cover",
	"protector",
	"lámina",
	"lamina",
	"mica",
}

// clpAmountPattern matches Chilean peso amounts in free text: "$350.000",
// "350.000", "$ 1.200.000" or a plain run of 4+ digits. Dots are thousands
// separators in Chilean formatting.
var clpAmountPattern = regexp.MustCompile(`\$?\s*([0-9]{1,3}(?:\.[0-9]{3})+|[0-9]{4,})`)

// ExtractPrices mines CLP amounts from a snippet of listing text, discarding
// anything at or below the plausibility floor. A floor of 0 selects the
// default.
func ExtractPrices(text string, floor int) []int {
	if floor == 0 {
		floor = DefaultPriceFloor
	}

	var prices []int
	for _, match := range clpAmountPattern.FindAllStringSubmatch(text, -1) {
		raw := strings.ReplaceAll(match[1], ".", "")
		amount, err := strconv.Atoi(raw)
		if err != nil || amount <= floor {
			continue
		}
		prices = append(prices, amount)
	}
	return prices
}

// mentionsAccessory reports whether the text mentions any accessory keyword.
func mentionsAccessory(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
