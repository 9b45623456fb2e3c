// Command market-search probes the market data aggregation pipeline from the
// command line: normalization, primary/secondary fallback and outlier
// filtering, without involving the judge.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fcastellanos/reventa/internal/market"
	"github.com/joho/godotenv"
)

func main() {
	query := flag.String("q", "", "Product query (required)")
	limit := flag.Int("limit", market.DefaultSearchLimit, "Max listings per source")
	rawJSON := flag.Bool("json", false, "Output raw JSON only")
	flag.Parse()

	if *query == "" {
		fmt.Fprintln(os.Stderr, "usage: market-search -q \"iPhone 13 128GB\"")
		os.Exit(1)
	}

	_ = godotenv.Load()

	var web market.WebSource
	if brave := market.NewBraveClient(market.BraveOpts{APIKey: os.Getenv("BRAVE_API_KEY")}); brave != nil {
		web = brave
	}

	aggregator := market.NewAggregator(market.AggregatorOpts{
		Primary: market.NewMeliClient(market.MeliOpts{AccessToken: os.Getenv("MELI_ACCESS_TOKEN")}),
		Web:     web,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stats := aggregator.FetchMarketData(ctx, *query, *limit)

	if *rawJSON {
		jsonBytes, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(jsonBytes))
		return
	}

	fmt.Printf("Normalized query: %q\n", market.NormalizeQuery(*query))
	fmt.Printf("Source: %s\n", stats.Source)
	fmt.Printf("Items found: %d\n", stats.Count)
	if stats.Count > 0 {
		fmt.Printf("Min: $%d\n", stats.Min)
		fmt.Printf("Max: $%d\n", stats.Max)
		fmt.Printf("Avg: $%d\n", stats.Avg)
		fmt.Printf("Median: $%d\n", stats.Median)
		fmt.Printf("Cheapest sample: %v\n", stats.Sample)
	}
	if stats.Error != "" {
		fmt.Printf("Error: %s\n", stats.Error)
	}
}
