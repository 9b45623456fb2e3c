// Command evaluate runs a one-shot deal evaluation from the command line.
// Requires GEMINI_API_KEY.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fcastellanos/reventa/internal/eval"
	"github.com/fcastellanos/reventa/internal/market"
	"github.com/fcastellanos/reventa/internal/refprice"
	"github.com/joho/godotenv"
)

func main() {
	producto := flag.String("producto", "", "Product description (required)")
	precio := flag.Int("precio", 0, "Asking price in CLP (required)")
	descripcion := flag.String("descripcion", "", "Seller description")
	refPricesPath := flag.String("ref-prices", "data/reference_prices.json", "Reference prices JSON path")
	rawJSON := flag.Bool("json", false, "Output full result JSON")
	flag.Parse()

	if *producto == "" || *precio <= 0 {
		fmt.Fprintln(os.Stderr, "usage: evaluate -producto \"iPhone 13 128GB\" -precio 380000")
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	judge, err := eval.NewGeminiJudge(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	refPrices, err := refprice.Load(*refPricesPath)
	if err != nil {
		refPrices = refprice.Empty()
	}

	var web market.WebSource
	if brave := market.NewBraveClient(market.BraveOpts{APIKey: os.Getenv("BRAVE_API_KEY")}); brave != nil {
		web = brave
	}

	aggregator := market.NewAggregator(market.AggregatorOpts{
		Primary: market.NewMeliClient(market.MeliOpts{AccessToken: os.Getenv("MELI_ACCESS_TOKEN")}),
		Web:     web,
	})

	evaluator := eval.NewEvaluator(aggregator, judge, refPrices, nil)

	result, err := evaluator.Evaluate(ctx, *producto, *precio, *descripcion)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *rawJSON {
		jsonBytes, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(jsonBytes))
		return
	}

	fmt.Printf("%s\n", result.DecisionDisplay)
	fmt.Printf("Score: %s\n", result.ScoreDisplay)
	fmt.Printf("Margen: %s\n", result.MargenDisplay)
	fmt.Printf("Producto: %s (%s)\n", result.Clasificacion.ProductoIdentificado, result.Clasificacion.Categoria)
	fmt.Printf("Razonamiento: %s\n", result.Recomendacion.Razonamiento)
	for _, accion := range result.Recomendacion.AccionesSugeridas {
		fmt.Printf("  - %s\n", accion)
	}
	for _, alerta := range result.Alertas {
		fmt.Printf("  ⚠ %s\n", alerta)
	}
}
