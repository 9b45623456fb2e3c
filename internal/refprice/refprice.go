// Package refprice loads the static reference price table: a mapping from
// product category to typical new/used prices in CLP. The table is loaded
// once at startup and passed opaquely to the judgment step; its shape is not
// validated here.
package refprice

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads the reference price table from a JSON file.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference prices: %w", err)
	}

	var table map[string]any
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse reference prices: %w", err)
	}
	return table, nil
}

// Empty returns the table used when no reference price file is available.
func Empty() map[string]any {
	return map[string]any{"categorias": map[string]any{}}
}
