package eval

import (
	"errors"
	"testing"
	"time"

	"github.com/fcastellanos/reventa/internal/market"
	"github.com/stretchr/testify/assert"
)

func TestParseJudgment(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{
			name: "bare json",
			text: `{"recomendacion": {"decision": "COMPRAR"}}`,
		},
		{
			name: "markdown fenced",
			text: "```json\n{\"recomendacion\": {\"decision\": \"COMPRAR\"}}\n```",
		},
		{
			name: "surrounded by prose",
			text: "Aquí está mi análisis:\n{\"recomendacion\": {\"decision\": \"COMPRAR\"}}\nEspero que ayude.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := parseJudgment(tt.text)
			assert.NoError(t, err)

			rec, ok := raw["recomendacion"].(map[string]any)
			assert.True(t, ok)
			assert.Equal(t, "COMPRAR", rec["decision"])
		})
	}
}

func TestParseJudgmentMalformed(t *testing.T) {
	for _, text := range []string{
		"",
		"no hay json aquí",
		"{ truncated",
		"} backwards {",
		"{invalid json}",
	} {
		_, err := parseJudgment(text)
		assert.Error(t, err, "input: %q", text)
		assert.True(t, errors.Is(err, ErrMalformedJudgment), "input: %q", text)
	}
}

func TestExtractJSONObject(t *testing.T) {
	jsonStr, err := extractJSONObject("prefix {\"a\": {\"b\": 1}} suffix")
	assert.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 1}}`, jsonStr)

	_, err = extractJSONObject("nothing here")
	assert.Error(t, err)
}

func TestSeason(t *testing.T) {
	tests := []struct {
		month time.Month
		want  string
	}{
		{time.January, "Verano (Alta demanda productos aire libre/vacaciones)"},
		{time.April, "Otoño (Vuelta a clases/trabajo)"},
		{time.July, "Invierno (Alta demanda calefacción/indoor)"},
		{time.October, "Primavera (Prep. aire libre)"},
		{time.December, "Verano (Alta demanda productos aire libre/vacaciones)"},
	}

	for _, tt := range tests {
		now := time.Date(2026, tt.month, 15, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, tt.want, Season(now))
	}
}

func TestBuildJudgePrompt(t *testing.T) {
	now := time.Date(2026, time.July, 15, 12, 0, 0, 0, time.UTC)
	refPrices := map[string]any{
		"categorias": map[string]any{
			"Celulares": map[string]any{"iPhone 13 128GB": map[string]any{"usado": 420000}},
		},
	}
	stats := market.Stats{Source: market.SourcePrimary, Count: 11, Median: 350000}

	prompt := buildJudgePrompt(now, "iPhone 13 128GB", 380000, "Batería 88%", refPrices, stats)

	assert.Contains(t, prompt, "Invierno")
	assert.Contains(t, prompt, "2026-07-15")
	assert.Contains(t, prompt, "iPhone 13 128GB")
	assert.Contains(t, prompt, "$380,000 CLP")
	assert.Contains(t, prompt, "Batería 88%")
	assert.Contains(t, prompt, `"usado": 420000`)
	assert.Contains(t, prompt, `"median": 350000`)
	assert.Contains(t, prompt, "COMPRAR_YA")
	assert.Contains(t, prompt, "ALERTA_RIESGO")
}

func TestBuildJudgePromptDefaultsDescription(t *testing.T) {
	prompt := buildJudgePrompt(time.Now(), "PS5", 400000, "", map[string]any{}, market.Stats{})
	assert.Contains(t, prompt, "No proporcionada")
}
