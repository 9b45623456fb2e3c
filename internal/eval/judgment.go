package eval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fcastellanos/reventa/internal/market"
	"github.com/lithammer/dedent"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Judgment errors. Callers distinguish "service unreachable" from "service
// replied with garbage"; neither may be papered over with a fabricated
// result.
var (
	ErrJudgmentUnavailable = errors.New("judgment service unavailable")
	ErrMalformedJudgment   = errors.New("judgment response is not valid JSON")
)

const (
	judgeModel   = "gemini-2.5-flash"
	judgeTimeout = 60 * time.Second
)

// Gemini pricing (per million tokens), for cost logging.
const (
	judgeInputPricePerMillion  = 0.30
	judgeOutputPricePerMillion = 2.50
)

var judgePrompt = dedent.Dedent(`
	Eres un experto evaluador de oportunidades de reventa de productos usados en Chile.
	Tu misión es analizar productos y predecir su rentabilidad y liquidez.
	Usa los precios de referencia y los datos de mercado en vivo para calcular márgenes.

	Contexto actual:
	- Temporada: %s
	- Fecha: %s
	- Precios Referencia (DB interna): %s
	- Datos Mercado En Vivo: %s

	Evalúa esta oportunidad de compra para reventa:

	**Producto:** %s
	**Precio publicado:** $%s CLP
	**Descripción:** %s

	Responde ÚNICAMENTE con JSON válido con esta estructura:
	{
	  "clasificacion": { "categoria": "", "producto_identificado": "", "condicion_inferida": "", "confianza": 0.0 },
	  "analisis_precio": { "precio_publicado": 0, "precio_referencia_nuevo": 0, "precio_referencia_usado": 0, "descuento_vs_nuevo": 0.0, "descuento_vs_usado": 0.0, "precio_max_compra": 0 },
	  "evaluacion": { "score_descuento": 0.0, "score_liquidez": 0.0, "score_condicion": 0.0, "score_vendedor": 0.0, "score_margen": 0.0, "score_total": 0.0 },
	  "proyeccion": { "precio_venta_esperado": 0, "margen_bruto": 0, "margen_porcentaje": 0.0, "tiempo_venta_dias": "", "liquidez": "" },
	  "senales_positivas": [],
	  "senales_negativas": [],
	  "alertas": [],
	  "recomendacion": { "decision": "", "confianza": 0.0, "razonamiento": "", "acciones_sugeridas": [] }
	}

	IMPORTANTE: El campo "decision" DEBE ser uno de estos valores exactos:
	["COMPRAR_YA", "COMPRAR", "NEGOCIAR", "PASAR", "ALERTA_RIESGO"]
`)

// Judge is the external judgment collaborator: it receives the deal context
// and returns an untrusted, arbitrarily shaped payload.
type Judge interface {
	EvaluateDeal(ctx context.Context, producto string, precio int, descripcion string, refPrices map[string]any, stats market.Stats) (map[string]any, error)
}

// GeminiJudge implements Judge using Google's Gemini API.
type GeminiJudge struct {
	client *genai.Client
}

// NewGeminiJudge creates a Gemini-backed judge. It uses the GEMINI_API_KEY
// environment variable for authentication.
func NewGeminiJudge(ctx context.Context) (*GeminiJudge, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: os.Getenv("GEMINI_API_KEY"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiJudge{client: client}, nil
}

// EvaluateDeal asks the model for a structured evaluation of the deal. The
// returned map is untrusted: it may be missing any field. Transport failures
// wrap ErrJudgmentUnavailable; unparseable payloads wrap ErrMalformedJudgment.
func (g *GeminiJudge) EvaluateDeal(ctx context.Context, producto string, precio int, descripcion string, refPrices map[string]any, stats market.Stats) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, judgeTimeout)
	defer cancel()

	prompt := buildJudgePrompt(time.Now(), producto, precio, descripcion, refPrices, stats)

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	result, err := g.client.Models.GenerateContent(ctx, judgeModel, []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJudgmentUnavailable, err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedJudgment)
	}

	raw, err := parseJudgment(result.Text())
	if err != nil {
		return nil, err
	}

	if result.UsageMetadata != nil {
		inputTokens := int64(result.UsageMetadata.PromptTokenCount)
		outputTokens := int64(result.UsageMetadata.CandidatesTokenCount)
		cost := float64(inputTokens)/1_000_000*judgeInputPricePerMillion +
			float64(outputTokens)/1_000_000*judgeOutputPricePerMillion
		log.Info().
			Str("model", judgeModel).
			Int64("inputTokens", inputTokens).
			Int64("outputTokens", outputTokens).
			Float64("costUSD", cost).
			Str("producto", producto).
			Msg("judgment llm call")
	}

	return raw, nil
}

func buildJudgePrompt(now time.Time, producto string, precio int, descripcion string, refPrices map[string]any, stats market.Stats) string {
	refJSON, err := json.MarshalIndent(refPrices, "", "  ")
	if err != nil {
		refJSON = []byte("{}")
	}
	statsJSON, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		statsJSON = []byte("{}")
	}
	if descripcion == "" {
		descripcion = "No proporcionada"
	}

	return fmt.Sprintf(strings.TrimSpace(judgePrompt),
		Season(now),
		now.Format("2006-01-02"),
		refJSON,
		statsJSON,
		producto,
		formatThousands(precio),
		descripcion,
	)
}

// Season describes the Chilean season for the given date, with a note on
// resale demand. Fed to the judge as context.
func Season(now time.Time) string {
	switch now.Month() {
	case time.December, time.January, time.February:
		return "Verano (Alta demanda productos aire libre/vacaciones)"
	case time.March, time.April, time.May:
		return "Otoño (Vuelta a clases/trabajo)"
	case time.June, time.July, time.August:
		return "Invierno (Alta demanda calefacción/indoor)"
	default:
		return "Primavera (Prep. aire libre)"
	}
}

// parseJudgment extracts the first balanced JSON object from text that may be
// wrapped in markdown fences or prose, then decodes it into a map.
func parseJudgment(text string) (map[string]any, error) {
	jsonStr, err := extractJSONObject(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJudgment, err)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJudgment, err)
	}
	return raw, nil
}

// extractJSONObject extracts a JSON object from text that may contain
// markdown code blocks or other formatting.
func extractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response: %s", text)
	}
	return text[start : end+1], nil
}
