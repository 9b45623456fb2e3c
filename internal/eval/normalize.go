package eval

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Neutral defaults substituted when the judgment omits or nulls a field.
const (
	defaultCategoria  = "Otro"
	defaultCondicion  = "Bueno"
	defaultTiempoDias = "N/A"
	defaultLiquidez   = "media"
)

// decisionIcons maps each decision to its display glyph.
var decisionIcons = map[Decision]string{
	DecisionComprarYa:    "🔥",
	DecisionComprar:      "✅",
	DecisionNegociar:     "⚠️",
	DecisionPasar:        "❌",
	DecisionAlertaRiesgo: "🚨",
}

const unknownDecisionIcon = "❓"

// Normalize coerces an arbitrary, untrusted judgment payload into a fully
// populated Result. It is total: any input map, including an empty one,
// yields a schema-valid result. A field that is present but null is treated
// exactly like an absent field.
func Normalize(raw map[string]any) Result {
	clasif := section(raw, "clasificacion")
	precio := section(raw, "analisis_precio")
	evalData := section(raw, "evaluacion")
	proy := section(raw, "proyeccion")
	rec := section(raw, "recomendacion")

	decision := ResolveDecision(getString(rec, "decision", ""))
	score := getFloat(evalData, "score_total", 0)
	margen := getInt(proy, "margen_bruto", 0)
	margenPct := getFloat(proy, "margen_porcentaje", 0)

	return Result{
		Clasificacion: Clasificacion{
			Categoria:            getString(clasif, "categoria", defaultCategoria),
			ProductoIdentificado: getString(clasif, "producto_identificado", ""),
			CondicionInferida:    getString(clasif, "condicion_inferida", defaultCondicion),
			Confianza:            getFloat(clasif, "confianza", 0),
		},
		AnalisisPrecio: AnalisisPrecio{
			PrecioPublicado:       getInt(precio, "precio_publicado", 0),
			PrecioReferenciaNuevo: getInt(precio, "precio_referencia_nuevo", 0),
			PrecioReferenciaUsado: getInt(precio, "precio_referencia_usado", 0),
			DescuentoVsNuevo:      getFloat(precio, "descuento_vs_nuevo", 0),
			DescuentoVsUsado:      getFloat(precio, "descuento_vs_usado", 0),
			PrecioMaxCompra:       getInt(precio, "precio_max_compra", 0),
		},
		Evaluacion: Evaluacion{
			ScoreDescuento: getFloat(evalData, "score_descuento", 0),
			ScoreLiquidez:  getFloat(evalData, "score_liquidez", 0),
			ScoreCondicion: getFloat(evalData, "score_condicion", 0),
			ScoreVendedor:  getFloat(evalData, "score_vendedor", 0),
			ScoreMargen:    getFloat(evalData, "score_margen", 0),
			ScoreTotal:     score,
		},
		Proyeccion: Proyeccion{
			PrecioVentaEsperado: getInt(proy, "precio_venta_esperado", 0),
			MargenBruto:         margen,
			MargenPorcentaje:    margenPct,
			TiempoVentaDias:     getString(proy, "tiempo_venta_dias", defaultTiempoDias),
			Liquidez:            getString(proy, "liquidez", defaultLiquidez),
		},
		SenalesPositivas: getStringList(raw, "senales_positivas"),
		SenalesNegativas: getStringList(raw, "senales_negativas"),
		Alertas:          getStringList(raw, "alertas"),
		Recomendacion: Recomendacion{
			Decision:          decision,
			Confianza:         getFloat(rec, "confianza", 0),
			Razonamiento:      getString(rec, "razonamiento", ""),
			AccionesSugeridas: getStringList(rec, "acciones_sugeridas"),
		},
		ScoreDisplay:    fmt.Sprintf("%.1f/10", score),
		DecisionDisplay: decisionDisplay(decision),
		MargenDisplay:   margenDisplay(margen, margenPct),
	}
}

// ResolveDecision maps a free-text decision string onto the closed decision
// vocabulary. Exact enum matches pass through; otherwise an ordered keyword
// rule list is applied (first match wins) with PASAR as the explicit default
// arm. If rule matching itself fails, NEGOCIAR is substituted as the
// conservative fallback and the anomaly is logged, since it indicates
// upstream contract drift.
func ResolveDecision(raw string) (decision Decision) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().
				Str("decision", raw).
				Interface("panic", r).
				Msg("decision resolution anomaly, defaulting to NEGOCIAR")
			decision = DecisionNegociar
		}
	}()

	switch Decision(raw) {
	case DecisionComprarYa, DecisionComprar, DecisionNegociar, DecisionPasar, DecisionAlertaRiesgo:
		return Decision(raw)
	}

	return fuzzyMatchDecision(raw)
}

// decisionRules are evaluated top-down; the first rule with a keyword hit
// wins. Order matters: "COMPRAR YA" must resolve before the bare COMPRAR
// rule, and risk wording beats everything.
var decisionRules = []struct {
	keywords []string
	decision Decision
}{
	{[]string{"RIESGO", "RISK", "ALERT"}, DecisionAlertaRiesgo},
	{[]string{"YA", "AHORA", "NOW", "URGENT"}, DecisionComprarYa},
	{[]string{"COMPRAR", "BUY"}, DecisionComprar},
	{[]string{"NEGOCIAR", "NEGOTIATE"}, DecisionNegociar},
}

func fuzzyMatchDecision(raw string) Decision {
	normalized := strings.ToUpper(strings.Join(strings.Fields(raw), " "))
	for _, rule := range decisionRules {
		for _, kw := range rule.keywords {
			if strings.Contains(normalized, kw) {
				return rule.decision
			}
		}
	}
	return DecisionPasar
}

func decisionDisplay(decision Decision) string {
	icon, ok := decisionIcons[decision]
	if !ok {
		icon = unknownDecisionIcon
	}
	return icon + " " + strings.ReplaceAll(string(decision), "_", " ")
}

func margenDisplay(margen int, margenPct float64) string {
	return fmt.Sprintf("$%s (%d%%)", formatThousands(margen), int(margenPct*100))
}

// formatThousands renders an integer with comma thousands separators.
func formatThousands(n int) string {
	s := strconv.Itoa(n)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return sign + strings.Join(parts, ",")
}

// section returns the nested object under key, or an empty map when missing
// or not an object.
func section(raw map[string]any, key string) map[string]any {
	if m, ok := raw[key].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func getString(m map[string]any, key, fallback string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func getFloat(m map[string]any, key string, fallback float64) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return fallback
}

func getInt(m map[string]any, key string, fallback int) int {
	return int(getFloat(m, key, float64(fallback)))
}

func getStringList(m map[string]any, key string) []string {
	out := []string{}
	list, ok := m[key].([]any)
	if !ok {
		return out
	}
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
