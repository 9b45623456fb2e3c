package eval

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmptyPayload(t *testing.T) {
	result := Normalize(map[string]any{})

	assert.Equal(t, "Otro", result.Clasificacion.Categoria)
	assert.Equal(t, "Bueno", result.Clasificacion.CondicionInferida)
	assert.Zero(t, result.Clasificacion.Confianza)

	assert.Zero(t, result.AnalisisPrecio.PrecioPublicado)
	assert.Zero(t, result.AnalisisPrecio.PrecioMaxCompra)
	assert.Zero(t, result.Evaluacion.ScoreTotal)
	assert.Zero(t, result.Proyeccion.MargenBruto)
	assert.Zero(t, result.Proyeccion.MargenPorcentaje)

	assert.Equal(t, "N/A", result.Proyeccion.TiempoVentaDias)
	assert.Equal(t, "media", result.Proyeccion.Liquidez)

	assert.NotNil(t, result.SenalesPositivas)
	assert.Empty(t, result.SenalesPositivas)
	assert.NotNil(t, result.SenalesNegativas)
	assert.NotNil(t, result.Alertas)
	assert.NotNil(t, result.Recomendacion.AccionesSugeridas)

	assert.Equal(t, DecisionPasar, result.Recomendacion.Decision)
	assert.Equal(t, "0.0/10", result.ScoreDisplay)
	assert.Equal(t, "❌ PASAR", result.DecisionDisplay)
	assert.Equal(t, "$0 (0%)", result.MargenDisplay)
}

func TestNormalizeExplicitNullsTreatedAsAbsent(t *testing.T) {
	var raw map[string]any
	payload := `{
		"clasificacion": {"categoria": null, "confianza": null},
		"evaluacion": null,
		"proyeccion": {"margen_bruto": null, "liquidez": null},
		"senales_positivas": null,
		"recomendacion": {"decision": null}
	}`
	assert.NoError(t, json.Unmarshal([]byte(payload), &raw))

	result := Normalize(raw)

	assert.Equal(t, "Otro", result.Clasificacion.Categoria)
	assert.Zero(t, result.Clasificacion.Confianza)
	assert.Zero(t, result.Evaluacion.ScoreTotal)
	assert.Zero(t, result.Proyeccion.MargenBruto)
	assert.Equal(t, "media", result.Proyeccion.Liquidez)
	assert.NotNil(t, result.SenalesPositivas)
	assert.Equal(t, DecisionPasar, result.Recomendacion.Decision)
}

func TestNormalizeFullPayload(t *testing.T) {
	var raw map[string]any
	payload := `{
		"clasificacion": {
			"categoria": "Celulares",
			"producto_identificado": "iPhone 13 128GB",
			"condicion_inferida": "Muy bueno",
			"confianza": 0.9
		},
		"analisis_precio": {
			"precio_publicado": 300000,
			"precio_referencia_nuevo": 599990,
			"precio_referencia_usado": 420000,
			"descuento_vs_nuevo": 0.5,
			"descuento_vs_usado": 0.29,
			"precio_max_compra": 340000
		},
		"evaluacion": {
			"score_descuento": 9,
			"score_liquidez": 8,
			"score_condicion": 7.5,
			"score_vendedor": 6,
			"score_margen": 8.5,
			"score_total": 8.2
		},
		"proyeccion": {
			"precio_venta_esperado": 400000,
			"margen_bruto": 100000,
			"margen_porcentaje": 0.33,
			"tiempo_venta_dias": "7-14",
			"liquidez": "alta"
		},
		"senales_positivas": ["precio bajo mercado"],
		"senales_negativas": [],
		"alertas": [],
		"recomendacion": {
			"decision": "COMPRAR_YA",
			"confianza": 0.85,
			"razonamiento": "Margen alto y liquidez alta",
			"acciones_sugeridas": ["comprar hoy", "revisar IMEI"]
		}
	}`
	assert.NoError(t, json.Unmarshal([]byte(payload), &raw))

	result := Normalize(raw)

	assert.Equal(t, "Celulares", result.Clasificacion.Categoria)
	assert.Equal(t, "iPhone 13 128GB", result.Clasificacion.ProductoIdentificado)
	assert.InDelta(t, 0.9, result.Clasificacion.Confianza, 1e-9)
	assert.Equal(t, 300000, result.AnalisisPrecio.PrecioPublicado)
	assert.Equal(t, 340000, result.AnalisisPrecio.PrecioMaxCompra)
	assert.InDelta(t, 8.2, result.Evaluacion.ScoreTotal, 1e-9)
	assert.Equal(t, 100000, result.Proyeccion.MargenBruto)
	assert.Equal(t, "7-14", result.Proyeccion.TiempoVentaDias)
	assert.Equal(t, []string{"precio bajo mercado"}, result.SenalesPositivas)
	assert.Equal(t, DecisionComprarYa, result.Recomendacion.Decision)
	assert.Equal(t, []string{"comprar hoy", "revisar IMEI"}, result.Recomendacion.AccionesSugeridas)

	assert.Equal(t, "8.2/10", result.ScoreDisplay)
	assert.Equal(t, "🔥 COMPRAR YA", result.DecisionDisplay)
	assert.Equal(t, "$100,000 (33%)", result.MargenDisplay)
}

func TestResolveDecision(t *testing.T) {
	tests := []struct {
		raw  string
		want Decision
	}{
		// Exact enum values pass through.
		{"COMPRAR_YA", DecisionComprarYa},
		{"COMPRAR", DecisionComprar},
		{"NEGOCIAR", DecisionNegociar},
		{"PASAR", DecisionPasar},
		{"ALERTA_RIESGO", DecisionAlertaRiesgo},

		// Fuzzy matching, first rule wins.
		{"COMPRAR AHORA", DecisionComprarYa},
		{"comprar ya!", DecisionComprarYa},
		{"BUY NOW", DecisionComprarYa},
		{"Se recomienda comprar", DecisionComprar},
		{"BUY", DecisionComprar},
		{"hay que negociar el precio", DecisionNegociar},
		{"NEGOTIATE", DecisionNegociar},
		{"ALERTA: posible estafa", DecisionAlertaRiesgo},
		{"alto riesgo", DecisionAlertaRiesgo},
		// Risk wording beats buy wording.
		{"COMPRAR PERO CON RIESGO", DecisionAlertaRiesgo},

		// Nothing matches: default to the conservative PASAR.
		{"banana", DecisionPasar},
		{"", DecisionPasar},
		{"mejor esperar", DecisionPasar},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDecision(tt.raw))
		})
	}
}

func TestDecisionDisplay(t *testing.T) {
	assert.Equal(t, "🔥 COMPRAR YA", decisionDisplay(DecisionComprarYa))
	assert.Equal(t, "✅ COMPRAR", decisionDisplay(DecisionComprar))
	assert.Equal(t, "⚠️ NEGOCIAR", decisionDisplay(DecisionNegociar))
	assert.Equal(t, "❌ PASAR", decisionDisplay(DecisionPasar))
	assert.Equal(t, "🚨 ALERTA RIESGO", decisionDisplay(DecisionAlertaRiesgo))
	assert.Equal(t, "❓ DESCONOCIDO", decisionDisplay(Decision("DESCONOCIDO")))
}

func TestMargenDisplay(t *testing.T) {
	assert.Equal(t, "$100,000 (33%)", margenDisplay(100000, 0.33))
	assert.Equal(t, "$1,250,000 (12%)", margenDisplay(1250000, 0.125))
	assert.Equal(t, "$0 (0%)", margenDisplay(0, 0))
	assert.Equal(t, "$-45,000 (-15%)", margenDisplay(-45000, -0.15))
}

func TestFormatThousands(t *testing.T) {
	assert.Equal(t, "0", formatThousands(0))
	assert.Equal(t, "999", formatThousands(999))
	assert.Equal(t, "1,000", formatThousands(1000))
	assert.Equal(t, "350,000", formatThousands(350000))
	assert.Equal(t, "1,200,000", formatThousands(1200000))
	assert.Equal(t, "-8,500", formatThousands(-8500))
}
