package eval

// Decision is the closed vocabulary of purchase recommendations.
type Decision string

const (
	DecisionComprarYa    Decision = "COMPRAR_YA"
	DecisionComprar      Decision = "COMPRAR"
	DecisionNegociar     Decision = "NEGOCIAR"
	DecisionPasar        Decision = "PASAR"
	DecisionAlertaRiesgo Decision = "ALERTA_RIESGO"
)

// Clasificacion identifies what the product is and how confident the
// classifier was.
type Clasificacion struct {
	Categoria            string  `json:"categoria"`
	ProductoIdentificado string  `json:"producto_identificado"`
	CondicionInferida    string  `json:"condicion_inferida"`
	Confianza            float64 `json:"confianza"`
}

// AnalisisPrecio compares the asking price against reference prices. Amounts
// in CLP, discounts as fractions.
type AnalisisPrecio struct {
	PrecioPublicado       int     `json:"precio_publicado"`
	PrecioReferenciaNuevo int     `json:"precio_referencia_nuevo"`
	PrecioReferenciaUsado int     `json:"precio_referencia_usado"`
	DescuentoVsNuevo      float64 `json:"descuento_vs_nuevo"`
	DescuentoVsUsado      float64 `json:"descuento_vs_usado"`
	PrecioMaxCompra       int     `json:"precio_max_compra"`
}

// Evaluacion holds the five sub-scores and the total, all on a 0-10 scale.
type Evaluacion struct {
	ScoreDescuento float64 `json:"score_descuento"`
	ScoreLiquidez  float64 `json:"score_liquidez"`
	ScoreCondicion float64 `json:"score_condicion"`
	ScoreVendedor  float64 `json:"score_vendedor"`
	ScoreMargen    float64 `json:"score_margen"`
	ScoreTotal     float64 `json:"score_total"`
}

// Proyeccion is the resale projection: expected sale price, margin and
// liquidity.
type Proyeccion struct {
	PrecioVentaEsperado int     `json:"precio_venta_esperado"`
	MargenBruto         int     `json:"margen_bruto"`
	MargenPorcentaje    float64 `json:"margen_porcentaje"`
	TiempoVentaDias     string  `json:"tiempo_venta_dias"`
	Liquidez            string  `json:"liquidez"`
}

// Recomendacion is the decision record.
type Recomendacion struct {
	Decision          Decision `json:"decision"`
	Confianza         float64  `json:"confianza"`
	Razonamiento      string   `json:"razonamiento"`
	AccionesSugeridas []string `json:"acciones_sugeridas"`
}

// Result is the strict evaluation output. Every field is always present and
// well-formed, no matter how partial the upstream judgment was.
type Result struct {
	Clasificacion    Clasificacion  `json:"clasificacion"`
	AnalisisPrecio   AnalisisPrecio `json:"analisis_precio"`
	Evaluacion       Evaluacion     `json:"evaluacion"`
	Proyeccion       Proyeccion     `json:"proyeccion"`
	SenalesPositivas []string       `json:"senales_positivas"`
	SenalesNegativas []string       `json:"senales_negativas"`
	Alertas          []string       `json:"alertas"`
	Recomendacion    Recomendacion  `json:"recomendacion"`

	// Derived display strings for the presentation layer.
	ScoreDisplay    string `json:"score_display"`
	DecisionDisplay string `json:"decision_display"`
	MargenDisplay   string `json:"margen_display"`
}
