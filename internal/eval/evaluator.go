package eval

import (
	"context"

	"github.com/fcastellanos/reventa/internal/market"
	"github.com/rs/zerolog/log"
)

// MarketFetcher abstracts the market data aggregator. Its contract is
// error-free: failures surface only as the Count=0 sentinel inside Stats.
type MarketFetcher interface {
	FetchMarketData(ctx context.Context, query string, limit int) market.Stats
}

// HistoryRecorder persists completed evaluations. Optional; persistence
// failures are logged, never surfaced.
type HistoryRecorder interface {
	SaveEvaluation(producto string, precio int, result Result) error
}

// Evaluator coordinates one evaluation request: market data, judgment,
// normalization.
type Evaluator struct {
	market    MarketFetcher
	judge     Judge
	refPrices map[string]any
	history   HistoryRecorder
}

// NewEvaluator creates an evaluator. refPrices is the static reference price
// table, passed through to the judge unchanged. history may be nil.
func NewEvaluator(fetcher MarketFetcher, judge Judge, refPrices map[string]any, history HistoryRecorder) *Evaluator {
	return &Evaluator{
		market:    fetcher,
		judge:     judge,
		refPrices: refPrices,
		history:   history,
	}
}

// Evaluate runs a full evaluation of a deal. Market data failures degrade
// silently (the judgment proceeds with zero market signal); judge failures
// propagate as ErrJudgmentUnavailable or ErrMalformedJudgment, because the
// judgment is the entire value of the evaluation and must not be fabricated.
func (e *Evaluator) Evaluate(ctx context.Context, producto string, precio int, descripcion string) (Result, error) {
	stats := e.market.FetchMarketData(ctx, producto, market.DefaultSearchLimit)

	raw, err := e.judge.EvaluateDeal(ctx, producto, precio, descripcion, e.refPrices, stats)
	if err != nil {
		return Result{}, err
	}

	result := Normalize(raw)

	log.Info().
		Str("producto", producto).
		Int("precio", precio).
		Str("decision", string(result.Recomendacion.Decision)).
		Float64("scoreTotal", result.Evaluacion.ScoreTotal).
		Str("marketSource", stats.Source).
		Int("marketCount", stats.Count).
		Msg("deal evaluated")

	if e.history != nil {
		if err := e.history.SaveEvaluation(producto, precio, result); err != nil {
			log.Warn().Err(err).Str("producto", producto).Msg("failed to persist evaluation")
		}
	}

	return result, nil
}
