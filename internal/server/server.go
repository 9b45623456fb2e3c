// Package server exposes the evaluator over HTTP. The wire format is the
// strict eval.Result record; all error responses are JSON.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fcastellanos/reventa/internal/eval"
	"github.com/fcastellanos/reventa/internal/storage"
	"github.com/rs/zerolog/log"
)

// MaxPrecioPublicado caps the asking price accepted by the API (50M CLP).
const MaxPrecioPublicado = 50_000_000

// DealEvaluator abstracts the evaluation orchestrator.
type DealEvaluator interface {
	Evaluate(ctx context.Context, producto string, precio int, descripcion string) (eval.Result, error)
}

// HistorySource abstracts the evaluation history store.
type HistorySource interface {
	RecentEvaluations(limit int) ([]storage.EvaluationRecord, error)
}

// Server is the HTTP API for the evaluator.
type Server struct {
	addr      string
	evaluator DealEvaluator
	history   HistorySource
}

// New creates a server listening on addr. history may be nil, in which case
// the history endpoint reports empty results.
func New(addr string, evaluator DealEvaluator, history HistorySource) *Server {
	return &Server{addr: addr, evaluator: evaluator, history: history}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Handler builds the route mux. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/evaluate", s.handleEvaluate)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	return logRequests(mux)
}

// EvaluateRequest is the POST /api/evaluate body.
type EvaluateRequest struct {
	Producto        string `json:"producto"`
	PrecioPublicado int    `json:"precio_publicado"`
	Descripcion     string `json:"descripcion,omitempty"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if len(req.Producto) < 3 {
		writeError(w, http.StatusBadRequest, "producto must be at least 3 characters")
		return
	}
	if req.PrecioPublicado <= 0 || req.PrecioPublicado > MaxPrecioPublicado {
		writeError(w, http.StatusBadRequest, "precio_publicado must be between 1 and 50000000")
		return
	}

	result, err := s.evaluator.Evaluate(r.Context(), req.Producto, req.PrecioPublicado, req.Descripcion)
	if err != nil {
		switch {
		case errors.Is(err, eval.ErrMalformedJudgment):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, eval.ErrJudgmentUnavailable):
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			log.Error().Err(err).Str("producto", req.Producto).Msg("evaluation failed")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "reventa"})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 200 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	if s.history == nil {
		writeJSON(w, http.StatusOK, []historyItem{})
		return
	}

	records, err := s.history.RecentEvaluations(limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to load evaluation history")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	items := make([]historyItem, 0, len(records))
	for _, rec := range records {
		items = append(items, historyItem{
			ID:              rec.ID,
			Producto:        rec.Producto,
			PrecioPublicado: rec.PrecioPublicado,
			Decision:        rec.Decision,
			ScoreTotal:      rec.ScoreTotal,
			MargenBruto:     rec.MargenBruto,
			CreatedAt:       rec.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

type historyItem struct {
	ID              int64     `json:"id"`
	Producto        string    `json:"producto"`
	PrecioPublicado int       `json:"precio_publicado"`
	Decision        string    `json:"decision"`
	ScoreTotal      float64   `json:"score_total"`
	MargenBruto     int       `json:"margen_bruto"`
	CreatedAt       time.Time `json:"created_at"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
