package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/selivandex/ticker-sentiment/internal/pipeline"
	"github.com/selivandex/ticker-sentiment/pkg/logger"
	"github.com/selivandex/ticker-sentiment/pkg/models"
)

type stockResponse struct {
	Ticker        string  `json:"ticker"`
	Price         float64 `json:"price"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	PreviousClose float64 `json:"previousClose"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

type allResponse struct {
	stockResponse
	SentimentScore int           `json:"sentimentScore"`
	Posts          []models.Post `json:"posts"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newStockResponse(q *models.Quote) stockResponse {
	return stockResponse{
		Ticker:        q.Ticker,
		Price:         models.ToFloat64(q.Price),
		Open:          models.ToFloat64(q.Open),
		High:          models.ToFloat64(q.High),
		Low:           models.ToFloat64(q.Low),
		PreviousClose: models.ToFloat64(q.PreviousClose),
		Change:        models.ToFloat64(q.Change),
		ChangePercent: models.ToFloat64(q.ChangePercent),
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Stock sentiment API",
		"endpoints": []string{
			"/stock/{ticker}",
			"/reddit/{ticker}",
			"/all/{ticker}",
		},
		"status": "healthy",
	})
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	ticker, err := pipeline.NormalizeTicker(chi.URLParam(r, "ticker"))
	if err != nil {
		writeError(w, err)
		return
	}

	quote, err := s.quotes.GetQuote(r.Context(), ticker)
	if err != nil {
		logger.Error("quote request failed", zap.String("ticker", ticker), zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newStockResponse(quote))
}

func (s *Server) handleReddit(w http.ResponseWriter, r *http.Request) {
	result, err := s.sentiment.Aggregate(r.Context(), chi.URLParam(r, "ticker"))
	if err != nil {
		logger.Error("sentiment request failed", zap.String("ticker", chi.URLParam(r, "ticker")), zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleAll fetches the quote and the sentiment concurrently and fails the
// whole response when either does
func (s *Server) handleAll(w http.ResponseWriter, r *http.Request) {
	ticker, err := pipeline.NormalizeTicker(chi.URLParam(r, "ticker"))
	if err != nil {
		writeError(w, err)
		return
	}

	var (
		quote  *models.Quote
		result *models.AggregationResult
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		quote, err = s.quotes.GetQuote(ctx, ticker)
		return err
	})
	g.Go(func() error {
		var err error
		result, err = s.sentiment.Aggregate(ctx, ticker)
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("combined request failed", zap.String("ticker", ticker), zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, allResponse{
		stockResponse:  newStockResponse(quote),
		SentimentScore: result.SentimentScore,
		Posts:          result.Posts,
	})
}

func errorStatus(err error) int {
	var authErr *models.AuthError
	switch {
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrInvalidTicker):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}
