// Package server exposes the quote and sentiment endpoints over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/selivandex/ticker-sentiment/internal/adapters/price"
	"github.com/selivandex/ticker-sentiment/internal/health"
	"github.com/selivandex/ticker-sentiment/pkg/logger"
	"github.com/selivandex/ticker-sentiment/pkg/models"
)

// SentimentService aggregates forum sentiment for a ticker
type SentimentService interface {
	Aggregate(ctx context.Context, ticker string) (*models.AggregationResult, error)
}

// Server is the HTTP API
type Server struct {
	server    *http.Server
	router    chi.Router
	quotes    price.QuoteProvider
	sentiment SentimentService
}

// NewServer creates the API server and mounts all routes
func NewServer(port string, quotes price.QuoteProvider, sentiment SentimentService, probes *health.Handler) *Server {
	s := &Server{
		quotes:    quotes,
		sentiment: sentiment,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/", s.handleRoot)
	r.Get("/stock/{ticker}", s.handleStock)
	r.Get("/reddit/{ticker}", s.handleReddit)
	r.Get("/all/{ticker}", s.handleAll)

	if probes != nil {
		probes.Register(r)
	}

	s.router = r
	s.server = &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		// aggregation may wait on many upstream calls
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until Shutdown is called
func (s *Server) Start() error {
	logger.Info("api server starting", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("stopping api server...")
	return s.server.Shutdown(ctx)
}
