// Package api serves pronosticos over an HTTP JSON API
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/richard-senior/pronosticos/internal/app"
	"github.com/richard-senior/pronosticos/internal/config"
	"github.com/richard-senior/pronosticos/internal/logger"
)

// Server represents the REST API server
type Server struct {
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(cfg config.HTTPConfig, a *app.App) *Server {
	handler := NewHandler(a)
	return &Server{
		handler: handler,
		server: &http.Server{
			Addr:         cfg.Address,
			Handler:      NewRouter(handler),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// NewRouter builds the route table
func NewRouter(handler *Handler) *mux.Router {
	router := mux.NewRouter()

	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	// Leagues
	api.HandleFunc("/leagues", handler.ListLeagues).Methods("GET")
	api.HandleFunc("/leagues", handler.AddLeague).Methods("POST")
	api.HandleFunc("/leagues/refresh", handler.RefreshAll).Methods("POST")
	api.HandleFunc("/leagues/{leagueID}", handler.GetLeague).Methods("GET")
	api.HandleFunc("/leagues/{leagueID}", handler.UpdateLeague).Methods("PUT")
	api.HandleFunc("/leagues/{leagueID}", handler.RemoveLeague).Methods("DELETE")
	api.HandleFunc("/leagues/{leagueID}/refresh", handler.Refresh).Methods("POST")

	// Fixtures
	api.HandleFunc("/leagues/{leagueID}/fixtures", handler.ListFixtures).Methods("GET")
	api.HandleFunc("/leagues/{leagueID}/fixtures.csv", handler.ExportCSV).Methods("GET")
	api.HandleFunc("/leagues/{leagueID}/overview", handler.Overview).Methods("GET")

	// Model
	api.HandleFunc("/leagues/{leagueID}/predict", handler.Predict).Methods("GET")
	api.HandleFunc("/leagues/{leagueID}/predictions/upcoming", handler.PredictUpcoming).Methods("GET")
	api.HandleFunc("/leagues/{leagueID}/backtest", handler.Backtest).Methods("POST")
	api.HandleFunc("/leagues/{leagueID}/backtest", handler.LastBacktest).Methods("GET")

	// Statistics
	api.HandleFunc("/leagues/{leagueID}/statistics", handler.LeagueStatistics).Methods("GET")
	api.HandleFunc("/leagues/{leagueID}/teams/{team}/rates", handler.TeamRates).Methods("GET")
	api.HandleFunc("/leagues/{leagueID}/teams/{team}/statistics", handler.TeamStatistics).Methods("GET")
	api.HandleFunc("/leagues/{leagueID}/odds-comparison", handler.OddsComparison).Methods("GET")
	api.HandleFunc("/leagues/{leagueID}/odds-comparison.csv", handler.ExportOddsComparisonCSV).Methods("GET")

	// Users
	api.HandleFunc("/users", handler.Register).Methods("POST")
	api.HandleFunc("/login", handler.Login).Methods("POST")

	return router
}

// Start starts the REST API server. It returns nil after Shutdown.
func (s *Server) Start() error {
	logger.Info("HTTP API listening on", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
