package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/richard-senior/pronosticos/internal/app"
	"github.com/richard-senior/pronosticos/pkg/store"
	"github.com/richard-senior/pronosticos/pkg/util/podds"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	app *app.App
}

// NewHandler creates a new handler
func NewHandler(a *app.App) *Handler {
	return &Handler{app: a}
}

type leagueRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type userRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"service":  "pronosticos",
		"version":  "1.0.0",
		"loaded":   h.app.Session().Competitions(),
		"database": h.app.Config().Paths.DBPath,
	})
}

// ListLeagues returns every registered league
func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	leagues, err := h.app.Leagues().List()
	if err != nil {
		respondDomainError(w, "Failed to list leagues", err)
		return
	}
	respondJSON(w, http.StatusOK, leagues)
}

// GetLeague returns one league
func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	league, err := h.app.Leagues().Get(mux.Vars(r)["leagueID"])
	if err != nil {
		respondDomainError(w, "Failed to fetch league", err)
		return
	}
	respondJSON(w, http.StatusOK, league)
}

// AddLeague registers a league from a JSON body {name, url}
func (h *Handler) AddLeague(w http.ResponseWriter, r *http.Request) {
	var req leagueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.URL == "" {
		respondError(w, http.StatusBadRequest, "name and url are required", nil)
		return
	}
	league, err := h.app.Leagues().Add(req.Name, req.URL)
	if err != nil {
		respondDomainError(w, "Failed to add league", err)
		return
	}
	respondJSON(w, http.StatusCreated, league)
}

// UpdateLeague changes a league's name and/or url
func (h *Handler) UpdateLeague(w http.ResponseWriter, r *http.Request) {
	var req leagueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	league, err := h.app.Leagues().Update(mux.Vars(r)["leagueID"], req.Name, req.URL)
	if err != nil {
		respondDomainError(w, "Failed to update league", err)
		return
	}
	respondJSON(w, http.StatusOK, league)
}

// RemoveLeague deletes a league and its fixtures
func (h *Handler) RemoveLeague(w http.ResponseWriter, r *http.Request) {
	if err := h.app.RemoveLeague(mux.Vars(r)["leagueID"]); err != nil {
		respondDomainError(w, "Failed to remove league", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Refresh fetches a league's fixtures again
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.Refresh(r.Context(), mux.Vars(r)["leagueID"])
	if err != nil {
		respondDomainError(w, "Failed to refresh league", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// RefreshAll fetches every league's fixtures again
func (h *Handler) RefreshAll(w http.ResponseWriter, r *http.Request) {
	results, err := h.app.RefreshAll(r.Context())
	response := map[string]any{"refreshed": results}
	if err != nil {
		response["errors"] = err.Error()
	}
	respondJSON(w, http.StatusOK, response)
}

// ListFixtures returns a league's matches, filtered by the query parameters
// team, venue, status, round and date
func (h *Handler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	repo, err := h.app.Repository(r.Context(), mux.Vars(r)["leagueID"])
	if err != nil {
		respondDomainError(w, "Failed to load fixtures", err)
		return
	}

	q := r.URL.Query()
	matches := repo.All()
	if team := q.Get("team"); team != "" {
		venue, err := podds.ParseVenue(q.Get("venue"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid venue", err)
			return
		}
		matches = repo.MatchesForTeam(team, venue)
	}

	status, round, date := q.Get("status"), q.Get("round"), q.Get("date")
	out := make([]podds.Match, 0, len(matches))
	for _, m := range matches {
		if (status == "played" && !m.IsPlayed()) || (status == "upcoming" && !m.IsUpcoming()) {
			continue
		}
		if (round != "" && m.RoundLabel() != round) || (date != "" && m.DateValue() != date) {
			continue
		}
		out = append(out, m)
	}
	respondJSON(w, http.StatusOK, out)
}

// ExportCSV streams a league's fixtures as CSV
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	leagueID := mux.Vars(r)["leagueID"]
	if _, err := h.app.Repository(r.Context(), leagueID); err != nil {
		respondDomainError(w, "Failed to load fixtures", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", leagueID+".csv"))
	if err := h.app.ExportCSV(r.Context(), leagueID, w); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to export fixtures", err)
	}
}

// OddsComparison prices the upcoming fixtures from venue frequencies
func (h *Handler) OddsComparison(w http.ResponseWriter, r *http.Request) {
	comparisons, err := h.app.OddsComparison(r.Context(), mux.Vars(r)["leagueID"])
	if err != nil {
		respondDomainError(w, "Failed to compare odds", err)
		return
	}
	respondJSON(w, http.StatusOK, comparisons)
}

// ExportOddsComparisonCSV streams the odds comparison as CSV
func (h *Handler) ExportOddsComparisonCSV(w http.ResponseWriter, r *http.Request) {
	leagueID := mux.Vars(r)["leagueID"]
	if _, err := h.app.Repository(r.Context(), leagueID); err != nil {
		respondDomainError(w, "Failed to load fixtures", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", leagueID+"_odds.csv"))
	if err := h.app.ExportOddsComparisonCSV(r.Context(), leagueID, w); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to export odds comparison", err)
	}
}

// Overview summarises a league's loaded fixtures
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	model, err := h.app.Model(r.Context(), mux.Vars(r)["leagueID"])
	if err != nil {
		respondDomainError(w, "Failed to load fixtures", err)
		return
	}
	repo := model.Repository()
	respondJSON(w, http.StatusOK, map[string]any{
		"matches":       repo.Len(),
		"played":        len(repo.Played()),
		"upcoming":      len(repo.Upcoming()),
		"leagueAverage": model.LeagueAverage(),
		"teams":         repo.Teams(),
		"rounds":        repo.Rounds(),
		"datesUpcoming": repo.DatesUpcoming(),
		"datesPlayed":   repo.DatesPlayed(),
	})
}

// Predict predicts ?home=&away=
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	home, away := r.URL.Query().Get("home"), r.URL.Query().Get("away")
	if home == "" || away == "" {
		respondError(w, http.StatusBadRequest, "home and away are required", nil)
		return
	}
	prediction, err := h.app.Predict(r.Context(), mux.Vars(r)["leagueID"], home, away)
	if err != nil {
		respondDomainError(w, "Failed to predict match", err)
		return
	}
	respondJSON(w, http.StatusOK, prediction)
}

// PredictUpcoming predicts the upcoming fixtures, optionally ?round= and/or ?date=
func (h *Handler) PredictUpcoming(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	predictions, err := h.app.PredictUpcoming(r.Context(), mux.Vars(r)["leagueID"], q.Get("round"), q.Get("date"))
	if err != nil {
		respondDomainError(w, "Failed to predict upcoming matches", err)
		return
	}
	respondJSON(w, http.StatusOK, predictions)
}

// Backtest runs a backtest
func (h *Handler) Backtest(w http.ResponseWriter, r *http.Request) {
	report, err := h.app.Backtest(r.Context(), mux.Vars(r)["leagueID"])
	if err != nil {
		respondDomainError(w, "Failed to backtest league", err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// LastBacktest returns the last backtest of the current snapshot
func (h *Handler) LastBacktest(w http.ResponseWriter, r *http.Request) {
	report, ok := h.app.Session().LastReport(mux.Vars(r)["leagueID"])
	if !ok {
		respondError(w, http.StatusNotFound, "No backtest has been run for this league", nil)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// LeagueStatistics returns league wide statistics
func (h *Handler) LeagueStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.app.Statistics(r.Context(), mux.Vars(r)["leagueID"])
	if err != nil {
		respondDomainError(w, "Failed to calculate statistics", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// TeamRates returns a team's scoring profile
func (h *Handler) TeamRates(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	model, err := h.app.Model(r.Context(), vars["leagueID"])
	if err != nil {
		respondDomainError(w, "Failed to load fixtures", err)
		return
	}
	respondJSON(w, http.StatusOK, model.Rates(vars["team"]))
}

// TeamStatistics returns a team's statistics by venue
func (h *Handler) TeamStatistics(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	stats, err := h.app.TeamStatistics(r.Context(), vars["leagueID"], vars["team"])
	if err != nil {
		respondDomainError(w, "Failed to calculate statistics", err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Register creates a user
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	user, err := h.app.Users().Register(req.Username, req.Password, req.Email, req.Name)
	if err != nil {
		respondDomainError(w, "Failed to register user", err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// Login checks a username and password
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	user, err := h.app.Users().ValidateLogin(req.Username, req.Password)
	if err != nil {
		respondDomainError(w, "Login failed", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrLeagueNotFound), errors.Is(err, podds.ErrUnknownTeam):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateLeague), errors.Is(err, store.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalidUser):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, podds.ErrInsufficientHistory), errors.Is(err, podds.ErrNoReport),
		errors.Is(err, podds.ErrEmptyDataset):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func respondDomainError(w http.ResponseWriter, message string, err error) {
	respondError(w, statusFor(err), message, err)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]any{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}
