package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"padel-tracker/internal/config"
	"padel-tracker/internal/domain"
	"padel-tracker/internal/repository"
	"padel-tracker/internal/service"

	"github.com/rs/zerolog"
)

// TrackerServer is the JSON/HTTP surface over the core services. Admin
// endpoints (recalculation, reset) sit behind a bearer token from config and
// are disabled entirely when no token is configured.
type TrackerServer struct {
	playerSvc  *service.PlayerService
	ratingSvc  *service.RatingService
	ledgerSvc  *service.LedgerService
	recalcSvc  *service.RecalcService
	adminToken string
	logger     zerolog.Logger
}

func NewTrackerServer(playerSvc *service.PlayerService, ratingSvc *service.RatingService, ledgerSvc *service.LedgerService, recalcSvc *service.RecalcService, cfg *config.Config, logger zerolog.Logger) *TrackerServer {
	return &TrackerServer{
		playerSvc:  playerSvc,
		ratingSvc:  ratingSvc,
		ledgerSvc:  ledgerSvc,
		recalcSvc:  recalcSvc,
		adminToken: cfg.AdminToken,
		logger:     logger,
	}
}

func (s *TrackerServer) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/players", s.handleCreatePlayer)
	mux.HandleFunc("GET /api/players", s.handleListPlayers)
	mux.HandleFunc("GET /api/players/{id}", s.handleGetPlayer)
	mux.HandleFunc("GET /api/players/{id}/matches", s.handlePlayerMatches)

	mux.HandleFunc("POST /api/matches", s.handleRecordMatch)
	mux.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /api/report", s.handleReport)

	mux.HandleFunc("POST /api/admin/recalculate", s.requireAdmin(s.handleRecalculate))
	mux.HandleFunc("POST /api/admin/reset", s.requireAdmin(s.handleReset))

	return mux
}

func (s *TrackerServer) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken == "" {
			writeError(w, http.StatusForbidden, service.ErrAdminDisabled.Error())
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+s.adminToken {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

func (s *TrackerServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createPlayerRequest struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

func (s *TrackerServer) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	player, err := s.playerSvc.Create(r.Context(), req.Username, req.IsAdmin)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toPlayerResponse(player))
}

func (s *TrackerServer) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.playerSvc.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]playerResponse, len(players))
	for i := range players {
		resp[i] = toPlayerResponse(&players[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *TrackerServer) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := s.playerSvc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlayerResponse(player))
}

func (s *TrackerServer) handlePlayerMatches(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	matches, err := s.ratingSvc.History(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]matchResponse, len(matches))
	for i := range matches {
		resp[i] = toMatchResponse(&matches[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

type recordMatchRequest struct {
	TeamA  [2]string `json:"team_a"`
	TeamB  [2]string `json:"team_b"`
	ScoreA int       `json:"score_a"`
	ScoreB int       `json:"score_b"`
}

func (s *TrackerServer) handleRecordMatch(w http.ResponseWriter, r *http.Request) {
	var req recordMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	match, err := s.ratingSvc.RecordMatch(r.Context(), service.MatchInput{
		TeamA:  req.TeamA,
		TeamB:  req.TeamB,
		ScoreA: req.ScoreA,
		ScoreB: req.ScoreB,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMatchResponse(match))
}

func (s *TrackerServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.playerSvc.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *TrackerServer) handleReport(w http.ResponseWriter, r *http.Request) {
	year, quarter, ok := yearQuarterParams(w, r)
	if !ok {
		return
	}

	report, err := s.ledgerSvc.QuarterReport(r.Context(), year, quarter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *TrackerServer) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	year, quarter, ok := yearQuarterParams(w, r)
	if !ok {
		return
	}

	if err := s.recalcSvc.RecalculateQuarter(r.Context(), year, quarter); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recalculated"})
}

func (s *TrackerServer) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.recalcSvc.ResetSystem(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func yearQuarterParams(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 {
		writeError(w, http.StatusBadRequest, "valid year parameter is required")
		return 0, 0, false
	}
	quarter, err := strconv.Atoi(r.URL.Query().Get("quarter"))
	if err != nil || quarter < 0 || quarter > 3 {
		writeError(w, http.StatusBadRequest, "quarter parameter must be 0-3")
		return 0, 0, false
	}
	return year, quarter, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTiedScore),
		errors.Is(err, service.ErrScoreOutOfRange),
		errors.Is(err, service.ErrDuplicatePlayers):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

type playerResponse struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Rating       int       `json:"rating"`
	LastActivity time.Time `json:"last_activity"`
}

func toPlayerResponse(p *domain.Player) playerResponse {
	return playerResponse{
		ID:           p.ID,
		Username:     p.Username,
		Rating:       p.Rating,
		LastActivity: p.LastActivity,
	}
}

type sideResponse struct {
	PlayerID     string `json:"player_id"`
	Team         string `json:"team"`
	RatingBefore int    `json:"rating_before"`
	RatingAfter  int    `json:"rating_after"`
	RatingDelta  int    `json:"rating_delta"`
}

type matchResponse struct {
	ID          string         `json:"id"`
	ScoreA      int            `json:"score_a"`
	ScoreB      int            `json:"score_b"`
	TeamRatingA float64        `json:"team_rating_a"`
	TeamRatingB float64        `json:"team_rating_b"`
	Winner      string         `json:"winner"`
	CreatedAt   time.Time      `json:"created_at"`
	Sides       []sideResponse `json:"sides"`
}

func toMatchResponse(m *domain.Match) matchResponse {
	resp := matchResponse{
		ID:          m.ID,
		ScoreA:      m.ScoreA,
		ScoreB:      m.ScoreB,
		TeamRatingA: m.TeamRatingA,
		TeamRatingB: m.TeamRatingB,
		Winner:      m.Winner,
		CreatedAt:   m.CreatedAt,
	}
	for _, s := range m.Sides {
		resp.Sides = append(resp.Sides, sideResponse{
			PlayerID:     s.PlayerID,
			Team:         s.Team,
			RatingBefore: s.RatingBefore,
			RatingAfter:  s.RatingAfter,
			RatingDelta:  s.RatingDelta,
		})
	}
	return resp
}
