package handler

import (
	"net/http"

	"github.com/mcoot/seabattle/internal/api/apierr"
	"github.com/mcoot/seabattle/internal/api/request"
	"github.com/mcoot/seabattle/internal/api/response"
	"github.com/mcoot/seabattle/internal/services/leaderboard"
)

// WinnersHandler serves the leaderboard
type WinnersHandler struct {
	leaderboard *leaderboard.Service
}

// NewWinnersHandler creates a new winners handler
func NewWinnersHandler(leaderboardService *leaderboard.Service) *WinnersHandler {
	return &WinnersHandler{leaderboard: leaderboardService}
}

// List handles GET /api/v1/winners
func (h *WinnersHandler) List(w http.ResponseWriter, r *http.Request) {
	query, err := request.ParseWinnersQuery(r)
	if err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError(err.Error()))
		return
	}

	standings, err := h.leaderboard.Snapshot(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	if query.Limit > 0 && len(standings) > query.Limit {
		standings = standings[:query.Limit]
	}

	response.JSON(w, http.StatusOK, response.StandingsFromModel(standings))
}
