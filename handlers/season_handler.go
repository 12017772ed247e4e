package handlers

import (
	"net/http"
	"time"

	"github.com/mafspace/mafia-backend/middleware"
	"github.com/mafspace/mafia-backend/models"
	"github.com/mafspace/mafia-backend/services"
)

type SeasonHandler struct {
	seasonService services.SeasonService
	gameService   services.GameService
}

func NewSeasonHandler(seasonService services.SeasonService, gameService services.GameService) *SeasonHandler {
	return &SeasonHandler{seasonService: seasonService, gameService: gameService}
}

func (h *SeasonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ClubID    int        `json:"club_id"`
		Name      string     `json:"name"`
		RefereeID int        `json:"referee_id"`
		StartedAt *time.Time `json:"started_at"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	season := &models.Season{
		ClubID:    input.ClubID,
		Name:      input.Name,
		RefereeID: input.RefereeID,
	}
	if input.StartedAt != nil {
		season.StartedAt = *input.StartedAt
	}

	if err := h.seasonService.CreateSeason(r.Context(), middleware.CurrentUser(r.Context()), season); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"season": season}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeasonHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	season, err := h.seasonService.GetSeasonByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"season": season}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeasonHandler) ListByClub(w http.ResponseWriter, r *http.Request) {
	clubID, err := readIDParam(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	seasons, err := h.seasonService.ListByClub(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"seasons": seasons}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeasonHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.seasonService.CloseSeason(r.Context(), middleware.CurrentUser(r.Context()), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "season closed"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SeasonHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	games, err := h.gameService.ListBySeason(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
