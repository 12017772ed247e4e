package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mafspace/mafia-backend/middleware"
	"github.com/mafspace/mafia-backend/models"
	"github.com/mafspace/mafia-backend/repositories"
	"github.com/mafspace/mafia-backend/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	gameService       services.GameService
}

func NewTournamentHandler(tournamentService services.TournamentService, gameService services.GameService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
		gameService:       gameService,
	}
}

func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ClubID      int     `json:"club_id"`
		Name        string  `json:"name"`
		Description *string `json:"description"`
		RefereeID   int     `json:"referee_id"`
		Date        string  `json:"date"`
		Type        string  `json:"type"`
		Stars       *int    `json:"stars"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Name == "" {
		badRequestResponse(w, r, errors.New("tournament name is required"))
		return
	}

	date, err := time.Parse(time.RFC3339, input.Date)
	if err != nil {
		badRequestResponse(w, r, errors.New("date must be in RFC3339 format"))
		return
	}

	tournament := &models.Tournament{
		ClubID:      input.ClubID,
		Name:        input.Name,
		Description: input.Description,
		RefereeID:   input.RefereeID,
		Date:        date,
		Type:        models.TournamentType(input.Type),
		Stars:       input.Stars,
	}
	if tournament.Type == "" {
		tournament.Type = models.TournamentDefault
	}

	if err := h.tournamentService.CreateTournament(r.Context(), middleware.CurrentUser(r.Context()), tournament); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournamentByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ListTournamentsFilter{}
	query := r.URL.Query()

	if raw := query.Get("club_id"); raw != "" {
		clubID, err := strconv.Atoi(raw)
		if err != nil {
			badRequestResponse(w, r, errors.New("invalid club_id filter"))
			return
		}
		filter.ClubID = &clubID
	}
	if raw := query.Get("status"); raw != "" {
		status := models.TournamentStatus(raw)
		switch status {
		case models.TournamentUpcoming, models.TournamentActive, models.TournamentCompleted, models.TournamentCancelled:
			filter.Status = &status
		default:
			badRequestResponse(w, r, errors.New("invalid status filter"))
			return
		}
	}
	if raw := query.Get("type"); raw != "" {
		tType := models.TournamentType(raw)
		switch tType {
		case models.TournamentDefault, models.TournamentElo:
			filter.Type = &tType
		default:
			badRequestResponse(w, r, errors.New("invalid type filter"))
			return
		}
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			badRequestResponse(w, r, errors.New("invalid limit"))
			return
		}
		filter.Limit = limit
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			badRequestResponse(w, r, errors.New("invalid offset"))
			return
		}
		filter.Offset = offset
	}

	tournaments, err := h.tournamentService.ListTournaments(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Update заменяет редактируемые поля турнира. Статус этим путём не меняется.
func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
		RefereeID   int     `json:"referee_id"`
		Date        string  `json:"date"`
		Type        string  `json:"type"`
		Stars       *int    `json:"stars"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Name == "" {
		badRequestResponse(w, r, errors.New("tournament name is required"))
		return
	}
	date, err := time.Parse(time.RFC3339, input.Date)
	if err != nil {
		badRequestResponse(w, r, errors.New("date must be in RFC3339 format"))
		return
	}

	tournament := &models.Tournament{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		RefereeID:   input.RefereeID,
		Date:        date,
		Type:        models.TournamentType(input.Type),
		Stars:       input.Stars,
	}
	if tournament.Type == "" {
		tournament.Type = models.TournamentDefault
	}

	if err := h.tournamentService.UpdateTournament(r.Context(), middleware.CurrentUser(r.Context()), tournament); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateStatus переводит турнир по машине статусов. Переход в COMPLETED
// атомарно начисляет рейтинги и статистику.
func (h *TournamentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	status := models.TournamentStatus(input.Status)
	switch status {
	case models.TournamentActive, models.TournamentCompleted, models.TournamentCancelled:
	default:
		badRequestResponse(w, r, errors.New("invalid target status"))
		return
	}

	tournament, err := h.tournamentService.UpdateTournamentStatus(r.Context(), middleware.CurrentUser(r.Context()), id, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Complete завершает турнир и возвращает финальную таблицу с изменениями ELO.
func (h *TournamentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.tournamentService.CompleteTournament(r.Context(), middleware.CurrentUser(r.Context()), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	games, err := h.gameService.ListByTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.DeleteTournament(r.Context(), middleware.CurrentUser(r.Context()), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
