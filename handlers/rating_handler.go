package handlers

import (
	"net/http"

	"github.com/mafspace/mafia-backend/services"
)

type RatingHandler struct {
	ratingService services.RatingService
}

func NewRatingHandler(ratingService services.RatingService) *RatingHandler {
	return &RatingHandler{ratingService: ratingService}
}

func (h *RatingHandler) SeasonRating(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "seasonID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.ratingService.GetSeasonRating(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rating": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RatingHandler) TournamentRating(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.ratingService.GetTournamentRating(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rating": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
