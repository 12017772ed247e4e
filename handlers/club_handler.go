package handlers

import (
	"errors"
	"net/http"

	"github.com/mafspace/mafia-backend/middleware"
	"github.com/mafspace/mafia-backend/models"
	"github.com/mafspace/mafia-backend/services"
)

type ClubHandler struct {
	clubService services.ClubService
}

func NewClubHandler(clubService services.ClubService) *ClubHandler {
	return &ClubHandler{clubService: clubService}
}

func (h *ClubHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club := &models.Club{
		Name:        input.Name,
		Description: input.Description,
	}
	if err := h.clubService.CreateClub(r.Context(), middleware.CurrentUser(r.Context()), club); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	club, err := h.clubService.GetClubByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) RequestToJoin(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	request, err := h.clubService.RequestToJoin(r.Context(), middleware.CurrentUser(r.Context()), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"request": request}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var status *models.ClubRequestStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.ClubRequestStatus(raw)
		switch s {
		case models.ClubRequestPending, models.ClubRequestApproved, models.ClubRequestRejected:
			status = &s
		default:
			badRequestResponse(w, r, errors.New("invalid status filter"))
			return
		}
	}

	requests, err := h.clubService.ListRequests(r.Context(), middleware.CurrentUser(r.Context()), id, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"requests": requests}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "requestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.clubService.ApproveRequest(r.Context(), middleware.CurrentUser(r.Context()), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "request approved"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "requestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.clubService.RejectRequest(r.Context(), middleware.CurrentUser(r.Context()), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "request rejected"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	id, err := readIDParam(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("Content-Type header is required"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	club, err := h.clubService.UploadLogo(r.Context(), middleware.CurrentUser(r.Context()), id, contentType, r.Body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"club": club}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
