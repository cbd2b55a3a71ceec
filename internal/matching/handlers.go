package matching

import (
	"errors"
	"net/http"

	"github.com/imadgeboyega/kiekky-matching/internal/auth"
	"github.com/imadgeboyega/kiekky-matching/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetVector(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	vector, err := h.service.Vector(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to get feature vector")
		return
	}

	utils.RespondWithData(w, http.StatusOK, vector)
}

func (h *Handler) RefreshVector(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	vector, err := h.service.Refresh(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to refresh feature vector")
		return
	}

	utils.RespondWithData(w, http.StatusOK, vector)
}

func (h *Handler) GetCompatibility(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	otherID, ok := utils.PathInt64(r, "userId")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	score, err := h.service.Compatibility(r.Context(), userID, otherID)
	if err != nil {
		respondServiceError(w, err, "Failed to compute compatibility")
		return
	}

	utils.RespondWithData(w, http.StatusOK, score)
}

func (h *Handler) RequestSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	eventID, err := h.service.RequestSuggestions(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to queue suggestions")
		return
	}

	utils.RespondWithData(w, http.StatusAccepted, map[string]interface{}{
		"event_id": eventID,
		"status":   "queued",
	})
}

func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, ErrUserNotFound) {
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	utils.RespondWithError(w, http.StatusInternalServerError, fallback)
}
