package analytics

import (
	"errors"
	"net/http"

	"github.com/imadgeboyega/kiekky-matching/internal/auth"
	"github.com/imadgeboyega/kiekky-matching/internal/common/utils"
	"github.com/imadgeboyega/kiekky-matching/internal/matching"
)

type Handler struct {
	tracker *Tracker
}

func NewHandler(tracker *Tracker) *Handler {
	return &Handler{tracker: tracker}
}

func (h *Handler) GetJourney(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	journey, err := h.tracker.Journey(r.Context(), userID)
	if err != nil {
		if errors.Is(err, matching.ErrUserNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to compute journey")
		return
	}

	utils.RespondWithData(w, http.StatusOK, journey)
}

func (h *Handler) GetEventCounts(w http.ResponseWriter, r *http.Request) {
	counts := h.tracker.Counts()
	utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"events": counts,
		"count":  len(counts),
	})
}
