package dating

import (
	"net/http"

	"github.com/imadgeboyega/kiekky-matching/internal/auth"
	"github.com/imadgeboyega/kiekky-matching/internal/common/utils"
)

type Handler struct {
	ranker       *Ranker
	defaultLimit int
}

func NewHandler(ranker *Ranker) *Handler {
	return &Handler{ranker: ranker, defaultLimit: ranker.cfg.Limit}
}

func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	query := parseRecommendationQuery(r, h.defaultLimit)
	if err := utils.ValidateStruct(query); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ranked, err := h.ranker.Recommend(r.Context(), userID, query.options())
	if err != nil {
		if IsNotFound(err) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get recommendations")
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"recommendations": ranked,
		"count":           len(ranked),
	})
}
