package trust

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/kiekky-matching/internal/auth"
	"github.com/imadgeboyega/kiekky-matching/internal/common/utils"
)

type Handler struct {
	system  *System
	monitor *SafetyMonitor
}

func NewHandler(system *System, monitor *SafetyMonitor) *Handler {
	return &Handler{system: system, monitor: monitor}
}

func (h *Handler) GetLevel(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	assessment, err := h.system.AssessUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to assess trust level")
		return
	}

	utils.RespondWithData(w, http.StatusOK, assessment)
}

func (h *Handler) CheckFeature(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())
	feature := mux.Vars(r)["feature"]

	allowed, level, err := h.system.CanAccessFeature(r.Context(), userID, feature)
	if err != nil {
		respondServiceError(w, err, "Failed to check feature access")
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"feature": feature,
		"allowed": allowed,
		"level":   level,
	})
}

func (h *Handler) GetRequirements(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	target, err := strconv.Atoi(r.URL.Query().Get("target"))
	if err != nil || !Level(target).Valid() {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid target level")
		return
	}

	assessment, err := h.system.AssessUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to assess trust level")
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"current_level": assessment.Level,
		"target_level":  target,
		"requirements":  RequiredVerifications(assessment.Level, Level(target)),
	})
}

func (h *Handler) RequestVerification(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	var req VerificationRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := h.system.RequestVerification(r.Context(), userID, req.VerificationType, req.Evidence)
	if err != nil {
		respondServiceError(w, err, "Failed to request verification")
		return
	}

	utils.RespondWithData(w, http.StatusCreated, v)
}

func (h *Handler) ApproveVerification(w http.ResponseWriter, r *http.Request) {
	reviewerID, _ := auth.GetUserIDFromContext(r.Context())

	userID, req, ok := reviewRequest(w, r)
	if !ok {
		return
	}

	level, err := h.system.ApproveVerification(r.Context(), userID, req.VerificationType, reviewerID)
	if err != nil {
		respondServiceError(w, err, "Failed to approve verification")
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"user_id":     userID,
		"trust_level": level,
		"name":        level.Name(),
	})
}

func (h *Handler) RejectVerification(w http.ResponseWriter, r *http.Request) {
	reviewerID, _ := auth.GetUserIDFromContext(r.Context())

	userID, req, ok := reviewRequest(w, r)
	if !ok {
		return
	}

	if err := h.system.RejectVerification(r.Context(), userID, req.VerificationType, reviewerID, req.Reason); err != nil {
		respondServiceError(w, err, "Failed to reject verification")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Verification rejected",
	})
}

func (h *Handler) GetSafetyReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.PathInt64(r, "userId")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	report, err := h.monitor.MonitorUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "Failed to monitor user")
		return
	}

	utils.RespondWithData(w, http.StatusOK, report)
}

func (h *Handler) TriggerEmergency(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	var req EmergencyDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	eventID := h.monitor.TriggerEmergency(r.Context(), userID, req.EmergencyType, req.Details)
	utils.RespondWithData(w, http.StatusAccepted, map[string]interface{}{
		"event_id": eventID,
	})
}

func reviewRequest(w http.ResponseWriter, r *http.Request) (int64, ReviewDTO, bool) {
	var req ReviewDTO
	userID, ok := utils.PathInt64(r, "userId")
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return 0, req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return 0, req, false
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return 0, req, false
	}
	return userID, req, true
}

func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrVerificationNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrUnknownVerificationType):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSelfReview):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
