package trust

import (
	"github.com/gorilla/mux"

	"github.com/imadgeboyega/kiekky-matching/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/trust").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Levels
	api.HandleFunc("/level", handler.GetLevel).Methods("GET")
	api.HandleFunc("/features/{feature}", handler.CheckFeature).Methods("GET")
	api.HandleFunc("/requirements", handler.GetRequirements).Methods("GET")

	// Verification workflow
	api.HandleFunc("/verifications", handler.RequestVerification).Methods("POST")
	api.HandleFunc("/verifications/{userId}/approve", handler.ApproveVerification).Methods("POST")
	api.HandleFunc("/verifications/{userId}/reject", handler.RejectVerification).Methods("POST")

	// Safety
	api.HandleFunc("/safety/{userId}", handler.GetSafetyReport).Methods("GET")
	api.HandleFunc("/emergency", handler.TriggerEmergency).Methods("POST")
}
