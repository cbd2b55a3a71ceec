package analytics

import (
	"github.com/gorilla/mux"

	"github.com/imadgeboyega/kiekky-matching/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/analytics").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/journey", handler.GetJourney).Methods("GET")
	api.HandleFunc("/events", handler.GetEventCounts).Methods("GET")
}
