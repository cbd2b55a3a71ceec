package matching

import (
	"github.com/gorilla/mux"

	"github.com/imadgeboyega/kiekky-matching/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/matching").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Feature vectors
	api.HandleFunc("/vector", handler.GetVector).Methods("GET")
	api.HandleFunc("/vector/refresh", handler.RefreshVector).Methods("POST")

	// Scoring
	api.HandleFunc("/compatibility/{userId}", handler.GetCompatibility).Methods("GET")
	api.HandleFunc("/suggestions", handler.RequestSuggestions).Methods("POST")
}
