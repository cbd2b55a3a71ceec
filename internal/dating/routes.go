package dating

import (
	"github.com/gorilla/mux"

	"github.com/imadgeboyega/kiekky-matching/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/dating").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Discovery
	api.HandleFunc("/recommendations", handler.GetRecommendations).Methods("GET")
}
