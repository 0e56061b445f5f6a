package api

import (
	"net/http"

	"parcel-tracking-service/internal/api/handlers"
	"parcel-tracking-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(watches *services.WatchList, tracker *services.Tracker) http.Handler {
	mux := http.NewServeMux()

	trackHandler := &handlers.TrackHandler{Tracker: tracker}
	watchHandler := &handlers.WatchHandler{Watches: watches}
	orgHandler := &handlers.OrgHandler{Watches: watches}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/track", trackHandler.Track)
	mux.HandleFunc("/watches", watchHandler.Handle)
	mux.HandleFunc("/orgs", orgHandler.Delete)
	mux.HandleFunc("/orgs/target", orgHandler.SetTarget)

	return loggingMiddleware(mux)
}
