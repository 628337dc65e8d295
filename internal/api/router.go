package api

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/erazemk/najdeno/internal/items"
	"github.com/erazemk/najdeno/internal/upload"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(repo *items.Repository, sink upload.Sink, logger logrus.FieldLogger) http.Handler {
	mux := http.NewServeMux()

	itemsHandler := &ItemsHandler{Items: repo, Uploads: sink, Log: logger}
	healthHandler := &HealthHandler{Items: repo, Log: logger}

	mux.HandleFunc("POST /api/upload", itemsHandler.Upload)

	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("PUT /api/items/{id}", itemsHandler.Update)
	mux.HandleFunc("PUT /api/items/{id}/returned", itemsHandler.MarkReturned)
	mux.HandleFunc("DELETE /api/items/{id}", itemsHandler.Delete)

	mux.HandleFunc("GET /api/health", healthHandler.Check)

	return mux
}
