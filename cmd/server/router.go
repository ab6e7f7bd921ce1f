package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/popeskul/waha-sync/internal/api"
)

func setupRouter(handler api.ServerInterface, wsHandler http.Handler, enableWS bool) http.Handler {
	r := chi.NewRouter()

	// Serve OpenAPI spec
	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, "api/openapi.yaml")
	})

	r.Handle("/metrics", promhttp.Handler())

	if enableWS {
		r.Get("/ws", wsHandler.ServeHTTP)
	}

	// Mount API routes
	r.Mount("/", api.Handler(handler))

	return r
}
