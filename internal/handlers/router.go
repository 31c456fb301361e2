package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the HTTP surface.
func NewRouter(ingest *IngestHandler, query *QueryHandler, dashboard *DashboardHandler) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/data", ingest).Methods(http.MethodPost)
	r.Handle("/query", query).Methods(http.MethodGet)
	r.Handle("/", dashboard).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
