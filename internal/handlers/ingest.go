package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/rs/zerolog"

	"tiltwatch/internal/logger"
	"tiltwatch/internal/metrics"
	"tiltwatch/internal/models"
	"tiltwatch/internal/pipeline"
	"tiltwatch/internal/storage"
)

// maxBodySize bounds the inbound payload; a telemetry sample is tiny.
const maxBodySize = 1 << 20 // 1MB

// IngestHandler handles telemetry sample ingestion via HTTP
type IngestHandler struct {
	pipeline *pipeline.Pipeline
	log      zerolog.Logger
}

func NewIngestHandler(p *pipeline.Pipeline) *IngestHandler {
	return &IngestHandler{
		pipeline: p,
		log:      logger.WithComponent("ingest"),
	}
}

// messageResponse is the success envelope returned to the device.
type messageResponse struct {
	Message string `json:"message"`
}

// ServeHTTP handles POST /data.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Parameters like charset=utf-8 are fine; only the mimetype matters.
	if contentType := r.Header.Get("Content-Type"); contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != "application/json" {
			writeError(w, http.StatusUnsupportedMediaType, "content-type must be application/json")
			return
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	sample, err := models.DecodeSample(r.Body)
	if err != nil {
		metrics.SamplesTotal.WithLabelValues("rejected").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, rec, err := h.pipeline.Ingest(r.Context(), sample)
	if err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			writeError(w, http.StatusInternalServerError, "database insertion failed")
			return
		}
		h.log.Error().Err(err).Msg("ingest failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch outcome {
	case pipeline.OutcomePersisted:
		h.log.Info().Int64("record_id", rec.ID).Bool("alert", rec.AlertFlag).Msg("sample persisted")
		writeJSON(w, http.StatusCreated, messageResponse{Message: "Data updated and alert processed"})
	default:
		writeJSON(w, http.StatusOK, messageResponse{Message: "No change detected"})
	}
}

// errorResponse is the error envelope for all handlers.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
