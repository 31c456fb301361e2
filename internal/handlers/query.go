package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"tiltwatch/internal/logger"
	"tiltwatch/internal/models"
	"tiltwatch/internal/pipeline"
	"tiltwatch/internal/storage"
)

// QueryHandler serves the recent-window query.
type QueryHandler struct {
	query *pipeline.Query
	log   zerolog.Logger
}

func NewQueryHandler(q *pipeline.Query) *QueryHandler {
	return &QueryHandler{
		query: q,
		log:   logger.WithComponent("query"),
	}
}

// recordResponse is the wire shape of one persisted record.
type recordResponse struct {
	ID         int64    `json:"id"`
	AngleX     *float64 `json:"angle_x"`
	AngleY     *float64 `json:"angle_y"`
	UVIndex    *float64 `json:"uvi"`
	Smoke      *float64 `json:"smoke"`
	AlertFlag  bool     `json:"alert_flag"`
	AlertEmail *string  `json:"alert_email"`
	Timestamp  string   `json:"timestamp"`
}

// ServeHTTP handles GET /query.
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	records, err := h.query.Recent(r.Context(), pipeline.DefaultRecentLimit)
	if err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			writeError(w, http.StatusInternalServerError, "database query failed")
			return
		}
		h.log.Error().Err(err).Msg("recent query failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	payload := make([]recordResponse, len(records))
	for i, rec := range records {
		payload[i] = toRecordResponse(rec)
	}
	writeJSON(w, http.StatusOK, payload)
}

func toRecordResponse(rec models.Record) recordResponse {
	return recordResponse{
		ID:         rec.ID,
		AngleX:     rec.AngleX,
		AngleY:     rec.AngleY,
		UVIndex:    rec.UVIndex,
		Smoke:      rec.Smoke,
		AlertFlag:  rec.AlertFlag,
		AlertEmail: rec.AlertEmail,
		Timestamp:  rec.Timestamp.Format(models.TimeFormat),
	}
}
