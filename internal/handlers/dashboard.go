package handlers

import (
	_ "embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"tiltwatch/internal/logger"
	"tiltwatch/internal/models"
	"tiltwatch/internal/pipeline"
)

//go:embed templates/dashboard.html
var dashboardHTML string

var dashboardTmpl = template.Must(template.New("dashboard").Parse(dashboardHTML))

// DashboardHandler renders the recent window as an HTML page. When the store
// is unreachable the page renders with an empty table instead of failing.
type DashboardHandler struct {
	query *pipeline.Query
	log   zerolog.Logger
}

func NewDashboardHandler(q *pipeline.Query) *DashboardHandler {
	return &DashboardHandler{
		query: q,
		log:   logger.WithComponent("dashboard"),
	}
}

type dashboardRow struct {
	ID         int64
	AngleX     string
	AngleY     string
	UVIndex    string
	Smoke      string
	AlertFlag  bool
	AlertEmail string
	Timestamp  string
}

type dashboardData struct {
	Rows []dashboardRow
}

// ServeHTTP handles GET /.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	records, err := h.query.Recent(r.Context(), pipeline.DefaultRecentLimit)
	if err != nil {
		h.log.Error().Err(err).Msg("dashboard query failed, rendering empty page")
		records = nil
	}

	data := dashboardData{Rows: make([]dashboardRow, len(records))}
	for i, rec := range records {
		data.Rows[i] = toDashboardRow(rec)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, data); err != nil {
		h.log.Error().Err(err).Msg("dashboard render failed")
	}
}

func toDashboardRow(rec models.Record) dashboardRow {
	row := dashboardRow{
		ID:        rec.ID,
		AngleX:    formatCell(rec.AngleX),
		AngleY:    formatCell(rec.AngleY),
		UVIndex:   formatCell(rec.UVIndex),
		Smoke:     formatCell(rec.Smoke),
		AlertFlag: rec.AlertFlag,
		Timestamp: rec.Timestamp.Format(models.TimeFormat),
	}
	if rec.AlertEmail != nil {
		row.AlertEmail = *rec.AlertEmail
	}
	return row
}

func formatCell(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
