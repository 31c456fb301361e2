// Package pipeline orchestrates sample ingestion: change gate, threshold
// evaluation, persistence, and best-effort notification, in that order,
// each attempted once per request.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"tiltwatch/internal/alert"
	"tiltwatch/internal/detector"
	"tiltwatch/internal/logger"
	"tiltwatch/internal/metrics"
	"tiltwatch/internal/models"
	"tiltwatch/internal/notify"
	"tiltwatch/internal/storage"
)

// Outcome is the terminal state of one ingestion request.
type Outcome int

const (
	// OutcomeUnchanged means the sample matched the last accepted one and
	// produced no side effects.
	OutcomeUnchanged Outcome = iota
	// OutcomePersisted means the sample was accepted and recorded.
	OutcomePersisted
)

// Pipeline runs the ingestion sequence for each inbound sample.
type Pipeline struct {
	gate      *detector.Detector
	evaluator *alert.Evaluator
	store     storage.Store
	mailer    notify.Mailer
	log       zerolog.Logger
}

func New(gate *detector.Detector, evaluator *alert.Evaluator, store storage.Store, mailer notify.Mailer) *Pipeline {
	return &Pipeline{
		gate:      gate,
		evaluator: evaluator,
		store:     store,
		mailer:    mailer,
		log:       logger.WithComponent("pipeline"),
	}
}

// Ingest processes one decoded sample. The change gate stays held across
// the insert, and the baseline advances only after the insert succeeds, so
// a storage failure leaves the gate where it was and an identical resend is
// tried again instead of silently dropped. Notification failures never
// affect the outcome or the record.
func (p *Pipeline) Ingest(ctx context.Context, s models.Sample) (Outcome, models.Record, error) {
	var (
		rec  models.Record
		flag bool
	)

	accepted, err := p.gate.Accept(s, func() error {
		flag = p.evaluator.Evaluate(s)
		r, err := p.store.Insert(ctx, s, flag)
		if err != nil {
			return err
		}
		rec = r
		return nil
	})
	if err != nil {
		metrics.SamplesTotal.WithLabelValues("failed").Inc()
		return OutcomeUnchanged, models.Record{}, fmt.Errorf("persist sample: %w", err)
	}
	if !accepted {
		metrics.SamplesTotal.WithLabelValues("unchanged").Inc()
		p.log.Debug().Msg("sample unchanged, skipped")
		return OutcomeUnchanged, models.Record{}, nil
	}

	metrics.SamplesTotal.WithLabelValues("persisted").Inc()

	if flag {
		metrics.AlertsTotal.Inc()
		p.notify(ctx, s, rec)
	}

	return OutcomePersisted, rec, nil
}

// notify attempts the alert email once. Any failure is logged and counted,
// never propagated: the persisted row is the authoritative record.
func (p *Pipeline) notify(ctx context.Context, s models.Sample, rec models.Record) {
	if s.AlertEmail == "" {
		metrics.EmailsTotal.WithLabelValues("skipped").Inc()
		return
	}

	subject := "Telemetry alert: threshold exceeded"
	if err := p.mailer.SendAlert(ctx, s.AlertEmail, subject, alertBody(rec)); err != nil {
		metrics.EmailsTotal.WithLabelValues("failed").Inc()
		p.log.Warn().
			Err(err).
			Int64("record_id", rec.ID).
			Str("recipient", s.AlertEmail).
			Msg("alert email failed")
		return
	}
	metrics.EmailsTotal.WithLabelValues("sent").Inc()
}

func alertBody(rec models.Record) string {
	var b strings.Builder
	b.WriteString("A telemetry reading crossed an alert threshold.\n\n")
	fmt.Fprintf(&b, "angle_x: %s\n", formatReading(rec.AngleX))
	fmt.Fprintf(&b, "angle_y: %s\n", formatReading(rec.AngleY))
	fmt.Fprintf(&b, "uvi:     %s\n", formatReading(rec.UVIndex))
	fmt.Fprintf(&b, "smoke:   %s\n", formatReading(rec.Smoke))
	fmt.Fprintf(&b, "\nrecorded at %s (record %d)\n", rec.Timestamp.Format(models.TimeFormat), rec.ID)
	return b.String()
}

func formatReading(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%g", *v)
}
