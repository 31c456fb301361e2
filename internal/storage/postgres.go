package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"tiltwatch/internal/logger"
	"tiltwatch/internal/metrics"
	"tiltwatch/internal/models"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS telemetry_samples (
    id          SERIAL PRIMARY KEY,
    angle_x     DOUBLE PRECISION,
    angle_y     DOUBLE PRECISION,
    uvi         DOUBLE PRECISION,
    smoke       DOUBLE PRECISION,
    alert_flag  BOOLEAN NOT NULL DEFAULT FALSE,
    alert_email TEXT,
    timestamp   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

const insertSampleSQL = `
INSERT INTO telemetry_samples (angle_x, angle_y, uvi, smoke, alert_flag, alert_email)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, timestamp`

const recentSamplesSQL = `
SELECT id, angle_x, angle_y, uvi, smoke, alert_flag, alert_email, timestamp
FROM telemetry_samples
ORDER BY id DESC
LIMIT $1`

// Postgres implements Store on top of lib/pq. *sql.DB is safe for
// concurrent use, so one Postgres value is shared by all requests.
type Postgres struct {
	db      *sql.DB
	timeout time.Duration
	log     zerolog.Logger
}

// NewPostgres opens a connection pool for dsn. Statements run with the given
// per-operation timeout so a slow store cannot stall ingestion indefinitely.
func NewPostgres(dsn string, timeout time.Duration) (*Postgres, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL is required", ErrUnavailable)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	db, err := sql.Open("postgres", NormalizeDSN(dsn))
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrUnavailable, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &Postgres{
		db:      db,
		timeout: timeout,
		log:     logger.WithComponent("postgres"),
	}, nil
}

// NormalizeDSN appends sslmode=require to URL-style DSNs that do not pick
// one, except against localhost where TLS is pointless for local dev.
func NormalizeDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Host == "" {
		return dsn
	}
	q := u.Query()
	if q.Get("sslmode") != "" {
		return dsn
	}
	if strings.Contains(u.Host, "localhost") || strings.Contains(u.Host, "127.0.0.1") {
		q.Set("sslmode", "disable")
	} else {
		q.Set("sslmode", "require")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// EnsureSchema creates the samples table if it does not exist. Idempotent;
// called once at startup.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if _, err := p.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("%w: create table: %v", ErrUnavailable, err)
	}
	return nil
}

// Insert appends one record and returns it with the store-assigned id and
// timestamp.
func (p *Postgres) Insert(ctx context.Context, s models.Sample, alertFlag bool) (models.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var email sql.NullString
	if s.AlertEmail != "" {
		email = sql.NullString{String: s.AlertEmail, Valid: true}
	}

	start := time.Now()
	row := p.db.QueryRowContext(ctx, insertSampleSQL,
		nullFloat(s.AngleX), nullFloat(s.AngleY), nullFloat(s.UVIndex), nullFloat(s.Smoke),
		alertFlag, email,
	)

	rec := models.Record{
		AngleX:    s.AngleX,
		AngleY:    s.AngleY,
		UVIndex:   s.UVIndex,
		Smoke:     s.Smoke,
		AlertFlag: alertFlag,
	}
	if email.Valid {
		rec.AlertEmail = &email.String
	}

	err := row.Scan(&rec.ID, &rec.Timestamp)
	metrics.DBWriteDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DBErrorsTotal.WithLabelValues("insert").Inc()
		p.logFailure("insert sample", err)
		return models.Record{}, fmt.Errorf("%w: insert sample: %v", ErrUnavailable, err)
	}

	return rec, nil
}

// Recent returns up to limit records, newest first by id.
func (p *Postgres) Recent(ctx context.Context, limit int) ([]models.Record, error) {
	if limit <= 0 {
		limit = 10
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	rows, err := p.db.QueryContext(ctx, recentSamplesSQL, limit)
	metrics.DBQueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DBErrorsTotal.WithLabelValues("query").Inc()
		p.logFailure("query recent", err)
		return nil, fmt.Errorf("%w: query recent: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	records := make([]models.Record, 0, limit)
	for rows.Next() {
		var (
			rec                        models.Record
			angleX, angleY, uvi, smoke sql.NullFloat64
			email                      sql.NullString
		)
		if err := rows.Scan(&rec.ID, &angleX, &angleY, &uvi, &smoke, &rec.AlertFlag, &email, &rec.Timestamp); err != nil {
			metrics.DBErrorsTotal.WithLabelValues("query").Inc()
			return nil, fmt.Errorf("%w: scan record: %v", ErrUnavailable, err)
		}
		rec.AngleX = floatPtr(angleX)
		rec.AngleY = floatPtr(angleY)
		rec.UVIndex = floatPtr(uvi)
		rec.Smoke = floatPtr(smoke)
		if email.Valid {
			rec.AlertEmail = &email.String
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		metrics.DBErrorsTotal.WithLabelValues("query").Inc()
		return nil, fmt.Errorf("%w: iterate records: %v", ErrUnavailable, err)
	}

	return records, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// logFailure logs a storage error with the Postgres SQLSTATE when available.
func (p *Postgres) logFailure(op string, err error) {
	evt := p.log.Error().Err(err).Str("op", op)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		evt = evt.Str("sqlstate", string(pqErr.Code)).Str("detail", pqErr.Detail)
	}
	evt.Msg("storage operation failed")
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

var _ Store = (*Postgres)(nil)
