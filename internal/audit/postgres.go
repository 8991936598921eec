package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the audit table needs (also satisfied by pgxmock)
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

// PostgresLogger appends events to the gaze_events table
type PostgresLogger struct {
	db DB
}

func NewPostgresLogger(db DB) *PostgresLogger {
	return &PostgresLogger{db: db}
}

func (l *PostgresLogger) Log(ctx context.Context, event Event) error {
	event = normalize(event)

	query := `
		INSERT INTO gaze_events (
			id, created_at, event_type, request_id, source, detector,
			direction, command, dx, dy, success, error,
			image_width, image_height, latency_ms, ip_address
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := l.db.Exec(ctx, query,
		event.ID,
		event.Timestamp,
		string(event.EventType),
		event.RequestID,
		string(event.Source),
		event.Detector,
		event.Direction,
		event.Command,
		event.DX,
		event.DY,
		event.Success,
		event.Error,
		event.ImageWidth,
		event.ImageHeight,
		event.LatencyMs,
		event.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("insert gaze event: %w", err)
	}
	return nil
}

// MultiLogger fans an event out to several loggers and returns the first error
type MultiLogger []Logger

func (m MultiLogger) Log(ctx context.Context, event Event) error {
	event = normalize(event)

	var first error
	for _, l := range m {
		if err := l.Log(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
