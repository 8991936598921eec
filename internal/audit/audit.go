package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of auditable event
type EventType string

const (
	EventGazeClassified EventType = "GAZE_CLASSIFIED"
	EventGazeRejected   EventType = "GAZE_REJECTED"
)

// Source identifies the surface a frame arrived through
type Source string

const (
	SourceUpload    Source = "upload"
	SourceWebSocket Source = "websocket"
)

// Event records one classification attempt. No image data is kept.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	EventType   EventType `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	Source      Source    `json:"source"`
	Detector    string    `json:"detector"`
	Direction   string    `json:"direction"`
	Command     string    `json:"command,omitempty"`
	DX          *float64  `json:"dx,omitempty"`
	DY          *float64  `json:"dy,omitempty"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	ImageWidth  int       `json:"image_width,omitempty"`
	ImageHeight int       `json:"image_height,omitempty"`
	LatencyMs   int64     `json:"latency_ms"`
	IPAddress   string    `json:"ip_address,omitempty"`
}

// Logger defines the interface for audit logging
type Logger interface {
	Log(ctx context.Context, event Event) error
}

// normalize fills ID and Timestamp when the caller left them empty
func normalize(event Event) Event {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.EventType == "" {
		event.EventType = EventGazeClassified
		if !event.Success {
			event.EventType = EventGazeRejected
		}
	}
	return event
}

// SlogLogger implements Logger using slog
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a new audit logger using slog
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{
		logger: logger.With("component", "audit"),
	}
}

// Log records an audit event
func (l *SlogLogger) Log(ctx context.Context, event Event) error {
	event = normalize(event)

	eventJSON, err := json.Marshal(event)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to marshal audit event",
			slog.String("error", err.Error()),
			slog.String("event_type", string(event.EventType)),
		)
		return err
	}

	l.logger.InfoContext(ctx, "audit_event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.EventType)),
		slog.String("request_id", event.RequestID),
		slog.String("detector", event.Detector),
		slog.String("direction", event.Direction),
		slog.Bool("success", event.Success),
		slog.Int64("latency_ms", event.LatencyMs),
		slog.String("event_data", string(eventJSON)),
	)

	return nil
}

// NoOpLogger is a logger that does nothing (for testing or when audit is disabled)
type NoOpLogger struct{}

// Log does nothing and returns nil
func (l *NoOpLogger) Log(_ context.Context, _ Event) error {
	return nil
}
