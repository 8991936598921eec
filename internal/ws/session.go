package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/mirada/internal/audit"
	"github.com/saturnino-fabrica-de-software/mirada/internal/domain"
	"github.com/saturnino-fabrica-de-software/mirada/internal/service"
)

const sendBuffer = 16

// Analyzer classifies one frame
type Analyzer interface {
	Analyze(ctx context.Context, in service.AnalyzeInput) (*domain.GazeResult, error)
}

// Conn is the part of a websocket connection a session uses
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

var errTextFrame = errors.New("frames must be binary images")

// Session answers every binary frame of one connection with a gaze result
type Session struct {
	id       string
	hub      *Hub
	conn     Conn
	analyzer Analyzer
	clientIP string
	logger   *slog.Logger
	send     chan []byte
}

func NewSession(hub *Hub, conn Conn, analyzer Analyzer, clientIP string, logger *slog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:       id,
		hub:      hub,
		conn:     conn,
		analyzer: analyzer,
		clientIP: clientIP,
		logger:   logger.With("session_id", id),
		send:     make(chan []byte, sendBuffer),
	}
}

// Serve registers the session and blocks until the client disconnects
// or the hub shuts down.
func (s *Session) Serve(ctx context.Context) {
	s.hub.register(s)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writePump()
	}()

	s.readPump(ctx)
	<-done
}

func (s *Session) readPump(ctx context.Context) {
	defer func() {
		s.hub.unregister(s)
		close(s.send)
	}()

	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		result := s.handleFrame(ctx, messageType, data)
		message, err := json.Marshal(result)
		if err != nil {
			s.logger.Error("failed to encode result", "error", err)
			return
		}

		select {
		case s.send <- message:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) writePump() {
	defer func() {
		_ = s.conn.Close()
	}()

	for message := range s.send {
		if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			s.logger.Debug("write failed", "error", err)
			// drain so readPump never blocks on a dead connection
			for range s.send {
			}
			return
		}
	}
}

// handleFrame never fails: errors become error results and the loop goes on
func (s *Session) handleFrame(ctx context.Context, messageType int, data []byte) domain.GazeResult {
	if messageType != websocket.BinaryMessage {
		return domain.ErrorResult(domain.ErrValidationFailed.WithError(errTextFrame))
	}

	result, err := s.analyzer.Analyze(ctx, service.AnalyzeInput{
		Image:     data,
		Source:    audit.SourceWebSocket,
		RequestID: s.id,
		ClientIP:  s.clientIP,
	})
	if err != nil {
		return domain.ErrorResult(err)
	}
	return *result
}
