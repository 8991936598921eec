package domain

import (
	"errors"
	"fmt"
)

// Direction is the gaze/eye-state label. Its value is the wire string.
type Direction string

const (
	DirectionRight      Direction = "right"
	DirectionLeft       Direction = "left"
	DirectionUp         Direction = "up"
	DirectionCenter     Direction = "center"
	DirectionEyesClosed Direction = "eyes-closed"
	DirectionError      Direction = "error"
)

// Command vocabulary of the communication aid.
const (
	CommandYes    = "yes"
	CommandNo     = "no"
	CommandHelp   = "help"
	CommandCenter = "center"
	CommandThanks = "thanks"
)

var directionCommands = map[Direction]string{
	DirectionRight:      CommandYes,
	DirectionLeft:       CommandNo,
	DirectionUp:         CommandHelp,
	DirectionCenter:     CommandCenter,
	DirectionEyesClosed: CommandThanks,
}

var directionMessages = map[Direction]string{
	DirectionRight:      "Detected that you are looking RIGHT (command: YES).",
	DirectionLeft:       "Detected that you are looking LEFT (command: NO).",
	DirectionUp:         "Detected that you are looking UP (command: HELP).",
	DirectionCenter:     "Detected that your gaze is CENTERED (command: CENTER).",
	DirectionEyesClosed: "Detected that your eyes are CLOSED (command: THANKS).",
}

// Command returns the vocabulary word for d, or "" when d has none.
func (d Direction) Command() string {
	return directionCommands[d]
}

// Message returns the canned human-readable message for d.
func (d Direction) Message() string {
	if msg, ok := directionMessages[d]; ok {
		return msg
	}
	return fmt.Sprintf("direction detected: %s", d)
}

// GazeResult is the value returned to clients for one classified image.
type GazeResult struct {
	Direction Direction `json:"direction"`
	Command   string    `json:"command,omitempty"`
	Message   string    `json:"message"`
	DX        *float64  `json:"dx,omitempty"`
	DY        *float64  `json:"dy,omitempty"`
	Code      string    `json:"code,omitempty"`
}

func NewGazeResult(d Direction) GazeResult {
	return GazeResult{
		Direction: d,
		Command:   d.Command(),
		Message:   d.Message(),
	}
}

// WithOffset attaches the iris offset that justified the label.
func (r GazeResult) WithOffset(dx, dy float64) GazeResult {
	r.DX = &dx
	r.DY = &dy
	return r
}

// IsError reports whether r carries the error direction.
func (r GazeResult) IsError() bool {
	return r.Direction == DirectionError
}

// ErrorResult converts err into an error-direction result. Details of
// server-side failures are not exposed.
func ErrorResult(err error) GazeResult {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = ErrInternal
	}

	message := appErr.Message
	if appErr.StatusCode < 500 {
		message = appErr.Error()
	}

	return GazeResult{
		Direction: DirectionError,
		Message:   message,
		Code:      appErr.Code,
	}
}
