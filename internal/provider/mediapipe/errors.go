package mediapipe

import (
	"errors"
	"fmt"

	"github.com/saturnino-fabrica-de-software/mirada/internal/provider"
)

var (
	ErrMediaPipeUnavailable = errors.New("mediapipe service unavailable")
	ErrInvalidResponse      = errors.New("invalid response from mediapipe")
	ErrClientRequest        = fmt.Errorf("mediapipe rejected request: %w", provider.ErrImageRejected)
)
