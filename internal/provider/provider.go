package provider

import (
	"context"
	"errors"
)

var (
	// ErrNoFace is returned by detectors that report an empty image as an error
	// instead of an empty slice.
	ErrNoFace = errors.New("no face in image")

	// ErrImageRejected is wrapped by detector errors caused by the image itself.
	// Anything else from a detector is treated as the detector being unavailable.
	ErrImageRejected = errors.New("image rejected by detector")
)

// LandmarkDetector runs a facial-landmark model over an encoded image.
// Implementations are created once per process and must be safe for
// concurrent use.
type LandmarkDetector interface {
	// DetectLandmarks returns one entry per detected face. Points are keyed
	// by FaceMesh landmark index and normalized to the image size.
	DetectLandmarks(ctx context.Context, image []byte) ([]FaceLandmarks, error)

	// Name identifies the detector in logs and audit events.
	Name() string
}

// NormalizedPoint is a landmark position as a fraction of image width/height.
// Z is relative depth and is zero for detectors that do not produce it.
type NormalizedPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FaceLandmarks holds the landmarks of one detected face
type FaceLandmarks struct {
	Points     map[int]NormalizedPoint `json:"points"`
	Confidence float64                 `json:"confidence"`
}
