package gaze

import (
	"math"

	"github.com/saturnino-fabrica-de-software/mirada/internal/domain"
)

// Thresholds are absolute pixel distances. They are not normalized by image
// size, so the same gaze can classify differently at another resolution.
type Thresholds struct {
	// EyelidGap: an eye counts as closed below this upper/lower lid distance.
	EyelidGap float64
	// IrisHorizontal: |dx| above this is a left/right gaze.
	IrisHorizontal float64
	// IrisVertical: dy below -IrisVertical is an upward gaze.
	IrisVertical float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		EyelidGap:      4,
		IrisHorizontal: 5,
		IrisVertical:   3,
	}
}

// Offset is the iris displacement from the eye-corner centroid, in pixels.
type Offset struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// EyelidGaps are the upper/lower lid distances of each eye, in pixels.
type EyelidGaps struct {
	Right float64 `json:"right"`
	Left  float64 `json:"left"`
}

// Result is the outcome of Classify. Offset is nil when the eyes are closed.
type Result struct {
	Direction  domain.Direction
	Offset     *Offset
	EyelidGaps EyelidGaps
}

// GazeResult converts r to the client-facing value.
func (r Result) GazeResult() domain.GazeResult {
	out := domain.NewGazeResult(r.Direction)
	if r.Offset != nil {
		out = out.WithOffset(r.Offset.DX, r.Offset.DY)
	}
	return out
}

// Classifier maps one face's landmarks to a gaze label. It holds no mutable
// state and may be shared between goroutines.
type Classifier struct {
	thresholds Thresholds
}

func NewClassifier(thresholds Thresholds) *Classifier {
	return &Classifier{thresholds: thresholds}
}

func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// IsEyeClosed reports whether both eyelid gaps are below the threshold.
func (c *Classifier) IsEyeClosed(set LandmarkSet) (bool, EyelidGaps, error) {
	pts, err := set.lookup(RightEyeUpperLid, RightEyeLowerLid, LeftEyeUpperLid, LeftEyeLowerLid)
	if err != nil {
		return false, EyelidGaps{}, err
	}

	gaps := EyelidGaps{
		Right: distance(pts[0], pts[1]),
		Left:  distance(pts[2], pts[3]),
	}

	closed := gaps.Right < c.thresholds.EyelidGap && gaps.Left < c.thresholds.EyelidGap
	return closed, gaps, nil
}

// DetectDirection measures the left iris against the left eye corners.
// Right-eye corners and iris must be present but do not affect the label.
// Coordinates are truncated to whole pixels before measuring.
func (c *Classifier) DetectDirection(set LandmarkSet) (domain.Direction, Offset, error) {
	pts, err := set.lookup(
		RightEyeOuterCorner, RightEyeInnerCorner,
		LeftEyeInnerCorner, LeftEyeOuterCorner,
		RightIrisCenter, LeftIrisCenter,
	)
	if err != nil {
		return "", Offset{}, err
	}

	inner, outer, iris := truncate(pts[2]), truncate(pts[3]), truncate(pts[5])

	centerX := (inner.X + outer.X) / 2
	centerY := (inner.Y + outer.Y) / 2

	offset := Offset{
		DX: iris.X - centerX,
		DY: iris.Y - centerY,
	}

	switch {
	case offset.DX > c.thresholds.IrisHorizontal:
		return domain.DirectionRight, offset, nil
	case offset.DX < -c.thresholds.IrisHorizontal:
		return domain.DirectionLeft, offset, nil
	case offset.DY < -c.thresholds.IrisVertical:
		return domain.DirectionUp, offset, nil
	default:
		return domain.DirectionCenter, offset, nil
	}
}

// Classify checks eye closure first; closed eyes are never reported as a
// gaze direction.
func (c *Classifier) Classify(set LandmarkSet) (Result, error) {
	closed, gaps, err := c.IsEyeClosed(set)
	if err != nil {
		return Result{}, err
	}
	if closed {
		return Result{Direction: domain.DirectionEyesClosed, EyelidGaps: gaps}, nil
	}

	direction, offset, err := c.DetectDirection(set)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Direction:  direction,
		Offset:     &offset,
		EyelidGaps: gaps,
	}, nil
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func truncate(p Point) Point {
	return Point{X: math.Trunc(p.X), Y: math.Trunc(p.Y)}
}
