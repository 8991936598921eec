package gaze

import (
	"fmt"

	"github.com/saturnino-fabrica-de-software/mirada/internal/domain"
)

// FaceMesh landmark indices read by the classifier.
const (
	RightEyeUpperLid = 159
	RightEyeLowerLid = 145
	LeftEyeUpperLid  = 386
	LeftEyeLowerLid  = 374

	RightEyeOuterCorner = 33
	RightEyeInnerCorner = 133
	LeftEyeInnerCorner  = 362
	LeftEyeOuterCorner  = 263

	RightIrisCenter = 468
	LeftIrisCenter  = 473
)

// RequiredLandmarks lists every index Classify may read.
var RequiredLandmarks = []int{
	RightEyeUpperLid, RightEyeLowerLid,
	LeftEyeUpperLid, LeftEyeLowerLid,
	RightEyeOuterCorner, RightEyeInnerCorner,
	LeftEyeInnerCorner, LeftEyeOuterCorner,
	RightIrisCenter, LeftIrisCenter,
}

// Point is a 2-D coordinate. Inside a LandmarkSet it is in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dimensions is an image size in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// LandmarkSet holds the pixel-space landmarks of one face in one image.
// It is never modified after construction.
type LandmarkSet struct {
	points map[int]Point
	dims   Dimensions
}

// NewLandmarkSet copies pixel-space points into a new set.
func NewLandmarkSet(points map[int]Point, dims Dimensions) LandmarkSet {
	copied := make(map[int]Point, len(points))
	for idx, p := range points {
		copied[idx] = p
	}
	return LandmarkSet{points: copied, dims: dims}
}

// FromNormalized scales detector output in [0,1] to pixel coordinates.
func FromNormalized(normalized map[int]Point, dims Dimensions) LandmarkSet {
	scaled := make(map[int]Point, len(normalized))
	for idx, p := range normalized {
		scaled[idx] = Point{
			X: p.X * float64(dims.Width),
			Y: p.Y * float64(dims.Height),
		}
	}
	return LandmarkSet{points: scaled, dims: dims}
}

// Point returns the landmark at index or a MISSING_LANDMARK error.
func (s LandmarkSet) Point(index int) (Point, error) {
	p, ok := s.points[index]
	if !ok {
		return Point{}, domain.ErrMissingLandmark.WithError(fmt.Errorf("landmark %d not present", index))
	}
	return p, nil
}

func (s LandmarkSet) Len() int {
	return len(s.points)
}

func (s LandmarkSet) Dimensions() Dimensions {
	return s.dims
}

// lookup resolves several indices at once, failing on the first absent one.
func (s LandmarkSet) lookup(indices ...int) ([]Point, error) {
	out := make([]Point, len(indices))
	for i, idx := range indices {
		p, err := s.Point(idx)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
