package mock

import (
	"context"

	"github.com/saturnino-fabrica-de-software/mirada/internal/domain"
	"github.com/saturnino-fabrica-de-software/mirada/internal/gaze"
	"github.com/saturnino-fabrica-de-software/mirada/internal/provider"
)

// minImageSize rejects payloads too short to be an encoded image
const minImageSize = 100

// Provider implementa provider.LandmarkDetector para testes e desenvolvimento
type Provider struct {
	faces []provider.FaceLandmarks
}

// New returns a detector that reports one face with open eyes looking at the camera
func New() *Provider {
	return NewWithFaces(OpenEyesFace())
}

// NewWithFaces returns a detector that reports the given faces for every image.
// Passing no faces simulates an image without anyone in it.
func NewWithFaces(faces ...provider.FaceLandmarks) *Provider {
	return &Provider{faces: faces}
}

func (p *Provider) Name() string {
	return "mock"
}

// DetectLandmarks ignores the image content beyond a size check
func (p *Provider) DetectLandmarks(ctx context.Context, image []byte) ([]provider.FaceLandmarks, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(image) < minImageSize {
		return nil, domain.ErrInvalidImage
	}

	out := make([]provider.FaceLandmarks, len(p.faces))
	for i, f := range p.faces {
		points := make(map[int]provider.NormalizedPoint, len(f.Points))
		for idx, pt := range f.Points {
			points[idx] = pt
		}
		out[i] = provider.FaceLandmarks{Points: points, Confidence: f.Confidence}
	}
	return out, nil
}

// OpenEyesFace is a frontal face with both eyes open and the iris centered.
// Eyelid gaps are 5% of the image height.
func OpenEyesFace() provider.FaceLandmarks {
	return provider.FaceLandmarks{
		Confidence: 0.99,
		Points: map[int]provider.NormalizedPoint{
			gaze.RightEyeUpperLid:    {X: 0.35, Y: 0.38},
			gaze.RightEyeLowerLid:    {X: 0.35, Y: 0.43},
			gaze.LeftEyeUpperLid:     {X: 0.65, Y: 0.38},
			gaze.LeftEyeLowerLid:     {X: 0.65, Y: 0.43},
			gaze.RightEyeOuterCorner: {X: 0.28, Y: 0.405},
			gaze.RightEyeInnerCorner: {X: 0.42, Y: 0.405},
			gaze.LeftEyeInnerCorner:  {X: 0.58, Y: 0.405},
			gaze.LeftEyeOuterCorner:  {X: 0.72, Y: 0.405},
			gaze.RightIrisCenter:     {X: 0.35, Y: 0.405},
			gaze.LeftIrisCenter:      {X: 0.65, Y: 0.405},
		},
	}
}

// ClosedEyesFace is OpenEyesFace with both eyelids touching
func ClosedEyesFace() provider.FaceLandmarks {
	f := OpenEyesFace()
	f.Points[gaze.RightEyeLowerLid] = f.Points[gaze.RightEyeUpperLid]
	f.Points[gaze.LeftEyeLowerLid] = f.Points[gaze.LeftEyeUpperLid]
	return f
}

var _ provider.LandmarkDetector = (*Provider)(nil)
