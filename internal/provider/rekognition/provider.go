package rekognition

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/mirada/internal/gaze"
	"github.com/saturnino-fabrica-de-software/mirada/internal/provider"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
)

// faceMeshIndex places Rekognition eye landmarks on the FaceMesh indices the
// classifier reads. Rekognition names eyes by image side, so its "left" eye
// is the subject's right eye.
var faceMeshIndex = map[types.LandmarkType]int{
	types.LandmarkTypeLeftEyeUp:     gaze.RightEyeUpperLid,
	types.LandmarkTypeLeftEyeDown:   gaze.RightEyeLowerLid,
	types.LandmarkTypeLeftEyeLeft:   gaze.RightEyeOuterCorner,
	types.LandmarkTypeLeftEyeRight:  gaze.RightEyeInnerCorner,
	types.LandmarkTypeLeftPupil:     gaze.RightIrisCenter,
	types.LandmarkTypeRightEyeUp:    gaze.LeftEyeUpperLid,
	types.LandmarkTypeRightEyeDown:  gaze.LeftEyeLowerLid,
	types.LandmarkTypeRightEyeLeft:  gaze.LeftEyeInnerCorner,
	types.LandmarkTypeRightEyeRight: gaze.LeftEyeOuterCorner,
	types.LandmarkTypeRightPupil:    gaze.LeftIrisCenter,
}

// Provider implements provider.LandmarkDetector using AWS Rekognition
type Provider struct {
	api    API
	config Config
}

// Ensure Provider implements provider.LandmarkDetector interface at compile time
var _ provider.LandmarkDetector = (*Provider)(nil)

// NewProvider creates a Rekognition provider backed by the AWS SDK
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	api, err := NewAPI(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return NewProviderWithAPI(api, cfg), nil
}

// NewProviderWithAPI creates a provider around an existing API implementation
func NewProviderWithAPI(api API, cfg Config) *Provider {
	return &Provider{
		api:    api,
		config: cfg,
	}
}

func (p *Provider) Name() string {
	return "rekognition"
}

// validateImage checks if image data is valid for Rekognition processing
func validateImage(image []byte) error {
	if len(image) == 0 {
		return ErrInvalidImage
	}
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// DetectLandmarks detects faces with the DetectFaces API and returns their
// eye landmarks. Returns an empty slice if no faces are detected.
func (p *Provider) DetectLandmarks(ctx context.Context, image []byte) ([]provider.FaceLandmarks, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}

	input := &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: image,
		},
		Attributes: []types.Attribute{types.AttributeDefault},
	}

	output, err := p.api.DetectFaces(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", parseAPIError(err))
	}

	faces := make([]provider.FaceLandmarks, 0, len(output.FaceDetails))
	for _, detail := range output.FaceDetails {
		confidence := 0.0
		if detail.Confidence != nil {
			confidence = float64(*detail.Confidence)
		}
		if confidence < p.config.MinConfidence {
			continue
		}

		faces = append(faces, provider.FaceLandmarks{
			Points:     convertLandmarks(detail.Landmarks),
			Confidence: confidence / 100.0,
		})
	}

	return faces, nil
}

// convertLandmarks keeps the landmarks that have a FaceMesh counterpart
func convertLandmarks(landmarks []types.Landmark) map[int]provider.NormalizedPoint {
	points := make(map[int]provider.NormalizedPoint, len(faceMeshIndex))
	for _, lm := range landmarks {
		idx, ok := faceMeshIndex[lm.Type]
		if !ok || lm.X == nil || lm.Y == nil {
			continue
		}
		points[idx] = provider.NormalizedPoint{
			X: float64(*lm.X),
			Y: float64(*lm.Y),
		}
	}
	return points
}
