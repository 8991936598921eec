package mediapipe

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/saturnino-fabrica-de-software/mirada/internal/provider"
)

// Provider implements provider.LandmarkDetector with a FaceMesh sidecar
type Provider struct {
	client *Client
}

// NewProvider creates a new FaceMesh provider
func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

func (p *Provider) Name() string {
	return "mediapipe"
}

// DetectLandmarks sends the image to the sidecar and indexes each face's
// landmark list by position. No faces is an empty slice, not an error.
func (p *Provider) DetectLandmarks(ctx context.Context, image []byte) ([]provider.FaceLandmarks, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("detect landmarks: %w", ErrClientRequest)
	}

	resp, err := p.client.FaceMesh(ctx, base64.StdEncoding.EncodeToString(image))
	if err != nil {
		return nil, fmt.Errorf("detect landmarks: %w", err)
	}

	faces := make([]provider.FaceLandmarks, 0, len(resp.Faces))
	for _, face := range resp.Faces {
		points := make(map[int]provider.NormalizedPoint, len(face.Landmarks))
		for idx, lm := range face.Landmarks {
			points[idx] = provider.NormalizedPoint{X: lm.X, Y: lm.Y, Z: lm.Z}
		}
		faces = append(faces, provider.FaceLandmarks{
			Points:     points,
			Confidence: face.Score,
		})
	}

	return faces, nil
}

// Ping checks that the sidecar is reachable
func (p *Provider) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx); err != nil {
		return fmt.Errorf("ping mediapipe: %w", err)
	}
	return nil
}

var _ provider.LandmarkDetector = (*Provider)(nil)
