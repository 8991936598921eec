package face

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/mirada/internal/config"
	"github.com/saturnino-fabrica-de-software/mirada/internal/provider"
	"github.com/saturnino-fabrica-de-software/mirada/internal/provider/mediapipe"
	"github.com/saturnino-fabrica-de-software/mirada/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/mirada/internal/provider/rekognition"
)

// ProviderType defines supported landmark detector types
type ProviderType string

const (
	// ProviderTypeMediaPipe is the FaceMesh sidecar (default)
	ProviderTypeMediaPipe ProviderType = "mediapipe"
	// ProviderTypeRekognition is the AWS Rekognition provider (cloud)
	ProviderTypeRekognition ProviderType = "rekognition"
	// ProviderTypeMock is a deterministic detector for local development
	ProviderTypeMock ProviderType = "mock"
)

// NewLandmarkDetector creates the detector selected by LANDMARK_PROVIDER.
// Call it once at startup; the returned detector is shared by all requests.
//
// Environment variables:
//   - LANDMARK_PROVIDER: "mediapipe", "rekognition" or "mock" (default: "mediapipe")
//   - MEDIAPIPE_URL, MEDIAPIPE_TIMEOUT, MEDIAPIPE_RETRY_COUNT, MIN_DETECTION_CONFIDENCE
//   - AWS_REGION plus the AWS SDK credential chain for Rekognition
func NewLandmarkDetector(ctx context.Context, cfg *config.Config) (provider.LandmarkDetector, error) {
	switch ProviderType(cfg.LandmarkProvider) {
	case ProviderTypeMediaPipe, "":
		return createMediaPipeProvider(cfg), nil

	case ProviderTypeRekognition:
		return createRekognitionProvider(ctx, cfg)

	case ProviderTypeMock:
		return mock.New(), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s, %s)",
			cfg.LandmarkProvider, ProviderTypeMediaPipe, ProviderTypeRekognition, ProviderTypeMock)
	}
}

func createMediaPipeProvider(cfg *config.Config) provider.LandmarkDetector {
	mpConfig := mediapipe.DefaultConfig()
	if cfg.MediaPipeURL != "" {
		mpConfig.BaseURL = cfg.MediaPipeURL
	}
	if cfg.MediaPipeTimeout > 0 {
		mpConfig.Timeout = cfg.MediaPipeTimeout
	}
	if cfg.MediaPipeRetryCount >= 0 {
		mpConfig.RetryCount = cfg.MediaPipeRetryCount
	}
	if cfg.MinDetectionConfidence > 0 {
		mpConfig.MinDetectionConfidence = cfg.MinDetectionConfidence
	}

	return mediapipe.NewProvider(mpConfig)
}

func createRekognitionProvider(ctx context.Context, cfg *config.Config) (provider.LandmarkDetector, error) {
	rekogConfig := rekognition.DefaultConfig()
	if cfg.AWSRegion != "" {
		rekogConfig.Region = cfg.AWSRegion
	}
	if cfg.MinDetectionConfidence > 0 {
		// Rekognition reports confidence as a percentage
		rekogConfig.MinConfidence = cfg.MinDetectionConfidence * 100
	}

	prov, err := rekognition.NewProvider(ctx, rekogConfig)
	if err != nil {
		return nil, fmt.Errorf("create rekognition provider in %s: %w", rekogConfig.Region, err)
	}

	return prov, nil
}
