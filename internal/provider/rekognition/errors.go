package rekognition

import (
	"errors"
	"fmt"

	"github.com/saturnino-fabrica-de-software/mirada/internal/provider"
)

var (
	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

	// ErrInvalidImage indicates the image is empty, too large or in a format Rekognition rejects
	ErrInvalidImage = fmt.Errorf("invalid image for rekognition: %w", provider.ErrImageRejected)

	// ErrThrottled indicates the request was rejected by AWS rate limits
	ErrThrottled = errors.New("rekognition request throttled")
)
