package mediapipe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config holds the configuration for the FaceMesh sidecar client
type Config struct {
	BaseURL                string
	Timeout                time.Duration
	RetryCount             int
	RetryBaseDelay         time.Duration
	MaxNumFaces            int
	RefineLandmarks        bool
	MinDetectionConfidence float64
}

// DefaultConfig mirrors the FaceMesh settings the classifier was tuned with
func DefaultConfig() Config {
	return Config{
		BaseURL:                "http://localhost:5005",
		Timeout:                30 * time.Second,
		RetryCount:             2,
		RetryBaseDelay:         time.Second,
		MaxNumFaces:            1,
		RefineLandmarks:        true,
		MinDetectionConfidence: 0.6,
	}
}

// Client is the HTTP client for the FaceMesh sidecar
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates a new FaceMesh client
func NewClient(config Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// FaceMesh calls POST /face_mesh to extract landmarks
func (c *Client) FaceMesh(ctx context.Context, imageBase64 string) (*FaceMeshResponse, error) {
	req := FaceMeshRequest{
		Img:                    imageBase64,
		MaxNumFaces:            c.config.MaxNumFaces,
		RefineLandmarks:        c.config.RefineLandmarks,
		MinDetectionConfidence: c.config.MinDetectionConfidence,
	}

	var resp FaceMeshResponse
	if err := c.doRequestWithRetry(ctx, http.MethodPost, "/face_mesh", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Ping calls GET /health on the sidecar
func (c *Client) Ping(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodGet, "/health", nil, nil)
}

// maxBackoff is the maximum backoff duration for retries
const maxBackoff = 30 * time.Second

// calculateBackoff returns base, 2*base, 4*base... capped at maxBackoff
func calculateBackoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if attempt <= 1 {
		return base
	}
	backoff := base
	for i := 1; i < attempt && i < 6; i++ {
		backoff *= 2
	}
	if backoff > maxBackoff {
		return maxBackoff
	}
	return backoff
}

// statusError is a non-2xx answer from the sidecar
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("mediapipe returned status %d: %s", e.StatusCode, e.Body)
}

// isClientError checks if the error is a 4xx client error
func isClientError(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.StatusCode >= 400 && se.StatusCode < 500
	}
	return false
}

// doRequestWithRetry executes HTTP request with retry logic
func (c *Client) doRequestWithRetry(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.RetryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(calculateBackoff(c.config.RetryBaseDelay, attempt)):
			}
		}

		lastErr = c.doRequest(ctx, method, path, body, result)
		if lastErr == nil {
			return nil
		}

		// Don't retry on context errors
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// Only server errors are retried
		if isClientError(lastErr) {
			return fmt.Errorf("%w: %v", ErrClientRequest, lastErr)
		}
		if errors.Is(lastErr, ErrInvalidResponse) {
			return lastErr
		}
	}

	return fmt.Errorf("%w: %v", ErrMediaPipeUnavailable, lastErr)
}

// doRequest executes a single HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	url := c.config.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &statusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	return nil
}
