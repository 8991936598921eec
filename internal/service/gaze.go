package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/saturnino-fabrica-de-software/mirada/internal/audit"
	"github.com/saturnino-fabrica-de-software/mirada/internal/cache"
	"github.com/saturnino-fabrica-de-software/mirada/internal/domain"
	"github.com/saturnino-fabrica-de-software/mirada/internal/gaze"
	"github.com/saturnino-fabrica-de-software/mirada/internal/photo"
	"github.com/saturnino-fabrica-de-software/mirada/internal/provider"
)

const auditTimeout = 5 * time.Second

// AnalyzeInput is one frame to classify plus the request metadata kept in the audit log
type AnalyzeInput struct {
	Image     []byte
	Source    audit.Source
	RequestID string
	ClientIP  string
}

type GazeService struct {
	detector   provider.LandmarkDetector
	classifier *gaze.Classifier
	audit      audit.Logger
	logger     *slog.Logger

	cache    cache.Cache
	cacheTTL time.Duration

	pending sync.WaitGroup
}

func NewGazeService(
	detector provider.LandmarkDetector,
	classifier *gaze.Classifier,
	auditLogger audit.Logger,
	logger *slog.Logger,
) *GazeService {
	if auditLogger == nil {
		auditLogger = &audit.NoOpLogger{}
	}
	return &GazeService{
		detector:   detector,
		classifier: classifier,
		audit:      auditLogger,
		logger:     logger.With("component", "gaze_service"),
	}
}

// WithCache memoizes results by image digest. A non-positive ttl leaves caching off.
func (s *GazeService) WithCache(c cache.Cache, ttl time.Duration) *GazeService {
	if ttl > 0 {
		s.cache = c
		s.cacheTTL = ttl
	}
	return s
}

func (s *GazeService) DetectorName() string {
	return s.detector.Name()
}

// Analyze decodes the image, runs the detector and classifies the first face.
// Errors are domain.AppError values ready to be rendered as error results.
func (s *GazeService) Analyze(ctx context.Context, in AnalyzeInput) (*domain.GazeResult, error) {
	start := time.Now()

	var key string
	if s.cache != nil {
		key = s.cacheKey(in.Image)
		if cached, dims, ok := s.lookup(ctx, key); ok {
			s.record(ctx, in, cached, nil, dims, start)
			return cached, nil
		}
	}

	result, dims, err := s.analyze(ctx, in.Image)
	s.record(ctx, in, result, err, dims, start)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.store(ctx, key, result, dims)
	}
	return result, nil
}

func (s *GazeService) analyze(ctx context.Context, image []byte) (*domain.GazeResult, gaze.Dimensions, error) {
	p, err := photo.Decode(image)
	if err != nil {
		return nil, gaze.Dimensions{}, domain.ErrImageUnreadable.WithError(err)
	}

	faces, err := s.detector.DetectLandmarks(ctx, p.JPEG)
	if err != nil {
		return nil, p.Dimensions, detectorError(err)
	}
	if len(faces) == 0 {
		return nil, p.Dimensions, domain.ErrNoFaceDetected
	}

	// one face per frame; extra faces are ignored
	set := gaze.FromNormalized(toPoints(faces[0].Points), p.Dimensions)

	res, err := s.classifier.Classify(set)
	if err != nil {
		return nil, p.Dimensions, err
	}

	out := res.GazeResult()
	return &out, p.Dimensions, nil
}

// detectorError sorts detector failures into client and availability errors
func detectorError(err error) error {
	var appErr *domain.AppError
	switch {
	case errors.Is(err, provider.ErrNoFace):
		return domain.ErrNoFaceDetected
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, provider.ErrImageRejected):
		return domain.ErrInvalidImage.WithError(err)
	default:
		return domain.ErrDetectorUnavailable.WithError(err)
	}
}

func toPoints(points map[int]provider.NormalizedPoint) map[int]gaze.Point {
	out := make(map[int]gaze.Point, len(points))
	for idx, p := range points {
		out[idx] = gaze.Point{X: p.X, Y: p.Y}
	}
	return out
}

// cacheKey covers everything that can change the result for the same bytes
func (s *GazeService) cacheKey(image []byte) string {
	sum := sha256.Sum256(image)
	t := s.classifier.Thresholds()
	return fmt.Sprintf("gaze:%s:%g:%g:%g:%s",
		s.detector.Name(), t.EyelidGap, t.IrisHorizontal, t.IrisVertical, hex.EncodeToString(sum[:]))
}

// cachedResult keeps the image size next to the result so cache hits
// are audited like fresh classifications
type cachedResult struct {
	Result domain.GazeResult `json:"result"`
	Width  int               `json:"width"`
	Height int               `json:"height"`
}

func (s *GazeService) lookup(ctx context.Context, key string) (*domain.GazeResult, gaze.Dimensions, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) && !errors.Is(err, cache.ErrCacheExpired) {
			s.logger.WarnContext(ctx, "result cache read failed", "error", err)
		}
		return nil, gaze.Dimensions{}, false
	}

	var entry cachedResult
	if err := json.Unmarshal(data, &entry); err != nil || entry.Result.Direction == "" {
		s.logger.WarnContext(ctx, "discarding corrupt cache entry", "key", key, "error", err)
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "result cache delete failed", "error", err)
		}
		return nil, gaze.Dimensions{}, false
	}
	return &entry.Result, gaze.Dimensions{Width: entry.Width, Height: entry.Height}, true
}

func (s *GazeService) store(ctx context.Context, key string, result *domain.GazeResult, dims gaze.Dimensions) {
	data, err := json.Marshal(cachedResult{
		Result: *result,
		Width:  dims.Width,
		Height: dims.Height,
	})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "result cache write failed", "error", err)
	}
}

// record writes the audit event in the background; failures are only logged
func (s *GazeService) record(ctx context.Context, in AnalyzeInput, result *domain.GazeResult, err error, dims gaze.Dimensions, start time.Time) {
	event := audit.Event{
		RequestID:   in.RequestID,
		Source:      in.Source,
		Detector:    s.detector.Name(),
		Success:     err == nil,
		ImageWidth:  dims.Width,
		ImageHeight: dims.Height,
		LatencyMs:   time.Since(start).Milliseconds(),
		IPAddress:   in.ClientIP,
	}
	if err != nil {
		failed := domain.ErrorResult(err)
		event.Direction = string(failed.Direction)
		event.Error = failed.Code
	} else {
		event.Direction = string(result.Direction)
		event.Command = result.Command
		event.DX = result.DX
		event.DY = result.DY
	}

	auditCtx := context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(auditCtx, auditTimeout)
		defer cancel()

		if err := s.audit.Log(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "audit log failed", "request_id", event.RequestID, "error", err)
		}
	}()
}

// Wait blocks until background audit writes have finished
func (s *GazeService) Wait() {
	s.pending.Wait()
}
