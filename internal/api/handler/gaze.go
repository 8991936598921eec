package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/mirada/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/mirada/internal/audit"
	"github.com/saturnino-fabrica-de-software/mirada/internal/domain"
	"github.com/saturnino-fabrica-de-software/mirada/internal/service"
	"github.com/saturnino-fabrica-de-software/mirada/internal/upload"
)

const formField = "file"

// Analyzer classifies one image
type Analyzer interface {
	Analyze(ctx context.Context, in service.AnalyzeInput) (*domain.GazeResult, error)
}

// GazeHandler serves the upload form and the classification endpoint
type GazeHandler struct {
	analyzer Analyzer
	store    *upload.Store
	maxSize  int64
	logger   *slog.Logger
}

func NewGazeHandler(analyzer Analyzer, store *upload.Store, maxSize int64, logger *slog.Logger) *GazeHandler {
	return &GazeHandler{
		analyzer: analyzer,
		store:    store,
		maxSize:  maxSize,
		logger:   logger,
	}
}

const indexPage = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>mirada</title></head>
<body>
<h1>Upload a photo</h1>
<form method="post" action="/process_image" enctype="multipart/form-data">
<input type="file" name="file" accept="image/*">
<input type="submit" value="Upload">
</form>
</body>
</html>
`

// Index GET / - upload form
func (h *GazeHandler) Index(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(indexPage)
}

// ProcessImage POST /process_image - classify the uploaded photo
func (h *GazeHandler) ProcessImage(c *fiber.Ctx) error {
	fh, err := c.FormFile(formField)
	if err != nil {
		return domain.ErrBadRequest.WithError(errors.New("no file field in request"))
	}
	if fh.Filename == "" {
		return domain.ErrBadRequest.WithError(errors.New("empty filename"))
	}
	if h.maxSize > 0 && fh.Size > h.maxSize {
		return domain.ErrInvalidImage.WithError(fmt.Errorf("file exceeds %d bytes", h.maxSize))
	}

	up, err := h.store.Save(fh)
	if err != nil {
		return fmt.Errorf("save upload: %w", err)
	}
	defer func() {
		if err := up.Remove(); err != nil {
			h.logger.Warn("failed to remove upload", "path", up.Path, "error", err)
		}
	}()

	image, err := up.Bytes()
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	result, err := h.analyzer.Analyze(c.UserContext(), service.AnalyzeInput{
		Image:     image,
		Source:    audit.SourceUpload,
		RequestID: middleware.RequestID(c),
		ClientIP:  c.IP(),
	})
	if err != nil {
		return err
	}

	return c.JSON(result)
}
