package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/textproto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"

	"github.com/saturnino-fabrica-de-software/mirada/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/mirada/internal/domain"
	"github.com/saturnino-fabrica-de-software/mirada/internal/service"
)

// MockAnalyzer is a mock implementation of Analyzer
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, in service.AnalyzeInput) (*domain.GazeResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GazeResult), args.Error(1)
}

// testLogger returns a logger that discards all output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(testLogger())})
}

// createMultipartRequest builds a form with one file part. An empty field
// name produces a form without a file.
func createMultipartRequest(field, filename string, content []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if field != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		h.Set("Content-Type", "image/jpeg")

		part, _ := writer.CreatePart(h)
		_, _ = part.Write(content)
	} else {
		_ = writer.WriteField("note", "no file here")
	}

	_ = writer.Close()
	return body, writer.FormDataContentType()
}
