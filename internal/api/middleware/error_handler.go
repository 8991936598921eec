package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/mirada/internal/domain"
)

// ErrorHandler renders every error as a gaze result with the "error" direction
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		// Fiber errors (404, 405, 413...) keep their status
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(domain.GazeResult{
				Direction: domain.DirectionError,
				Message:   fiberErr.Message,
				Code:      "HTTP_ERROR",
			})
		}

		var appErr *domain.AppError
		if !errors.As(err, &appErr) {
			logger.Error("unhandled error",
				slog.Any("error", err),
				slog.String("path", c.Path()),
			)
			appErr = domain.ErrInternal
		} else if appErr.StatusCode >= 500 {
			logger.Error("internal error",
				slog.String("code", appErr.Code),
				slog.String("message", appErr.Message),
				slog.Any("error", appErr.Err),
				slog.String("path", c.Path()),
			)
		}

		return c.Status(appErr.StatusCode).JSON(domain.ErrorResult(appErr))
	}
}
