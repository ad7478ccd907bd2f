package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/pdv-varejo/internal/domain"
)

// ErrorHandler maps engine errors onto the structured envelope
// {"error": {"kind": ..., "detail": ...}}. Validation errors are the
// operator's fault (400), conflicts mean the world changed underneath the
// checkout (409), everything else is a persistence failure (500) with a
// deliberately generic detail.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var de *domain.Error
		if errors.As(err, &de) {
			code := statusForKind(de.Kind)
			if code == fiber.StatusInternalServerError {
				log.Error("Request failed", zap.Error(err), zap.String("path", c.Path()))
			}
			return c.Status(code).JSON(envelope(string(de.Kind), de.Detail))
		}

		if e, ok := err.(*fiber.Error); ok {
			kind := string(domain.KindValidation)
			if e.Code >= fiber.StatusInternalServerError {
				kind = string(domain.KindPersistence)
				log.Error("Request failed", zap.Error(err), zap.String("path", c.Path()))
			}
			return c.Status(e.Code).JSON(envelope(kind, e.Message))
		}

		log.Error("Internal Server Error", zap.Error(err), zap.String("path", c.Path()))
		return c.Status(fiber.StatusInternalServerError).
			JSON(envelope(string(domain.KindPersistence), "transaction failed, nothing was charged"))
	}
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return fiber.StatusBadRequest
	case domain.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func envelope(kind, detail string) fiber.Map {
	return fiber.Map{
		"error": fiber.Map{
			"kind":   kind,
			"detail": detail,
		},
	}
}
