package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/career-coach/internal/apperrors"
	"alfredoptarigan/career-coach/internal/logger"
)

// ErrorHandler renders every error returned by a handler.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var validationErr *apperrors.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":   "Invalid input data",
				"code":    fiber.StatusUnprocessableEntity,
				"details": validationErr.Details,
			})
		}

		code, message := statusFor(err)
		if code == fiber.StatusInternalServerError {
			log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		}

		return c.Status(code).JSON(fiber.Map{
			"error": message,
			"code":  code,
		})
	}
}

func statusFor(err error) (int, string) {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return fiber.StatusNotFound, "Not found"
	case errors.Is(err, apperrors.ErrForbidden):
		return fiber.StatusForbidden, "Not allowed"
	case errors.Is(err, apperrors.ErrConflict):
		return fiber.StatusConflict, "User with this email already exists."
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "Invalid email or password."
	case errors.Is(err, apperrors.ErrUnauthenticated):
		return fiber.StatusUnauthorized, "Unauthenticated"
	case errors.Is(err, apperrors.ErrExternalService):
		return fiber.StatusBadGateway, "AI service unavailable"
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}
