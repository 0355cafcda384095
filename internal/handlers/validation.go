package handlers

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/career-coach/internal/apperrors"
)

type validatable interface {
	Validate() error
}

// parseBody decodes the JSON body into dst and runs its ozzo rules.
func parseBody(c *fiber.Ctx, dst validatable) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError("body", "invalid JSON payload")
	}
	return toValidationError(dst.Validate())
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	details := make([]apperrors.FieldError, 0, len(fieldErrs))
	for field, fieldErr := range fieldErrs {
		details = append(details, apperrors.FieldError{Field: field, Message: fieldErr.Error()})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].Field < details[j].Field })

	return &apperrors.ValidationError{Details: details}
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError(name, "must be a valid UUID")
	}
	return id, nil
}

// intParam only checks the syntax; out-of-range numbers are left to the
// lookup so they surface as not found.
func intParam(c *fiber.Ctx, name string) (int, error) {
	n, err := c.ParamsInt(name)
	if err != nil {
		return 0, apperrors.NewValidationError(name, "must be an integer")
	}
	return n, nil
}
