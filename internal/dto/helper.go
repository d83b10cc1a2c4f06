package dto

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/eventdesk/eventdesk/api/internal/pkg/errors"
	"github.com/eventdesk/eventdesk/api/internal/validator"
)

// ParseAndValidate parses the request body into v and validates it.
// The returned error is an *errors.AppError carrying per-field details,
// so handlers pass it to their error path unchanged.
func ParseAndValidate(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return apperrors.BadRequest("Invalid request body: " + err.Error())
	}
	return validate(v)
}

// ParseQuery parses query parameters into v and validates it
func ParseQuery(c *fiber.Ctx, v any) error {
	if err := c.QueryParser(v); err != nil {
		return apperrors.BadRequest("Invalid query parameters: " + err.Error())
	}
	return validate(v)
}

func validate(v any) error {
	err := validator.Validate(v)
	if err == nil {
		return nil
	}

	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		return apperrors.ValidationFields(fields.Fields())
	}
	return apperrors.Validation(err.Error())
}
