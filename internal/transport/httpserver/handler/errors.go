// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"content-scoring-service/internal/domain"
	"content-scoring-service/internal/transport/httpserver/dto"
	"content-scoring-service/internal/validator"
)

var errInvalidBody = errors.New("invalid request body")

// errorStatus maps domain errors to a status code and an error code.
func errorStatus(err error) (int, string) {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		return fiber.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, errInvalidBody):
		return fiber.StatusBadRequest, "INVALID_BODY"
	case errors.Is(err, domain.ErrInvalidRating):
		return fiber.StatusBadRequest, "INVALID_RATING"
	case errors.Is(err, domain.ErrInvalidKind):
		return fiber.StatusBadRequest, "INVALID_KIND"
	case errors.Is(err, domain.ErrItemNotFound):
		return fiber.StatusNotFound, "ITEM_NOT_FOUND"
	case errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, "USER_NOT_FOUND"
	case errors.Is(err, domain.ErrMonthlyEarningsUnsupported):
		return fiber.StatusNotImplemented, "NOT_IMPLEMENTED"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE"
	default:
		return fiber.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// writeError sends the error response for err. Store details are not exposed.
func writeError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	status, code := errorStatus(err)

	resp := dto.ErrorResponse{Error: err.Error(), Code: code}
	switch {
	case status == fiber.StatusBadRequest:
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			resp.Error = "validation failed"
			resp.Details = validationErrs
		}
	case status >= 500 && status != fiber.StatusNotImplemented:
		logger.Error("request failed",
			zap.String("path", c.Path()),
			zap.String("code", code),
			zap.Error(err),
		)
		resp.Error = "service temporarily unavailable"
		if status == fiber.StatusInternalServerError {
			resp.Error = "internal server error"
		}
	}

	return c.Status(status).JSON(resp)
}

// parseBody decodes and validates a JSON body.
func parseBody(c *fiber.Ctx, v *validator.Validator, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}

	return v.Validate(out)
}
