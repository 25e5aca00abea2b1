package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/rook-prog/CartoZen/internal/adapters/tabular"
	"github.com/rook-prog/CartoZen/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status          int    `json:"status"`
	Code            string `json:"code"`    // Error code: bad_request, not_found, conversion_failed, etc.
	Message         string `json:"message"` // Human-readable message
	SuggestedFormat string `json:"suggested_format,omitempty"`
	RequestID       string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	return writeError(c, APIError{Status: status, Code: code, Message: message})
}

func writeError(c *fiber.Ctx, e APIError) error {
	e.RequestID, _ = c.Locals("requestid").(string)
	return c.Status(e.Status).JSON(e)
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errUnavailable returns a 503 error.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, 503, "unavailable", msg)
}

// errFromDomain maps pipeline errors to responses. Input problems are
// client errors; anything unrecognised is logged and reported as a 500.
func errFromDomain(c *fiber.Ctx, err error) error {
	var (
		colErr    *domain.ColumnError
		convErr   *domain.ConversionError
		utmErr    *domain.UTMColumnsError
		cornerErr *domain.CornerError
	)
	switch {
	case errors.As(err, &colErr):
		return newError(c, 422, "column_not_found", err.Error())
	case errors.As(err, &convErr):
		return writeError(c, APIError{
			Status:          422,
			Code:            "conversion_failed",
			Message:         err.Error(),
			SuggestedFormat: string(convErr.SuggestedFormat),
		})
	case errors.As(err, &utmErr), errors.As(err, &cornerErr),
		errors.Is(err, domain.ErrUnknownFormat),
		errors.Is(err, domain.ErrEmptyTable),
		errors.Is(err, domain.ErrInvalidConfig),
		errors.Is(err, tabular.ErrUnsupportedFile):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrPlanNotFound), errors.Is(err, domain.ErrSourceNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		return errUnavailable(c, err.Error())
	}
	LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return errInternal(c, "internal error")
}
