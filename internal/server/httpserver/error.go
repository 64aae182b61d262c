package httpserver

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"exusiai.dev/booking-backend/internal/pkg/apperr"
	"exusiai.dev/booking-backend/internal/pkg/middlewares"
	"exusiai.dev/booking-backend/internal/service"
)

func handleCustomError(ctx *fiber.Ctx, e *apperr.Error) error {
	log.Warn().
		Err(e).
		Str("method", ctx.Method()).
		Str("path", ctx.Path()).
		Msg(e.Message)

	body := fiber.Map{
		"code":    e.ErrorCode,
		"message": e.Message,
	}

	if e.Extras != nil && len(*e.Extras) > 0 {
		for k, v := range *e.Extras {
			body[k] = v
		}
	}

	return ctx.Status(e.StatusCode).JSON(body)
}

func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return handleCustomError(ctx, e)
	}

	if errors.Is(err, service.ErrDatabaseNotReachable) || errors.Is(err, service.ErrRedisNotReachable) {
		return handleCustomError(ctx, apperr.ErrUnavailable.Msg("%s", err.Error()))
	}

	// Default 500 statuscode
	re := *apperr.ErrInternalError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		// Overwrite status code if fiber.Error type & provided code
		re.StatusCode = fe.Code
		re.ErrorCode = "UNKNOWN_ERROR"
		re.Message = fe.Message
	}

	log.Error().
		Stack().
		Err(err).
		Str("method", ctx.Method()).
		Str("path", ctx.Path()).
		Int("status", re.StatusCode).
		Msg("Internal Server Error")

	if hub := middlewares.SentryHub(ctx); hub != nil {
		hub.Scope().SetTag("status", strconv.Itoa(re.StatusCode))
		hub.CaptureException(err)
	}

	return handleCustomError(ctx, &re)
}
