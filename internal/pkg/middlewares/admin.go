package middlewares

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"exusiai.dev/booking-backend/internal/pkg/apperr"
)

// AdminKey guards a route group with a static bearer key. An empty key rejects every request,
// so a deployment without BOOKING_ADMIN_KEY never exposes the admin API.
func AdminKey(key string) fiber.Handler {
	if key == "" {
		log.Warn().Msg("admin key is not configured: all admin endpoints will respond with 401")
	}

	return func(ctx *fiber.Ctx) error {
		if key == "" {
			return apperr.ErrUnauthorized
		}

		token, found := strings.CutPrefix(ctx.Get(fiber.HeaderAuthorization), "Bearer ")
		if !found || subtle.ConstantTimeCompare([]byte(token), []byte(key)) != 1 {
			return apperr.ErrUnauthorized
		}

		return ctx.Next()
	}
}
