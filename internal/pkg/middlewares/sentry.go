package middlewares

import (
	"github.com/getsentry/sentry-go"
	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/fiber/v2"

	"exusiai.dev/booking-backend/internal/pkg/flog"
)

// SentryHub returns the request-scoped hub installed by fibersentry, or nil when the fibersentry
// middleware did not run for this request. fibersentry.GetHubFromContext panics in that case.
func SentryHub(c *fiber.Ctx) (hub *sentry.Hub) {
	defer func() {
		if recover() != nil {
			hub = nil
		}
	}()
	return fibersentry.GetHubFromContext(c)
}

// EnrichSentry tags the request-scoped sentry hub with the request id assigned by Logger.
func EnrichSentry() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hub := SentryHub(c); hub != nil {
			if id, ok := flog.IDFromFiberCtx(c); ok {
				hub.Scope().SetTag("request_id", id.String())
			}
		}
		return c.Next()
	}
}
