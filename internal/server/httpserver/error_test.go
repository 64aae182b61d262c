package httpserver

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exusiai.dev/booking-backend/internal/pkg/apperr"
	"exusiai.dev/booking-backend/internal/service"
)

func TestErrorHandler(t *testing.T) {
	// no fibersentry in the chain: the handler must still render every error
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})
	app.Get("/custom", func(c *fiber.Ctx) error {
		return apperr.ErrUnauthorized
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return errors.Wrap(service.ErrDatabaseNotReachable, "dial tcp: connection refused")
	})

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/internal", fiber.StatusInternalServerError, apperr.CodeInternalError},
		{"/custom", fiber.StatusUnauthorized, apperr.CodeUnauthorized},
		{"/health", fiber.StatusServiceUnavailable, apperr.CodeUnavailable},
		{"/missing", fiber.StatusNotFound, "UNKNOWN_ERROR"},
	}

	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, test.path, nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, test.status, resp.StatusCode)
			assert.Contains(t, string(body), `"code":"`+test.code+`"`)
		})
	}
}
