package cachectrl

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaders(t *testing.T) {
	app := fiber.New()
	app.Get("/fresh", func(c *fiber.Ctx) error {
		MaxAge(c, time.Now(), time.Minute)
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/stale", func(c *fiber.Ctx) error {
		MaxAge(c, time.Now().Add(-time.Hour), time.Minute)
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/none", func(c *fiber.Ctx) error {
		NoStore(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	tests := []struct {
		path         string
		cacheControl string
	}{
		{"/fresh", "private, max-age="},
		{"/stale", "no-cache, no-store, must-revalidate"},
		{"/none", "no-cache, no-store, must-revalidate"},
	}

	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, test.path, nil))
			require.NoError(t, err)
			assert.Contains(t, resp.Header.Get(fiber.HeaderCacheControl), test.cacheControl)
		})
	}
}
