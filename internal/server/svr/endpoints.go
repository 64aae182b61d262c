package svr

import (
	"github.com/gofiber/fiber/v2"

	"exusiai.dev/booking-backend/internal/app/appconfig"
	"exusiai.dev/booking-backend/internal/pkg/middlewares"
)

type Admin struct {
	fiber.Router
}

type Meta struct {
	fiber.Router
}

func CreateEndpointGroups(app *fiber.App, conf *appconfig.Config) (*Admin, *Meta) {
	admin := app.Group("/api/_/admin", middlewares.AdminKey(conf.AdminKey))
	meta := app.Group("/api/_/meta")

	return &Admin{Router: admin}, &Meta{Router: meta}
}
