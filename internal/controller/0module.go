package controller

import (
	"go.uber.org/fx"

	controllermeta "exusiai.dev/booking-backend/internal/controller/meta"
)

func Module() fx.Option {
	return fx.Module("controller",
		// Controllers (meta & admin)
		controllermeta.Module(),
	)
}
