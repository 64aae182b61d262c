package workers

import (
	"go.uber.org/fx"

	"exusiai.dev/booking-backend/internal/workers/refreshwkr"
)

func Module() fx.Option {
	return fx.Module("workers", fx.Invoke(refreshwkr.Start))
}
