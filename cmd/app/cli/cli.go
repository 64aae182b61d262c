package cli

import (
	"context"

	"go.uber.org/fx"

	"exusiai.dev/booking-backend/internal/app"
	"exusiai.dev/booking-backend/internal/app/appcontext"
)

// Start builds the CLI flavor of the app graph, which has no server, controllers or workers,
// and starts it. The returned stop function runs the OnStop hooks.
func Start(module fx.Option) (stop func() error, err error) {
	a := app.New(appcontext.Declare(appcontext.EnvCLI), module)
	if err := a.Start(context.Background()); err != nil {
		return nil, err
	}
	return func() error {
		return a.Stop(context.Background())
	}, nil
}
