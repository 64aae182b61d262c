package app

import (
	"time"

	"go.uber.org/fx"

	"exusiai.dev/booking-backend/internal/app/appconfig"
	"exusiai.dev/booking-backend/internal/app/appcontext"
	"exusiai.dev/booking-backend/internal/controller"
	"exusiai.dev/booking-backend/internal/infra"
	"exusiai.dev/booking-backend/internal/pkg/logger"
	"exusiai.dev/booking-backend/internal/repo"
	"exusiai.dev/booking-backend/internal/server"
	"exusiai.dev/booking-backend/internal/service"
	"exusiai.dev/booking-backend/internal/workers"
)

func Options(ctx appcontext.Ctx, additionalOpts ...fx.Option) []fx.Option {
	conf, err := appconfig.Parse(ctx)
	if err != nil {
		panic(err)
	}

	// logger and configuration are the only two things that are not in the fx graph
	// because some other packages need them to be initialized before fx starts
	logger.Configure(conf)

	baseOpts := []fx.Option{
		// fx meta
		fx.WithLogger(logger.Fx),

		// Misc
		fx.Supply(conf),

		// Infrastructures
		infra.Module(),

		// Repositories
		repo.Module(),

		// Services
		service.Module(),

		// Global Singleton Inits: Keep those before controllers and workers so that the tracer
		// provider and sentry client are in place before the first snapshot is computed.
		fx.Invoke(infra.SentryInit),
		fx.Invoke(infra.TracingInit),

		// fx Extra Options
		fx.StartTimeout(10 * time.Second),
		// StopTimeout is not typically needed, since we're using fiber's Shutdown(),
		// in which fiber has its own IdleTimeout for controlling the shutdown timeout.
		// It acts as a countermeasure in case the fiber app is not properly shutting down.
		fx.StopTimeout(5 * time.Minute),
	}

	if ctx.Env == appcontext.EnvServer {
		baseOpts = append(baseOpts,
			// Servers
			server.Module(),

			// Controllers
			controller.Module(),

			// Workers
			workers.Module(),
		)
	}

	return append(baseOpts, additionalOpts...)
}

func New(ctx appcontext.Ctx, additionalOpts ...fx.Option) *fx.App {
	return fx.New(Options(ctx, additionalOpts...)...)
}
