package appcontext

const (
	// EnvServer runs the HTTP server together with the refresh worker.
	EnvServer Env = iota
	// EnvCLI runs a one-shot command; no server, controllers or workers are started.
	EnvCLI
)

type Env int

type Ctx struct {
	Env Env
}

func Declare(env Env) Ctx {
	return Ctx{
		Env: env,
	}
}
