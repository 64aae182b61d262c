package appconfig

import (
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"exusiai.dev/booking-backend/internal/app/appcontext"
	"exusiai.dev/booking-backend/internal/pkg/projectpath"
)

const EnvPrefix = "booking"

func Parse(ctx appcontext.Ctx) (*Config, error) {
	err := godotenv.Load(filepath.Join(projectpath.Root, ".env"))
	if err != nil {
		log.Warn().Err(err).Msg("failed to load .env file")
	}

	var spec ConfigSpec
	err = envconfig.Process(EnvPrefix, &spec)
	if err != nil {
		_ = envconfig.Usage(EnvPrefix, &spec)
		return nil, fmt.Errorf("failed to parse configuration: %w. More info on how to configure this backend is located at https://pkg.go.dev/exusiai.dev/booking-backend/internal/app/appconfig#ConfigSpec", err)
	}

	if err := validator.New().Struct(&spec); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Config{
		ConfigSpec: spec,
		AppContext: ctx,
	}, nil
}
