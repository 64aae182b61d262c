package appconfig

import (
	"time"

	"exusiai.dev/booking-backend/internal/app/appcontext"
)

type ConfigSpec struct {
	// ServiceAddress is the listen address would listen on for serving normal service requests.
	ServiceAddress string `required:"true" split_words:"true" default:"localhost:9020" validate:"hostname_port"`

	// LogJsonStdout is whether to log JSON logs (instead of pretty-print logs) to stdout for the ease of log collection.
	LogJsonStdout bool `split_words:"true" default:"false"`

	// LogFile is the path of the rotated log file. Leaving this empty disables file logging.
	LogFile string `split_words:"true" default:"logs/app.log"`

	// TrustedProxies is a list of trusted proxies that are trusted to report a real IP via the X-Forwarded-For header.
	TrustedProxies []string `required:"true" split_words:"true" default:"::1,127.0.0.1,10.0.0.0/8"`

	// DevMode to indicate development mode. When true, the program would spin up utilities for debugging such as
	// pprof and the verbose bun query logger.
	DevMode bool `split_words:"true"`

	// TracingEnabled to indicate whether to enable OpenTelemetry tracing.
	TracingEnabled bool `split_words:"true"`

	// TracingExporters to indicate which exporters to use for tracing.
	// Valid values are: otlp, stdout (for debug).
	TracingExporters []string `split_words:"true" default:"otlp" validate:"dive,oneof=otlp stdout"`

	// TracingSampleRate to indicate the sampling rate for tracing.
	// Valid values are: 0.0 (disabled), 1.0 (all traces), or a value between 0.0 and 1.0 (sampling rate).
	TracingSampleRate float64 `split_words:"true" default:"1.0" validate:"gte=0,lte=1"`

	// infrastructure components connection instructions

	// PostgresDSN is the data source name for the PostgreSQL database. See
	// https://bun.uptrace.dev/postgres/#pgdriver for more details on how to construct a PostgreSQL DSN.
	PostgresDSN string `required:"true" split_words:"true"`

	PostgresMaxOpenConns    int           `split_words:"true" default:"10"`
	PostgresMaxIdleConns    int           `split_words:"true" default:"2"`
	PostgresConnMaxLifeTime time.Duration `split_words:"true" default:"5m"`
	PostgresConnMaxIdleTime time.Duration `split_words:"true" default:"5m"`

	BunDebugVerbose bool `split_words:"true"`

	// RedisURL is the URL of the Redis server. See https://pkg.go.dev/github.com/redis/go-redis/v9#ParseURL
	// for more information on how to construct a Redis URL.
	RedisURL string `required:"true" split_words:"true" default:"redis://127.0.0.1:6379/2"`

	// SentryDSN is the DSN of the Sentry server. See https://pkg.go.dev/github.com/getsentry/sentry-go#ClientOptions
	SentryDSN string `split_words:"true"`

	// HTTPServerShutdownTimeout is the timeout for the HTTP server to shut down gracefully.
	HTTPServerShutdownTimeout time.Duration `required:"true" split_words:"true" default:"60s"`

	// AdminKey is the key used to authenticate the admin API.
	AdminKey string `split_words:"true"`

	// MetricsQueryTimeout bounds every single count query issued by the metrics aggregator.
	// A query exceeding it is treated as failed and contributes zero to the snapshot.
	MetricsQueryTimeout time.Duration `required:"true" split_words:"true" default:"5s" validate:"gt=0"`

	// MetricsQueryAttempts is how many times a failing count query is attempted before its slot
	// is zero-filled. 1 means no retry.
	MetricsQueryAttempts uint `required:"true" split_words:"true" default:"1" validate:"gte=1,lte=5"`

	// MetricsRefreshInterval is the interval in-between dashboard refreshes run by the worker.
	// Zero disables periodic refreshing.
	MetricsRefreshInterval time.Duration `split_words:"true" default:"0s" validate:"gte=0"`

	// MetricsRefreshOnStart triggers one dashboard refresh right after the server starts.
	MetricsRefreshOnStart bool `split_words:"true" default:"true"`

	// MetricsCacheTTL is how long a snapshot computed for GET /metrics/snapshot is kept in redis.
	// Zero disables caching.
	MetricsCacheTTL time.Duration `split_words:"true" default:"0s" validate:"gte=0"`
}

type Config struct {
	// ConfigSpec is the configuration specification injected to the config.
	ConfigSpec

	// AppContext is the application context
	AppContext appcontext.Ctx
}
