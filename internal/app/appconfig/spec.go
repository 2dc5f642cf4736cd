package appconfig

import (
	"time"

	"eversoul.dev/stageguide/internal/app/appcontext"
)

type ConfigSpec struct {
	// ServiceAddress is the listen address would listen on for serving normal service requests.
	ServiceAddress string `required:"true" split_words:"true" default:"localhost:9010"`

	// LogJsonStdout is whether to log JSON logs (instead of pretty-print logs) to stdout for the ease of log collection.
	LogJsonStdout bool `split_words:"true" default:"false"`

	// LogFilePath is where the rotated log file is written.
	LogFilePath string `split_words:"true" default:"logs/app.log"`

	// LogFileMaxSizeMB is the size a log file may grow to before it is rotated.
	LogFileMaxSizeMB int `split_words:"true" default:"100"`

	// LogFileMaxBackups is the number of rotated log files to retain.
	LogFileMaxBackups int `split_words:"true" default:"10"`

	// TrustedProxies is a list of trusted proxies that are trusted to report a real IP via the X-Forwarded-For header.
	TrustedProxies []string `required:"true" split_words:"true" default:"::1,127.0.0.1,10.0.0.0/8"`

	// DevMode to indicate development mode. When true, the program would spin up utilities for debugging and
	// provide a more contextual message when encountered a panic. See internal/server/httpserver/http.go for the
	// actual implementation details.
	DevMode bool `split_words:"true"`

	// infrastructure components connection instructions

	// PostgresDSN is the data source name for the PostgreSQL database. See
	// https://bun.uptrace.dev/postgres/#pgdriver for more details on how to construct a PostgreSQL DSN.
	PostgresDSN string `required:"true" split_words:"true"`

	PostgresMaxOpenConns    int           `split_words:"true" default:"10"`
	PostgresMaxIdleConns    int           `split_words:"true" default:"2"`
	PostgresConnMaxLifeTime time.Duration `split_words:"true" default:"5m"`
	PostgresConnMaxIdleTime time.Duration `split_words:"true" default:"5m"`

	BunDebugVerbose bool `split_words:"true"`

	// RedisURL is the URL of the Redis server, by default redis db 2. See
	// https://pkg.go.dev/github.com/redis/go-redis/v9#ParseURL for more information on how to construct a Redis URL.
	RedisURL string `required:"true" split_words:"true" default:"redis://127.0.0.1:6379/2"`

	// SentryDSN is the DSN of the Sentry server. See https://pkg.go.dev/github.com/getsentry/sentry-go#ClientOptions
	SentryDSN string `split_words:"true"`

	// HTTPServerShutdownTimeout is the timeout for the HTTP server to shut down gracefully.
	HTTPServerShutdownTimeout time.Duration `required:"true" split_words:"true" default:"60s"`

	// AdminKey is the bearer token guarding the cache administration endpoints.
	// Leaving this empty rejects every administration request.
	AdminKey string `split_words:"true"`

	// game data origin

	// OriginBaseURL is the root under which tables are served as {source}/{table}.json.
	OriginBaseURL string `required:"true" split_words:"true" default:"https://edgeone.gh-proxy.com/raw.githubusercontent.com/PackageInstaller/DataTable/master/EverSoul/MasterData/Global"`

	// OriginTimeout bounds a single table download.
	OriginTimeout time.Duration `split_words:"true" default:"30s"`

	// OriginUserAgent is sent with every table download.
	OriginUserAgent string `split_words:"true" default:"EverSoul-Strategy-Web/1.0"`

	// tiered cache

	// CacheExpiry is how long a persisted table is considered fresh after it was fetched.
	CacheExpiry time.Duration `split_words:"true" default:"2h"`

	// CacheMemoryMaxEntries bounds the in-process tier. Once exceeded only the most
	// recently added 80% are kept.
	CacheMemoryMaxEntries int `split_words:"true" default:"50"`

	// CachePersistBackend selects the persisted tier: postgres or redis.
	CachePersistBackend PersistBackend `split_words:"true" default:"postgres"`

	// refresh

	// RefreshWorkerEnabled runs an automatic refresh of every source on an interval.
	RefreshWorkerEnabled bool `split_words:"true" default:"false"`

	// RefreshWorkerInterval describes the interval in-between automatic refreshes.
	RefreshWorkerInterval time.Duration `split_words:"true" default:"2h"`

	// RefreshRetryAttempts is how many times a table download is attempted during a refresh.
	RefreshRetryAttempts uint `split_words:"true" default:"2"`

	// RefreshRetryDelay is the base delay in-between refresh download attempts.
	RefreshRetryDelay time.Duration `split_words:"true" default:"2s"`
}

type Config struct {
	// ConfigSpec is the configuration specification injected to the config.
	ConfigSpec

	// AppContext is the application context
	AppContext appcontext.Ctx
}
