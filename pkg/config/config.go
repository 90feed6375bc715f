package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "WAYFARER_DB_DSN"
	EnvDBHost = "WAYFARER_DB_HOST"
	EnvDBUser = "WAYFARER_DB_USER"
	EnvDBName = "WAYFARER_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Duffel       DuffelConfig
	Stripe       StripeConfig
	Booking      BookingConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"WAYFARER_APP_ENV" required:"true"`
	Port         string   `envconfig:"WAYFARER_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"WAYFARER_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"WAYFARER_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"WAYFARER_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WAYFARER_DB_DSN"`
	Driver string `envconfig:"WAYFARER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WAYFARER_DB_HOST"`
	LegacyPort     int    `envconfig:"WAYFARER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WAYFARER_DB_USER"`
	LegacyPassword string `envconfig:"WAYFARER_DB_PASSWORD"`
	LegacyName     string `envconfig:"WAYFARER_DB_NAME"`
	LegacySSLMode  string `envconfig:"WAYFARER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WAYFARER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WAYFARER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WAYFARER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WAYFARER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WAYFARER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WAYFARER_REDIS_ADDR"`
	Password     string        `envconfig:"WAYFARER_REDIS_PASSWORD"`
	DB           int           `envconfig:"WAYFARER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WAYFARER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WAYFARER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WAYFARER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WAYFARER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WAYFARER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type DuffelConfig struct {
	APIKey  string        `envconfig:"WAYFARER_DUFFEL_API_KEY"`
	BaseURL string        `envconfig:"WAYFARER_DUFFEL_BASE_URL" default:"https://api.duffel.com"`
	Timeout time.Duration `envconfig:"WAYFARER_DUFFEL_TIMEOUT" default:"30s"`
}

type StripeConfig struct {
	APIKey     string `envconfig:"WAYFARER_STRIPE_API_KEY"`
	Secret     string `envconfig:"WAYFARER_STRIPE_SECRET"`
	Env        string `envconfig:"WAYFARER_STRIPE_ENV" default:"test"`
	SuccessURL string `envconfig:"WAYFARER_STRIPE_SUCCESS_URL" required:"true"`
	CancelURL  string `envconfig:"WAYFARER_STRIPE_CANCEL_URL" required:"true"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type BookingConfig struct {
	StatusTTL        time.Duration `envconfig:"WAYFARER_BOOKING_STATUS_TTL" default:"720h"`
	PollInitialDelay time.Duration `envconfig:"WAYFARER_BOOKING_POLL_INITIAL_DELAY" default:"2s"`
	PollMaxInterval  time.Duration `envconfig:"WAYFARER_BOOKING_POLL_MAX_INTERVAL" default:"10s"`
	PollMaxAttempts  int           `envconfig:"WAYFARER_BOOKING_POLL_MAX_ATTEMPTS" default:"8"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WAYFARER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WAYFARER_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
