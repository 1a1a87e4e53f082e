package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "lims"

const (
	AppEnvDev  = "development"
	AppEnvTest = "testing"
	AppEnvProd = "production"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Admin         AdminConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
	Pagination    PaginationConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LIMS_APP_ENV" default:"development"`
	Port         string `envconfig:"LIMS_APP_PORT" default:"5000"`
	ServiceName  string `envconfig:"LIMS_SERVICE_NAME" default:"Electronics Lab Inventory LIMS"`
	LogLevel     string `envconfig:"LIMS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LIMS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	// Driver selects the dialector: sqlite for local files, postgres for DSNs.
	Driver string `envconfig:"LIMS_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"LIMS_DB_DSN" default:"lims.db"`

	MaxOpenConns    int           `envconfig:"LIMS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LIMS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LIMS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LIMS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(db.Driver)) {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported db driver %q", db.Driver)
	}
	if db.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"LIMS_REDIS_URL"`
	Address      string        `envconfig:"LIMS_REDIS_ADDR"`
	Password     string        `envconfig:"LIMS_REDIS_PASSWORD"`
	DB           int           `envconfig:"LIMS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LIMS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LIMS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LIMS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LIMS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LIMS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all. Rate
// limiting switches off when it returns false.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"LIMS_JWT_SECRET" default:"jwt-secret-change-in-production"`
	Issuer            string `envconfig:"LIMS_JWT_ISSUER" default:"lims-backend"`
	ExpirationMinutes int    `envconfig:"LIMS_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LIMS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LIMS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LIMS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LIMS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LIMS_ARGON_KEY_LEN" default:"32"`
}

// AdminConfig describes the bootstrap operator account. Seeding only happens
// when a password is supplied.
type AdminConfig struct {
	Username string `envconfig:"LIMS_ADMIN_USERNAME" default:"admin"`
	Email    string `envconfig:"LIMS_ADMIN_EMAIL" default:"admin@lims.local"`
	Password string `envconfig:"LIMS_ADMIN_PASSWORD"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"LIMS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"LIMS_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"LIMS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	Origins []string `envconfig:"LIMS_CORS_ORIGINS" default:"*"`
}

type PaginationConfig struct {
	PerPage    int `envconfig:"LIMS_ITEMS_PER_PAGE" default:"20"`
	MaxPerPage int `envconfig:"LIMS_MAX_ITEMS_PER_PAGE" default:"100"`
}

type FeatureFlagsConfig struct {
	AutoMigrate    bool `envconfig:"LIMS_AUTO_MIGRATE" default:"false"`
	SeedSampleData bool `envconfig:"LIMS_SEED_SAMPLE_DATA" default:"true"`
}
