package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is built once in main and handed to every component that needs it.
type Config struct {
	Env  string `env:"APP_ENV" envDefault:"dev"`
	Port int    `env:"PORT" envDefault:"8000"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURL    string `env:"MONGODB_URL" envDefault:"mongodb://127.0.0.1:27017"`
	MongoDB     string `env:"MONGODB_DB" envDefault:"healthmate"`
	DBURL       string `env:"DATABASE_URL"`
	DB          DBConfig

	JWTSecret string        `env:"JWT_SECRET" envDefault:"your-secret-key"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"0s"`

	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	MaxBodyBytes       int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	RateLimitAuth      int           `env:"RATE_LIMIT_AUTH" envDefault:"20"`
	RateLimitWrites    int           `env:"RATE_LIMIT_WRITES" envDefault:"60"`
	RateLimitWindow    time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	SpotsCacheTTL time.Duration `env:"SPOTS_CACHE_TTL" envDefault:"5s"`

	OTelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`

	SMTP SMTPConfig

	SeedEmail    string `env:"SEED_USER_EMAIL"`
	SeedPassword string `env:"SEED_USER_PASSWORD"`

	ReconcileSchedule string `env:"RECONCILE_SCHEDULE" envDefault:"@every 5m"`
	WorkerHealthPort  int    `env:"WORKER_HEALTH_PORT" envDefault:"8081"`
}

type DBConfig struct {
	Host     string `env:"DB_HOST" envDefault:"127.0.0.1"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"healthmate"`
	Password string `env:"DB_PASSWORD" envDefault:"healthmate"`
	Name     string `env:"DB_NAME" envDefault:"healthmate"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	MaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"5"`
	MinConns        int32         `env:"DB_MIN_CONNS" envDefault:"0"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE" envDefault:"5m"`
	ConnectAttempts int           `env:"DB_CONNECT_ATTEMPTS" envDefault:"5"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"MAIL_FROM" envDefault:"no-reply@healthmate.local"`

	Timeout          time.Duration `env:"MAIL_TIMEOUT" envDefault:"5s"`
	FailureThreshold int           `env:"MAIL_FAILURE_THRESHOLD" envDefault:"5"`
	Cooldown         time.Duration `env:"MAIL_COOLDOWN" envDefault:"30s"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DBURL == "" {
		cfg.DBURL = cfg.DB.URL()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}

	if c.JWTTTL < 0 {
		return errors.New("JWT_TTL must not be negative")
	}

	return nil
}

func (d DBConfig) URL() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}
