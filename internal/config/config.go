package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DevOrigins are allowed cross-origin callers outside production.
var DevOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"http://localhost:4173",
	"http://localhost:8080",
}

type Config struct {
	Env         string `envconfig:"APP_ENV" default:"development"`
	Port        string `envconfig:"PORT" default:"3000"`
	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"false"`

	AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
	CORSOpenFallback bool     `envconfig:"CORS_OPEN_FALLBACK" default:"true"`
	ClientDistPath   string   `envconfig:"CLIENT_DIST_PATH" default:"client/dist"`

	JWTSecret   string        `envconfig:"JWT_SECRET"`
	JWTTTL      time.Duration `envconfig:"JWT_TTL" default:"1h"`
	AdminAPIKey string        `envconfig:"ADMIN_API_KEY"`

	WriteRateLimit  int           `envconfig:"RATE_LIMIT_WRITE_MAX" default:"60"`
	WriteRateWindow time.Duration `envconfig:"RATE_LIMIT_WRITE_WINDOW" default:"1m"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"user-events"`
	AMQPURL      string   `envconfig:"AMQP_URL"`
	AMQPExchange string   `envconfig:"AMQP_EXCHANGE" default:"user-events"`

	EventsBreakerFailures uint32        `envconfig:"EVENTS_BREAKER_FAILURES" default:"5"`
	EventsBreakerTimeout  time.Duration `envconfig:"EVENTS_BREAKER_TIMEOUT" default:"30s"`

	RedisURL string `envconfig:"REDIS_URL"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// IsDev reports whether the service runs outside production.
func (c Config) IsDev() bool {
	return !strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

// Load reads the process environment into a validated Config.
func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}

	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.JWTSecret = strings.TrimSpace(c.JWTSecret)
	c.AdminAPIKey = strings.TrimSpace(c.AdminAPIKey)

	origins, err := normalizeOrigins(c.AllowedOrigins)
	if err != nil {
		return Config{}, err
	}
	c.AllowedOrigins = origins
	c.KafkaBrokers = trimAll(c.KafkaBrokers)
	c.AMQPURL = strings.TrimSpace(c.AMQPURL)
	c.RedisURL = strings.TrimSpace(c.RedisURL)

	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is not set")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, c.StoreDriver)
	}
	if c.WriteRateLimit < 0 {
		return errors.New("RATE_LIMIT_WRITE_MAX must not be negative")
	}
	if c.WriteRateLimit > 0 && c.WriteRateWindow <= 0 {
		return errors.New("RATE_LIMIT_WRITE_WINDOW must be positive")
	}
	if len(c.KafkaBrokers) > 0 && c.AMQPURL != "" {
		return errors.New("set either KAFKA_BROKERS or AMQP_URL, not both")
	}
	if c.JWTSecret != "" && c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	return nil
}

// normalizeOrigins trims entries, drops blanks and trailing slashes, and
// rejects anything that is not scheme://host[:port].
func normalizeOrigins(in []string) ([]string, error) {
	var out []string
	for _, raw := range in {
		o := strings.TrimRight(strings.TrimSpace(raw), "/")
		if o == "" {
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Scheme == "" || u.Host == "" || (u.Path != "" && u.Path != "/") {
			return nil, fmt.Errorf("ALLOWED_ORIGINS: invalid origin %q", raw)
		}
		out = append(out, strings.ToLower(u.Scheme)+"://"+strings.ToLower(u.Host))
	}
	return out, nil
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// LoadDotenv loads the first .env found in the working directory or up to
// two parents. Existing environment variables win.
func LoadDotenv() string {
	for _, p := range []string{".env", filepath.Join("..", ".env"), filepath.Join("..", "..", ".env")} {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err == nil {
				return p
			}
		}
	}
	return ""
}
