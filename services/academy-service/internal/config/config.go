package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/vasapolrittideah/zacademy-api/shared/mailer"
	"github.com/vasapolrittideah/zacademy-api/shared/provider"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	dbPasswordPlaceholder = "<db_password>"
)

// AcademyServiceConfig is the complete runtime configuration of the academy service.
type AcademyServiceConfig struct {
	Environment      string   `env:"APP_ENV"            envDefault:"development"`
	ServiceName      string   `env:"SERVICE_NAME"       envDefault:"academy-service"`
	HTTPAddr         string   `env:"HTTP_ADDR"          envDefault:":4000"`
	GRPCHealthAddr   string   `env:"GRPC_HEALTH_ADDR"   envDefault:":4001"`
	ClientURL        string   `env:"CLIENT_URL"         envDefault:"http://localhost:5173"`
	AllowedOrigins   []string `env:"CLIENT_URLS"        envSeparator:","`
	PasswordResetURL string   `env:"PASSWORD_RESET_URL"`
	LogLevel         string   `env:"LOG_LEVEL"          envDefault:"info"`
	// TrustProxyHeaders takes the client address from X-Forwarded-For and X-Real-IP.
	// Enable it only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	Database  DatabaseConfig        `envPrefix:"DB_"`
	Token     TokenConfig           `envPrefix:"JWT_"`
	OTP       OTPConfig             `envPrefix:"OTP_"`
	SMTP      mailer.Config         `envPrefix:"SMTP_"`
	Google    provider.GoogleConfig `envPrefix:"GOOGLE_"`
	Redis     RedisConfig           `envPrefix:"REDIS_"`
	RateLimit RateLimitConfig       `envPrefix:"RATE_LIMIT_"`
	Consul    ConsulConfig          `envPrefix:"CONSUL_"`
	Kafka     KafkaConfig           `envPrefix:"KAFKA_"`
}

type DatabaseConfig struct {
	ConnectionString string `env:"CONNECTION_STRING"`
	Password         string `env:"PASSWORD"`
	Name             string `env:"NAME"              envDefault:"zacademy"`
}

// URI returns the connection string with the password placeholder substituted.
func (c DatabaseConfig) URI() string {
	return strings.ReplaceAll(c.ConnectionString, dbPasswordPlaceholder, c.Password)
}

type TokenConfig struct {
	Secret                 string        `env:"SECRET"`
	ExpiresIn              time.Duration `env:"EXPIRES_IN"                envDefault:"72h"`
	Issuer                 string        `env:"ISSUER"                    envDefault:"zacademy-api"`
	PasswordResetSecret    string        `env:"PASSWORD_RESET_SECRET"`
	PasswordResetExpiresIn time.Duration `env:"PASSWORD_RESET_EXPIRES_IN" envDefault:"15m"`
}

type OTPConfig struct {
	ExpiresIn   time.Duration `env:"EXPIRES_IN"   envDefault:"10m"`
	MaxAttempts int           `env:"MAX_ATTEMPTS" envDefault:"5"`
}

type RedisConfig struct {
	URL string `env:"URL" envDefault:"redis://localhost:6379/0"`
}

type RateLimitConfig struct {
	Max    int           `env:"MAX"    envDefault:"100"`
	Window time.Duration `env:"WINDOW" envDefault:"30m"`
}

// ConsulConfig enables service registration when Addr is set.
type ConsulConfig struct {
	Addr          string `env:"ADDR"`
	AdvertiseHost string `env:"ADVERTISE_HOST" envDefault:"localhost"`
}

// KafkaConfig enables domain event publishing when Brokers is set.
type KafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC"   envDefault:"zacademy.events"`
}

// Load reads the optional dotenv files and parses the environment into a validated config.
func Load(dotenvFiles ...string) (*AcademyServiceConfig, error) {
	for _, file := range dotenvFiles {
		// Missing files are fine; the environment may already be populated.
		_ = godotenv.Load(file)
	}

	cfg, err := env.ParseAs[AcademyServiceConfig]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.PasswordResetURL == "" {
		cfg.PasswordResetURL = strings.TrimRight(cfg.ClientURL, "/") + "/reset-password"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{cfg.ClientURL}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *AcademyServiceConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Validate fails on missing secrets and nonsensical limits.
func (c *AcademyServiceConfig) Validate() error {
	var errs []error

	if c.Database.ConnectionString == "" {
		errs = append(errs, errors.New("missing DB_CONNECTION_STRING environment variable"))
	}
	if strings.Contains(c.Database.ConnectionString, dbPasswordPlaceholder) && c.Database.Password == "" {
		errs = append(errs, errors.New("missing DB_PASSWORD environment variable"))
	}
	if c.Token.Secret == "" {
		errs = append(errs, errors.New("missing JWT_SECRET environment variable"))
	}
	if c.Token.PasswordResetSecret == "" {
		errs = append(errs, errors.New("missing JWT_PASSWORD_RESET_SECRET environment variable"))
	}
	if c.Token.PasswordResetSecret != "" && c.Token.PasswordResetSecret == c.Token.Secret {
		errs = append(errs, errors.New("JWT_PASSWORD_RESET_SECRET must differ from JWT_SECRET"))
	}
	if c.Token.ExpiresIn <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}
	if c.OTP.ExpiresIn <= 0 {
		errs = append(errs, errors.New("OTP_EXPIRES_IN must be positive"))
	}
	if c.OTP.MaxAttempts <= 0 {
		errs = append(errs, errors.New("OTP_MAX_ATTEMPTS must be positive"))
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive"))
	}
	if err := c.SMTP.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Google.ClientID == "" || c.Google.ClientSecret == "" || c.Google.CallbackURL == "" {
		errs = append(errs, errors.New("missing GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET or GOOGLE_CALLBACK_URL environment variable"))
	}

	return errors.Join(errs...)
}
