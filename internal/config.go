package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env           string              `mapstructure:"env" validate:"required,oneof=development test production"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security" validate:"required"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port               int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	BaseURL            string        `mapstructure:"base_url"`
	AllowedOrigins     string        `mapstructure:"allowed_origins"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute" validate:"min=0"`
	ReadHeaderTimeout  time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout" validate:"required"`
	Source          string        `mapstructure:"source" validate:"required"`
}

// SecurityConfig holds the token signing policy. Tokens minted on a user
// lookup live much longer than the one returned on registration.
type SecurityConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	JWTIssuer      string        `mapstructure:"jwt_issuer"`
	ReadTokenTTL   time.Duration `mapstructure:"read_token_ttl" validate:"required"`
	CreateTokenTTL time.Duration `mapstructure:"create_token_ttl" validate:"required"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

const (
	DefaultReadTokenTTL   = 120 * 24 * time.Hour
	DefaultCreateTokenTTL = time.Hour
)

// envConfig is the flat variable set read when running inside a container.
type envConfig struct {
	Env                string        `envconfig:"APP_ENV" default:"production"`
	Port               int           `envconfig:"PORT" default:"5000"`
	BaseURL            string        `envconfig:"BASE_URL"`
	AllowedOrigins     string        `envconfig:"ALLOWED_ORIGINS" default:"*"`
	RateLimitPerMinute int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"600"`
	ReadHeaderTimeout  time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout        time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout       time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout        time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`

	DatabaseURL     string        `envconfig:"DATABASE_URL" required:"true"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
	ConnMaxIdleTime time.Duration `envconfig:"DB_CONN_MAX_IDLE_TIME" default:"5m"`
	ConnectTimeout  time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"10s"`

	JWTSecret      string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer      string        `envconfig:"JWT_ISSUER" default:"permit-service"`
	ReadTokenTTL   time.Duration `envconfig:"READ_TOKEN_TTL" default:"2880h"`
	CreateTokenTTL time.Duration `envconfig:"CREATE_TOKEN_TTL" default:"1h"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// LoadConfigFromEnv builds the configuration from process environment variables.
func LoadConfigFromEnv() (*Config, error) {
	var env envConfig
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}

	return &Config{
		Env: env.Env,
		Server: ServerConfig{
			Port:               env.Port,
			BaseURL:            env.BaseURL,
			AllowedOrigins:     env.AllowedOrigins,
			RateLimitPerMinute: env.RateLimitPerMinute,
			ReadHeaderTimeout:  env.ReadHeaderTimeout,
			ReadTimeout:        env.ReadTimeout,
			WriteTimeout:       env.WriteTimeout,
			IdleTimeout:        env.IdleTimeout,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    env.MaxOpenConns,
			MaxIdleConns:    env.MaxIdleConns,
			ConnMaxLifetime: env.ConnMaxLifetime,
			ConnMaxIdleTime: env.ConnMaxIdleTime,
			ConnectTimeout:  env.ConnectTimeout,
			Source:          env.DatabaseURL,
		},
		Security: SecurityConfig{
			JWTSecret:      env.JWTSecret,
			JWTIssuer:      env.JWTIssuer,
			ReadTokenTTL:   env.ReadTokenTTL,
			CreateTokenTTL: env.CreateTokenTTL,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{Level: env.LogLevel, Format: env.LogFormat},
		},
	}, nil
}

func (c *Config) IsProduction() bool {
	return c != nil && c.Env == "production"
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		for _, origin := range c.Origins() {
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

// Origins splits the comma separated allow-list. An empty list allows every origin.
func (c *ServerConfig) Origins() []string {
	if strings.TrimSpace(c.AllowedOrigins) == "" {
		return []string{"*"}
	}
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, origin := range parts {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if c.CreateTokenTTL > c.ReadTokenTTL {
		return errors.New("create_token_ttl cannot exceed read_token_ttl")
	}
	return nil
}
