package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultAPIURL         = "http://localhost:5000/api"
	DefaultRequestTimeout = 10 * time.Second
)

// Config holds both the client settings and the reference API server settings.
// Values come from app.env in the given path and are overridden by the environment.
type Config struct {
	// Client
	APIBaseURL     string        `mapstructure:"STOREFRONT_API_URL"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	SessionBackend string        `mapstructure:"SESSION_BACKEND"` // memory, file or redis
	SessionFile    string        `mapstructure:"SESSION_FILE"`
	RedisURL       string        `mapstructure:"REDIS_URL"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`

	// Reference API server
	ServerPort     string  `mapstructure:"SERVER_PORT"`
	JWTSecret      string  `mapstructure:"JWT_SECRET"`
	ClientOrigin   string  `mapstructure:"CLIENT_ORIGIN"`
	AWSRegion      string  `mapstructure:"AWS_REGION"`
	EmailFrom      string  `mapstructure:"EMAIL_FROM"`
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("STOREFRONT_API_URL", DefaultAPIURL)
	v.SetDefault("REQUEST_TIMEOUT", DefaultRequestTimeout)
	v.SetDefault("SESSION_BACKEND", "file")
	v.SetDefault("SESSION_FILE", ".storefront-session.json")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_PORT", "5000")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("CLIENT_ORIGIN", "http://localhost:5173")
	v.SetDefault("AWS_REGION", "")
	v.SetDefault("EMAIL_FROM", "")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	if err := v.ReadInConfig(); err != nil {
		// A missing app.env is fine, everything has a default or comes from the environment.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config.LoadConfig: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config.LoadConfig: unmarshal: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.SessionBackend {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: REQUEST_TIMEOUT must be positive")
	}
	return nil
}
