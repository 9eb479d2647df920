// Package config loads app configuration from the environment (and an
// optional .env file) using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the storefront backend configuration. Empty DatabaseURL,
// RedisAddr, or KafkaBrokers select the in-memory fallbacks.
type Config struct {
	ListenAddr string `mapstructure:"LISTEN_ADDR"`
	// DatabaseURL is the Postgres DSN for catalog/customer/order storage.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// RedisAddr is the cart cache address (host:port).
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	// KafkaBrokers is a comma-separated broker list for order events.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`

	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `mapstructure:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `mapstructure:"REFRESH_TOKEN_TTL"`

	MetricsEnabled bool   `mapstructure:"METRICS_ENABLED"`
	MetricsToken   string `mapstructure:"METRICS_TOKEN"`
}

// Load reads .env if present (env vars win), applies defaults, and
// validates the result.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !strings.Contains(err.Error(), "no such file") {
			return nil, err
		}
	}
	v.AutomaticEnv()

	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("KAFKA_TOPIC", "orders.created")
	v.SetDefault("ACCESS_TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h")
	v.SetDefault("METRICS_ENABLED", false)

	// AutomaticEnv alone does not surface unbound keys into Unmarshal.
	for _, key := range []string{
		"LISTEN_ADDR", "DATABASE_URL", "REDIS_ADDR", "KAFKA_BROKERS", "KAFKA_TOPIC",
		"JWT_SECRET", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL",
		"METRICS_ENABLED", "METRICS_TOKEN",
	} {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 bytes")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		return errors.New("REFRESH_TOKEN_TTL must exceed ACCESS_TOKEN_TTL")
	}
	return nil
}

// Brokers splits KafkaBrokers into a broker list, nil when unset.
func (c *Config) Brokers() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
