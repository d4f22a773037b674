// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

const defaultAuthSecret = "dev-identity-secret-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	NATSURL        string `mapstructure:"NATS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	// Identity provider settings. Tokens are verified with the RS256 public key
	// when present, otherwise with the HS256 shared secret.
	AuthJWTSecret    string `mapstructure:"AUTH_JWT_SECRET"`
	AuthPublicKeyPEM string `mapstructure:"AUTH_PUBLIC_KEY_PEM"`
	AuthIssuer       string `mapstructure:"AUTH_ISSUER"`

	FeedDefaultLimit int `mapstructure:"FEED_DEFAULT_LIMIT"`
	FeedMaxLimit     int `mapstructure:"FEED_MAX_LIMIT"`

	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AddConfigPath("../..")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	// The base config file is optional.
	_ = v.ReadInConfig()

	env := v.GetString("APP_ENV")
	if env != "" && env != "development" && env != "test" {
		v.SetConfigName("config." + env)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "user")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "pixelfeed")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("NATS_URL", "")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	v.SetDefault("AUTH_JWT_SECRET", defaultAuthSecret)
	v.SetDefault("AUTH_PUBLIC_KEY_PEM", "")
	v.SetDefault("AUTH_ISSUER", "")
	v.SetDefault("FEED_DEFAULT_LIMIT", 10)
	v.SetDefault("FEED_MAX_LIMIT", 50)
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_EXPORTER", "stdout")
	v.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	v.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
}

// IsProduction reports whether the configuration targets a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.AuthJWTSecret == "" && strings.TrimSpace(c.AuthPublicKeyPEM) == "" {
		return errors.New("either AUTH_JWT_SECRET or AUTH_PUBLIC_KEY_PEM is required")
	}
	if c.FeedDefaultLimit <= 0 {
		return errors.New("FEED_DEFAULT_LIMIT must be positive")
	}
	if c.FeedMaxLimit < c.FeedDefaultLimit {
		return errors.New("FEED_MAX_LIMIT must be at least FEED_DEFAULT_LIMIT")
	}

	if c.IsProduction() {
		if strings.TrimSpace(c.AuthPublicKeyPEM) == "" {
			if c.AuthJWTSecret == defaultAuthSecret {
				return errors.New("AUTH_JWT_SECRET must be changed from the default value in production")
			}
			if len(c.AuthJWTSecret) < 32 {
				return errors.New("AUTH_JWT_SECRET must be at least 32 characters in production")
			}
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	}

	return nil
}
