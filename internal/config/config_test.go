package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:             "8080",
		Env:              "development",
		AuthJWTSecret:    defaultAuthSecret,
		FeedDefaultLimit: 10,
		FeedMaxLimit:     50,
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "9999")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, 10, cfg.FeedDefaultLimit)
	assert.Equal(t, 50, cfg.FeedMaxLimit)
	assert.Equal(t, "pixelfeed", cfg.DBName)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid development config", mutate: func(*Config) {}},
		{
			name:    "missing port",
			mutate:  func(c *Config) { c.Port = "" },
			wantErr: "PORT is required",
		},
		{
			name: "no verification key",
			mutate: func(c *Config) {
				c.AuthJWTSecret = ""
				c.AuthPublicKeyPEM = ""
			},
			wantErr: "AUTH_JWT_SECRET or AUTH_PUBLIC_KEY_PEM",
		},
		{
			name:    "max limit below default",
			mutate:  func(c *Config) { c.FeedMaxLimit = 5 },
			wantErr: "FEED_MAX_LIMIT",
		},
		{
			name: "production with default secret",
			mutate: func(c *Config) {
				c.Env = "production"
				c.DBPassword = "s3cure"
			},
			wantErr: "changed from the default",
		},
		{
			name: "production with short secret",
			mutate: func(c *Config) {
				c.Env = "production"
				c.AuthJWTSecret = "short"
				c.DBPassword = "s3cure"
			},
			wantErr: "at least 32 characters",
		},
		{
			name: "production with default db password",
			mutate: func(c *Config) {
				c.Env = "production"
				c.AuthJWTSecret = strings.Repeat("k", 40)
				c.DBPassword = "password"
			},
			wantErr: "DB_PASSWORD",
		},
		{
			name: "production with public key skips secret checks",
			mutate: func(c *Config) {
				c.Env = "prod"
				c.AuthJWTSecret = ""
				c.AuthPublicKeyPEM = "-----BEGIN PUBLIC KEY-----"
				c.DBPassword = "s3cure"
				c.DBSSLMode = "require"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
