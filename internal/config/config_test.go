package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Shop.WishlistCapacity)
	assert.Equal(t, 0.01, cfg.Shop.PriceTolerance)
	assert.Equal(t, 15*time.Second, cfg.Notification.Timeout)
	assert.Equal(t, "token", cfg.JWT.CookieName)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.AccessTokenExpiry)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("WISHLIST_CAPACITY", "4")
	t.Setenv("NOTIFICATION_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Shop.WishlistCapacity)
	assert.Equal(t, 3*time.Second, cfg.Notification.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORSAllowedOrigins)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:       ServerConfig{Port: "4000"},
			Store:        StoreConfig{Driver: "postgres"},
			Database:     DatabaseConfig{Host: "db", Name: "books", User: "books"},
			Redis:        RedisConfig{Host: "redis"},
			JWT:          JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
			Shop:         ShopConfig{WishlistCapacity: 10, PriceTolerance: 0.01},
			Notification: NotificationConfig{Timeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "short secret", mutate: func(c *Config) { c.JWT.Secret = "short" }, wantErr: "JWT_SECRET"},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "sqlite" }, wantErr: "STORE_DRIVER"},
		{name: "memory skips database", mutate: func(c *Config) { c.Store.Driver = "memory"; c.Database = DatabaseConfig{} }},
		{name: "missing db host", mutate: func(c *Config) { c.Database.Host = "" }, wantErr: "DB_HOST"},
		{name: "zero capacity", mutate: func(c *Config) { c.Shop.WishlistCapacity = 0 }, wantErr: "WISHLIST_CAPACITY"},
		{name: "no timeout", mutate: func(c *Config) { c.Notification.Timeout = 0 }, wantErr: "NOTIFICATION_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
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
