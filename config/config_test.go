package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8082", cfg.HTTPAddr)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, "egp", cfg.Currency)
	assert.Equal(t, "http://localhost:4200/success", cfg.SuccessURL)
	assert.Equal(t, "http://localhost:4200/cart", cfg.CancelURL)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/shop?sslmode=disable")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CHECKOUT_CURRENCY", "USD")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "usd", cfg.Currency)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing dsn":    {"STORE_DRIVER": "postgres", "JWT_SECRET": "x"},
		"missing secret": {"STORE_DRIVER": "memory"},
		"bad driver":     {"STORE_DRIVER": "sqlite", "JWT_SECRET": "x"},
		"bad ttl":        {"STORE_DRIVER": "memory", "JWT_SECRET": "x", "SESSION_TTL": "soon"},
		"zero ttl":       {"STORE_DRIVER": "memory", "JWT_SECRET": "x", "SESSION_TTL": "0s"},
		"bad level":      {"STORE_DRIVER": "memory", "JWT_SECRET": "x", "LOG_LEVEL": "loud"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "")
			t.Setenv("JWT_SECRET", "")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
