package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "HTTP_ADDR", "DB_MAX_CONNS", "DB_STATEMENT_TIMEOUT", "REDIS_URL"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10, cfg.DBMaxConns)
	assert.Equal(t, 5*time.Second, cfg.DBStatementTimeout)
	assert.Empty(t, cfg.RedisURL)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("DB_STATEMENT_TIMEOUT", "750ms")
	t.Setenv("IDEMPOTENCY_TTL", "not-a-duration")

	cfg := Load()

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 25, cfg.DBMaxConns)
	assert.Equal(t, 750*time.Millisecond, cfg.DBStatementTimeout)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
}
