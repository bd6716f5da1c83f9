package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("PRIMER_TEST_KEY", "value")
	assert.Equal(t, "value", getEnv("PRIMER_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", getEnv("PRIMER_TEST_MISSING", "fallback"))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("PRIMER_TEST_EXPIRY", "45m")
	assert.Equal(t, 45*time.Minute, getEnvDuration("PRIMER_TEST_EXPIRY", time.Hour))

	t.Setenv("PRIMER_TEST_EXPIRY", "bogus")
	assert.Equal(t, time.Hour, getEnvDuration("PRIMER_TEST_EXPIRY", time.Hour))

	assert.Equal(t, time.Hour, getEnvDuration("PRIMER_TEST_MISSING", time.Hour))
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("MONGO_URI", "")
	t.Setenv("MONGO_DB", "")
	t.Setenv("TOKEN_EXPIRY", "")

	cfg := LoadConfig()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "primer", cfg.MongoDBName)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenExpiry)
}
