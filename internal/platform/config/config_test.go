package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cret")

	cfg := FromEnv()

	assert.Equal(t, "HS256", cfg.Token.Algorithm)
	assert.Equal(t, 60*time.Minute, cfg.Token.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Token.RefreshTTL)
	assert.Equal(t, 60*time.Minute, cfg.Token.IDTokenTTL)
	assert.True(t, cfg.OAuth.RequireTLS)
	assert.True(t, cfg.OAuth.RequireClientAuth)
	assert.Equal(t, "unique-sid", cfg.OAuth.SessionCookieName)
	assert.Equal(t, time.Hour, cfg.OAuth.SessionTTL)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 60, cfg.RateLimit.AuthorizePerMinute)
	assert.Equal(t, 30, cfg.RateLimit.TokenPerMinute)
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("JWT_ALGORITHM", "rs256")
	t.Setenv("RSA_PRIVATE_KEY_PATH", "/keys/private.pem")
	t.Setenv("RSA_PUBLIC_KEY_PATH", "/keys/public.pem")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "15")
	t.Setenv("REFRESH_TOKEN_EXPIRE_DAYS", "7")
	t.Setenv("REQUIRE_TLS", "false")
	t.Setenv("REQUIRE_CLIENT_AUTH", "off")
	t.Setenv("ISSUER", "https://auth.example/")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("RATE_LIMIT_TOKEN_PER_MINUTE", "5")
	t.Setenv("SESSION_TTL", "8h")

	cfg := FromEnv()

	assert.Equal(t, "RS256", cfg.Token.Algorithm)
	assert.Equal(t, 15*time.Minute, cfg.Token.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Token.RefreshTTL)
	assert.False(t, cfg.OAuth.RequireTLS)
	assert.False(t, cfg.OAuth.RequireClientAuth)
	assert.Equal(t, "https://auth.example", cfg.OAuth.Issuer)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5, cfg.RateLimit.TokenPerMinute)
	assert.Equal(t, 8*time.Hour, cfg.OAuth.SessionTTL)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	t.Run("hmac without secret", func(t *testing.T) {
		cfg := FromEnv()
		cfg.Token.SecretKey = ""
		assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET_KEY")
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		cfg := FromEnv()
		cfg.Token.Algorithm = "NONE"
		assert.ErrorContains(t, cfg.Validate(), "unsupported")
	})

	t.Run("non-positive lifetime", func(t *testing.T) {
		cfg := FromEnv()
		cfg.Token.SecretKey = "k"
		cfg.Token.AccessTTL = 0
		assert.ErrorContains(t, cfg.Validate(), "positive")
	})

	t.Run("zero session lifetime", func(t *testing.T) {
		cfg := FromEnv()
		cfg.Token.SecretKey = "k"
		cfg.OAuth.SessionTTL = 0
		assert.ErrorContains(t, cfg.Validate(), "SESSION_TTL")
	})

	t.Run("dev seed without secret", func(t *testing.T) {
		cfg := FromEnv()
		cfg.Token.SecretKey = "k"
		cfg.OAuth.SeedDevClient = true
		cfg.OAuth.DevClientSecret = ""
		assert.ErrorContains(t, cfg.Validate(), "DEV_CLIENT_SECRET")
	})

	t.Run("enabled rate limit needs positive limits", func(t *testing.T) {
		cfg := FromEnv()
		cfg.Token.SecretKey = "k"
		cfg.RateLimit.TokenPerMinute = 0
		assert.ErrorContains(t, cfg.Validate(), "rate limits")

		cfg.RateLimit.Enabled = false
		assert.NoError(t, cfg.Validate())
	})
}
