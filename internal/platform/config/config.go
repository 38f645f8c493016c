// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full runtime configuration, built once in main.
type Config struct {
	Server    Server
	Log       Log
	Token     Token
	OAuth     OAuth
	Database  Database
	Redis     RedisConfig
	Kafka     Kafka
	RateLimit RateLimit
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type Log struct {
	Level  string
	Format string
}

// Token holds signing material and lifetimes for issued tokens.
type Token struct {
	Algorithm         string
	SecretKey         string
	RSAPrivateKeyPath string
	RSAPublicKeyPath  string
	AccessTTL         time.Duration
	RefreshTTL        time.Duration
	IDTokenTTL        time.Duration
}

// OAuth holds authorization/token endpoint policy.
type OAuth struct {
	Issuer            string
	FrontendURL       string
	RequireTLS        bool
	RequireClientAuth bool
	SessionCookieName string
	SessionTTL        time.Duration
	// SeedDevClient registers a demo app and user in memory mode.
	SeedDevClient   bool
	DevClientSecret string
}

type Database struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the optional Redis backend. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka configures the optional audit stream. No brokers disables it.
type Kafka struct {
	Brokers    []string
	AuditTopic string
}

// RateLimit caps requests per client IP and minute on /auth and /token.
type RateLimit struct {
	Enabled            bool
	AuthorizePerMinute int
	TokenPerMinute     int
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            getEnv("UNIQUE_ADDR", ":8080"),
			ReadTimeout:     getDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: Log{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Token: Token{
			Algorithm:         strings.ToUpper(getEnv("JWT_ALGORITHM", "HS256")),
			SecretKey:         os.Getenv("JWT_SECRET_KEY"),
			RSAPrivateKeyPath: os.Getenv("RSA_PRIVATE_KEY_PATH"),
			RSAPublicKeyPath:  os.Getenv("RSA_PUBLIC_KEY_PATH"),
			AccessTTL:         time.Duration(getInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60)) * time.Minute,
			RefreshTTL:        time.Duration(getInt("REFRESH_TOKEN_EXPIRE_DAYS", 30)) * 24 * time.Hour,
			IDTokenTTL:        time.Duration(getInt("ID_TOKEN_EXPIRE_MINUTES", 60)) * time.Minute,
		},
		OAuth: OAuth{
			Issuer:            strings.TrimRight(getEnv("ISSUER", "http://localhost:8080"), "/"),
			FrontendURL:       strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
			RequireTLS:        getBool("REQUIRE_TLS", true),
			RequireClientAuth: getBool("REQUIRE_CLIENT_AUTH", true),
			SessionCookieName: getEnv("SESSION_COOKIE_NAME", "unique-sid"),
			SessionTTL:        getDuration("SESSION_TTL", time.Hour),
			SeedDevClient:     getBool("SEED_DEV_CLIENT", false),
			DevClientSecret:   os.Getenv("DEV_CLIENT_SECRET"),
		},
		Database: Database{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers:    getList("KAFKA_BROKERS", nil),
			AuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "unique.audit"),
		},
		RateLimit: RateLimit{
			Enabled:            getBool("RATE_LIMIT_ENABLED", true),
			AuthorizePerMinute: getInt("RATE_LIMIT_AUTHORIZE_PER_MINUTE", 60),
			TokenPerMinute:     getInt("RATE_LIMIT_TOKEN_PER_MINUTE", 30),
		},
	}
}

// Validate rejects configurations the server cannot start with. Key material
// itself is checked when the token hasher loads it.
func (c Config) Validate() error {
	switch {
	case strings.HasPrefix(c.Token.Algorithm, "HS"):
		if c.Token.SecretKey == "" {
			return fmt.Errorf("JWT_SECRET_KEY is required for %s", c.Token.Algorithm)
		}
	case strings.HasPrefix(c.Token.Algorithm, "RS"):
		if c.Token.RSAPrivateKeyPath == "" || c.Token.RSAPublicKeyPath == "" {
			return fmt.Errorf("RSA_PRIVATE_KEY_PATH and RSA_PUBLIC_KEY_PATH are required for %s", c.Token.Algorithm)
		}
	default:
		return fmt.Errorf("unsupported JWT_ALGORITHM %q", c.Token.Algorithm)
	}
	if c.Token.AccessTTL <= 0 || c.Token.RefreshTTL <= 0 || c.Token.IDTokenTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if c.OAuth.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.OAuth.Issuer == "" {
		return fmt.Errorf("ISSUER is required")
	}
	if c.OAuth.SeedDevClient && c.OAuth.DevClientSecret == "" {
		return fmt.Errorf("DEV_CLIENT_SECRET is required when SEED_DEV_CLIENT is set")
	}
	if c.RateLimit.Enabled && (c.RateLimit.AuthorizePerMinute <= 0 || c.RateLimit.TokenPerMinute <= 0) {
		return fmt.Errorf("rate limits must be positive when RATE_LIMIT_ENABLED is set")
	}
	return nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getList(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		var cleaned []string
		for _, p := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return def
}
