package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis (horoscope cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Birth profile encryption (AES-256, hex-encoded 32-byte key)
	ProfileCipherKey []byte

	// Astrology computation engine
	EngineBaseURL     string
	EngineTimeout     time.Duration
	CalculationMethod string
	AyanamsaSystem    string

	// Cached artifact staleness policy
	ArtifactMaxAge time.Duration

	// Horoscope Redis cache TTL
	HoroscopeCacheTTL time.Duration

	// Free-tier quota
	FreeTierDailyLimit int
	QuotaTimezone      *time.Location

	// Apple Sign-In
	AppleBundleID string

	// Admin
	AdminEmails string
	AdminToken  string

	// RevenueCat webhook Authorization header value
	WebhookAuthToken string

	// Server
	Port        string
	CORSOrigins string
}

func Load() (*Config, error) {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "jyotir_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       parseInt(getEnv("REDIS_DB", "0"), 0),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		EngineBaseURL:     getEnv("ENGINE_BASE_URL", "http://localhost:8000/api/v1"),
		EngineTimeout:     parseDuration(getEnv("ENGINE_TIMEOUT", "30s"), 30*time.Second),
		CalculationMethod: getEnv("CALCULATION_METHOD", "vedic"),
		AyanamsaSystem:    getEnv("AYANAMSA_SYSTEM", "Lahiri"),

		ArtifactMaxAge: parseDuration(getEnv("ARTIFACT_MAX_AGE", "720h"), 720*time.Hour),

		HoroscopeCacheTTL: parseDuration(getEnv("HOROSCOPE_CACHE_TTL", "24h"), 24*time.Hour),

		FreeTierDailyLimit: parseInt(getEnv("FREE_TIER_DAILY_LIMIT", "5"), 5),

		AppleBundleID: getEnv("APPLE_BUNDLE_ID", ""),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),
		AdminToken:  getEnv("ADMIN_TOKEN", ""),

		WebhookAuthToken: getEnv("WEBHOOK_AUTH_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}

	keyHex := getEnv("PROFILE_CIPHER_KEY", "")
	if keyHex == "" {
		return nil, fmt.Errorf("PROFILE_CIPHER_KEY is required")
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("PROFILE_CIPHER_KEY is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("PROFILE_CIPHER_KEY must decode to 32 bytes, got %d", len(key))
	}
	cfg.ProfileCipherKey = key

	// The quota reset boundary is a calendar day in this zone, never
	// host-local time; replicas in different zones must agree.
	tzName := getEnv("QUOTA_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("QUOTA_TIMEZONE %q is not a valid IANA zone: %w", tzName, err)
	}
	cfg.QuotaTimezone = loc

	return cfg, nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
