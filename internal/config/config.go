package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	PublicBaseURL  string
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string
	AdminJWTSecret string

	SiteProfilePath string

	// Email
	EmailProvider       string
	EmailFromEmail      string
	EmailFromName       string
	AdminEmail          string
	SendGridAPIKey      string
	SendGridHost        string
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Google Calendar
	GoogleClientID          string
	GoogleClientSecret      string
	GoogleRedirectURL       string
	GoogleRefreshToken      string
	GoogleCalendarID        string
	GoogleSendUpdates       string
	CalendarTokenStore      string
	CalendarTokenFile       string
	CalendarOAuthSuccessURL string
	CalendarMirrorTimeout   time.Duration

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	RateLimitPerSecond float64
	RateLimitBurst     int
	TrustProxyHeaders  bool
}

// Load reads configuration from the environment.
func Load() *Config {
	env := getEnv("ENV", "development")
	port := getEnv("PORT", "3001")
	publicBaseURL := strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/")
	fromEmail := getEnv("EMAIL_FROM", getEnv("EMAIL_USER", ""))

	return &Config{
		Port:           port,
		Env:            env,
		PublicBaseURL:  publicBaseURL,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		SiteProfilePath: getEnv("SITE_PROFILE_PATH", ""),

		EmailProvider:       strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "auto"))),
		EmailFromEmail:      fromEmail,
		EmailFromName:       getEnv("EMAIL_FROM_NAME", "Mente Novedosa"),
		AdminEmail:          getEnv("ADMIN_EMAIL", fromEmail),
		SendGridAPIKey:      getEnv("SENDGRID_API_KEY", ""),
		SendGridHost:        getEnv("SENDGRID_HOST", ""),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		GoogleClientID:          getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:      getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:       getEnv("GOOGLE_REDIRECT_URL", publicBaseURL+"/oauth/google/callback"),
		GoogleRefreshToken:      getEnv("GOOGLE_REFRESH_TOKEN", ""),
		GoogleCalendarID:        getEnv("GOOGLE_CALENDAR_ID", "primary"),
		GoogleSendUpdates:       getEnv("GOOGLE_SEND_UPDATES", "all"),
		CalendarTokenStore:      strings.ToLower(getEnv("CALENDAR_TOKEN_STORE", "")),
		CalendarTokenFile:       getEnv("CALENDAR_TOKEN_FILE", "tokens.json"),
		CalendarOAuthSuccessURL: getEnv("CALENDAR_OAUTH_SUCCESS_URL", ""),
		CalendarMirrorTimeout:   getEnvAsDuration("CALENDAR_MIRROR_TIMEOUT", 15*time.Second),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 0.2),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 5),
		TrustProxyHeaders:  getEnvAsBool("TRUST_PROXY_HEADERS", false),
	}
}

// LoadDotEnv loads variables from the given files (default .env) without
// overriding values already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
