// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

// Image storage backends.
const (
	ImageStorageInline = "inline"
	ImageStorageS3     = "s3"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Database DatabaseConfig
	Identity IdentityConfig
	Upstream UpstreamConfig
	Maps     MapsConfig
	Images   ImagesConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string        // Server port (default: 8000)
	ReadTimeout    time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout   time.Duration // HTTP write timeout (default: 30s)
	IdleTimeout    time.Duration // HTTP idle timeout (default: 60s)
	AllowedOrigins []string      // CORS origins (default: *)
	RateLimitRPS   float64       // Requests per second per client IP
	RateLimitBurst int
	// TrustProxyHeaders takes the client IP from X-Forwarded-For/X-Real-IP.
	// Enable only behind a reverse proxy that overwrites those headers.
	TrustProxyHeaders bool
}

// DatabaseConfig holds relational store configuration.
type DatabaseConfig struct {
	// URL is either a postgres:// connection string or a SQLite path/DSN.
	URL string
}

// IdentityConfig holds identity provider (Supabase Auth) configuration.
type IdentityConfig struct {
	BaseURL            string
	AnonKey            string
	ServiceRoleKey     string
	JWKSURL            string
	KeyCacheTTL        time.Duration
	MinRefreshInterval time.Duration
	Algorithms         []string
	// Audience and Issuer are only validated when non-empty.
	Audience string
	Issuer   string
}

// UpstreamConfig holds settings shared by all outbound calls.
type UpstreamConfig struct {
	Timeout time.Duration
}

// MapsConfig holds Google Places configuration.
type MapsConfig struct {
	APIKey       string
	BaseURL      string
	RadiusMeters int
}

// ImagesConfig holds item image configuration.
type ImagesConfig struct {
	MaxBytes   int
	Storage    string // inline or s3
	S3Bucket   string
	S3Region   string
	S3Endpoint string // Optional, for MinIO and other S3-compatible stores
	S3KeyID    string
	S3Secret   string
	PresignTTL time.Duration
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return load(flag.CommandLine, os.Args[1:])
}

func load(fs *flag.FlagSet, args []string) (*Config, error) {
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	serverPort := fs.String("port", "", "Server port (default: 8000)")
	databaseURL := fs.String("database-url", "", "Postgres URL or SQLite path")
	supabaseURL := fs.String("supabase-url", "", "Identity provider base URL")
	imageStorage := fs.String("image-storage", "", "Item image storage: inline or s3")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8000"),
			AllowedOrigins: splitList(getConfigValue("", "CORS_ALLOWED_ORIGINS", "*")),
			RateLimitRPS:   getFloatConfigValue("", "RATE_LIMIT_RPS", 10),
			RateLimitBurst: getIntConfigValue("", "RATE_LIMIT_BURST", 30),

			TrustProxyHeaders: getBoolConfigValue("", "TRUST_PROXY_HEADERS", false),
		},
		Database: DatabaseConfig{
			URL: getConfigValue(*databaseURL, "DATABASE_URL", "file:mymichiganlake.db"),
		},
		Identity: IdentityConfig{
			BaseURL:        strings.TrimRight(getConfigValue(*supabaseURL, "SUPABASE_URL", ""), "/"),
			AnonKey:        getConfigValue("", "SUPABASE_ANON_KEY", ""),
			ServiceRoleKey: getConfigValue("", "SUPABASE_SERVICE_ROLE_KEY", ""),
			JWKSURL:        getConfigValue("", "JWKS_URL", ""),
			Algorithms:     splitList(getConfigValue("", "JWT_ALGORITHMS", "RS256,ES256")),
			Audience:       getConfigValue("", "JWT_AUDIENCE", ""),
			Issuer:         getConfigValue("", "JWT_ISSUER", ""),
		},
		Maps: MapsConfig{
			APIKey:       getConfigValue("", "GOOGLE_MAPS_API_KEY", ""),
			BaseURL:      strings.TrimRight(getConfigValue("", "GOOGLE_MAPS_BASE_URL", "https://maps.googleapis.com"), "/"),
			RadiusMeters: getIntConfigValue("", "NEARBY_LAKES_RADIUS_METERS", 25000),
		},
		Images: ImagesConfig{
			MaxBytes:   getIntConfigValue("", "IMAGE_MAX_BYTES", 2*1024*1024),
			Storage:    strings.ToLower(getConfigValue(*imageStorage, "IMAGE_STORAGE", ImageStorageInline)),
			S3Bucket:   getConfigValue("", "S3_BUCKET", ""),
			S3Region:   getConfigValue("", "S3_REGION", "us-east-1"),
			S3Endpoint: getConfigValue("", "S3_ENDPOINT", ""),
			S3KeyID:    getConfigValue("", "S3_ACCESS_KEY_ID", ""),
			S3Secret:   getConfigValue("", "S3_SECRET_ACCESS_KEY", ""),
		},
	}

	if cfg.Identity.JWKSURL == "" && cfg.Identity.BaseURL != "" {
		cfg.Identity.JWKSURL = cfg.Identity.BaseURL + "/auth/v1/.well-known/jwks.json"
	}

	durations := []struct {
		envKey string
		def    string
		dst    *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", "30s", &cfg.Server.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{"JWKS_CACHE_TTL", "10m", &cfg.Identity.KeyCacheTTL},
		{"JWKS_MIN_REFRESH_INTERVAL", "30s", &cfg.Identity.MinRefreshInterval},
		{"UPSTREAM_TIMEOUT", "10s", &cfg.Upstream.Timeout},
		{"S3_PRESIGN_TTL", "1h", &cfg.Images.PresignTTL},
	}
	for _, d := range durations {
		raw := getConfigValue("", d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Database.URL == "" {
		return errors.New("DATABASE_URL cannot be empty")
	}

	if c.Identity.BaseURL == "" {
		return errors.New("SUPABASE_URL is required")
	}
	if len(c.Identity.Algorithms) == 0 {
		return errors.New("JWT_ALGORITHMS cannot be empty")
	}
	for _, alg := range c.Identity.Algorithms {
		if alg == "none" || strings.HasPrefix(alg, "HS") {
			return fmt.Errorf("JWT_ALGORITHMS: %s is not an asymmetric algorithm", alg)
		}
	}
	if c.Identity.KeyCacheTTL <= 0 {
		return errors.New("JWKS_CACHE_TTL must be positive")
	}
	if c.Upstream.Timeout <= 0 {
		return errors.New("UPSTREAM_TIMEOUT must be positive")
	}

	switch c.Images.Storage {
	case ImageStorageInline:
	case ImageStorageS3:
		if c.Images.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when IMAGE_STORAGE=s3")
		}
	default:
		return fmt.Errorf("invalid image storage: %s (must be inline or s3)", c.Images.Storage)
	}
	if c.Images.MaxBytes <= 0 {
		return errors.New("IMAGE_MAX_BYTES must be positive")
	}

	return nil
}

// IsPostgres reports whether the database URL selects the Postgres backend.
func (c DatabaseConfig) IsPostgres() bool {
	return strings.HasPrefix(c.URL, "postgres://") || strings.HasPrefix(c.URL, "postgresql://")
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

// splitList splits a comma separated value, dropping blanks.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
