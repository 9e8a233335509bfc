package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// Config is the runtime configuration, read from the environment (and .env if present).
type Config struct {
	Port      int
	LogLevel  string
	LogFormat string

	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	JWTSecret       string
	JWTAccessTTL    time.Duration
	JWTRefreshTTL   time.Duration
	LoginRatePerSec float64
	LoginBurst      int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TrustCacheTTL time.Duration

	SMTPHost  string
	SMTPPort  int
	EmailUser string
	EmailPass string
	EmailFrom string

	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadPreset string
	CloudinaryFolder       string

	ExpiryCheckSchedule string
	ExpiryLookaheadDays int

	CORSOrigins string
}

const defaultJWTSecret = "solid_secret_key"

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Port:      v.GetInt("PORT"),
		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),

		DBDriver:    strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL: v.GetString("DATABASE_URL"),
		SQLitePath:  v.GetString("SQLITE_PATH"),

		JWTSecret:       v.GetString("JWT_SECRET"),
		JWTAccessTTL:    v.GetDuration("JWT_ACCESS_TTL"),
		JWTRefreshTTL:   v.GetDuration("JWT_REFRESH_TTL"),
		LoginRatePerSec: v.GetFloat64("LOGIN_RATE_PER_SEC"),
		LoginBurst:      v.GetInt("LOGIN_BURST"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		TrustCacheTTL: v.GetDuration("TRUST_CACHE_TTL"),

		SMTPHost:  v.GetString("SMTP_HOST"),
		SMTPPort:  v.GetInt("SMTP_PORT"),
		EmailUser: v.GetString("EMAIL_USER"),
		EmailPass: v.GetString("EMAIL_PASS"),
		EmailFrom: v.GetString("EMAIL_FROM"),

		CloudinaryCloudName:    v.GetString("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:       v.GetString("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret:    v.GetString("CLOUDINARY_API_SECRET"),
		CloudinaryUploadPreset: v.GetString("CLOUDINARY_UPLOAD_PRESET"),
		CloudinaryFolder:       v.GetString("CLOUDINARY_FOLDER"),

		ExpiryCheckSchedule: v.GetString("EXPIRY_CHECK_SCHEDULE"),
		ExpiryLookaheadDays: v.GetInt("EXPIRY_LOOKAHEAD_DAYS"),

		CORSOrigins: v.GetString("CORS_ORIGINS"),
	}
	if cfg.EmailFrom == "" {
		cfg.EmailFrom = cfg.EmailUser
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8000)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("SQLITE_PATH", "nhs-staffing.db")

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ACCESS_TTL", "24h")
	v.SetDefault("JWT_REFRESH_TTL", "168h")
	v.SetDefault("LOGIN_RATE_PER_SEC", 1.0)
	v.SetDefault("LOGIN_BURST", 5)

	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("TRUST_CACHE_TTL", "10m")

	v.SetDefault("SMTP_PORT", 587)

	v.SetDefault("CLOUDINARY_FOLDER", "nurse-documents")

	v.SetDefault("EXPIRY_CHECK_SCHEDULE", "0 7 * * *")
	v.SetDefault("EXPIRY_LOOKAHEAD_DAYS", 30)

	v.SetDefault("CORS_ORIGINS", "*")
}

// Validate checks the settings that have no usable fallback.
func (c *Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case "sqlite":
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}
	if c.ExpiryLookaheadDays < 0 {
		errs = append(errs, errors.New("EXPIRY_LOOKAHEAD_DAYS must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", multierr.Combine(errs...))
	}
	return nil
}

// UsesDefaultSecret reports whether JWT_SECRET was left unset.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

// CloudinaryEnabled reports whether document uploads can be stored in Cloudinary.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// MailEnabled reports whether outbound mail is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}
