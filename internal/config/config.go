package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		CORS
		Audit
		Tasks
		Metrics
	}

	HTTP struct {
		Port       int32
		Host       string
		HSTSMaxAge int // Strict-Transport-Security max-age in seconds, 0 disables
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret  string        // HMAC key for session tokens, read once at startup
		TokenTTL   time.Duration // Lifetime of issued tokens
		BcryptCost int           // bcrypt work factor
	}
	CORS struct {
		AllowedOrigins []string // Empty disables CORS handling
	}
	Audit struct {
		RetentionDays   int    // Days to keep audit events (default: 30)
		CleanupEnabled  bool   // Enable scheduled cleanup of old audit events
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Metrics struct {
		Enabled bool
	}
)

// loadEnvFile reads KEY=VALUE pairs from path into the process environment.
// Variables that are already set take precedence over the file.
func loadEnvFile(path string) {
	if err := godotenv.Load(path); err == nil {
		log.Printf("Loaded environment from %s", path)
	}
}

// splitList turns a comma-separated value into a trimmed slice, dropping empties.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func NewConfig() *Config {
	loadEnvFile(".env")

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 3000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("hsts_max_age", 0)
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("jwt_secret", "")       // Generated per process if empty
	v.SetDefault("jwt_token_ttl", "24h") // Token lifetime
	v.SetDefault("auth_bcrypt_cost", DefaultBcryptCost)

	v.SetDefault("cors_allowed_origins", "")

	// Audit defaults
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_enabled", true)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *") // Daily at 03:00

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("metrics_enabled", true)

	return &Config{
		HTTP: HTTP{
			Port:       v.GetInt32("PORT"),
			Host:       v.GetString("HOST"),
			HSTSMaxAge: v.GetInt("HSTS_MAX_AGE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			JWTSecret:  v.GetString("JWT_SECRET"),
			TokenTTL:   v.GetDuration("JWT_TOKEN_TTL"),
			BcryptCost: v.GetInt("AUTH_BCRYPT_COST"),
		},
		CORS: CORS{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Audit: Audit{
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupEnabled:  v.GetBool("AUDIT_CLEANUP_ENABLED"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}
}
