package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret     = "change-me-warden-secret"
	defaultAdminPassword = "admin123"
)

// Conf holds every runtime setting. Keys match env var names.
var Conf *viper.Viper

func init() {
	Conf = New()
}

// New builds a viper instance with defaults, an optional .env file and
// environment overrides.
func New() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("ADDR", ":8080")
	v.SetDefault("DATABASE_DSN", "warden.db")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("ACCESS_TTL", 24*time.Hour)
	v.SetDefault("REFRESH_TTL", 7*24*time.Hour)
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", defaultAdminPassword)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("STATS_CACHE_TTL", 30*time.Second)
	v.SetDefault("TG_BOT_TOKEN", "")
	v.SetDefault("TG_WEBHOOK_SECRET", "")
	v.SetDefault("TG_ENABLE_REMINDERS", false)
	v.SetDefault("REMIND_OFFSETS", "72h,24h")
	v.SetDefault("PUBLIC_URL", "http://localhost:8080")
	v.SetDefault("TIMEZONE", "Asia/Tashkent")

	// .env is optional; a missing file is not an error
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			log.Fatalf("config: godotenv(%s): %v", envFile, err)
		}
	}
	v.AutomaticEnv()
	return v
}

// InsecureDefaults lists the secret keys still set to their built-in values.
func InsecureDefaults() []string {
	var keys []string
	if Conf.GetString("JWT_SECRET") == defaultJWTSecret {
		keys = append(keys, "JWT_SECRET")
	}
	if Conf.GetString("ADMIN_PASSWORD") == defaultAdminPassword {
		keys = append(keys, "ADMIN_PASSWORD")
	}
	return keys
}

// Location returns the configured display/attendance timezone.
func Location() *time.Location {
	name := strings.TrimSpace(Conf.GetString("TIMEZONE"))
	loc, err := time.LoadLocation(name)
	if err != nil {
		// tzdata missing: Tashkent is UTC+5 with no DST
		return time.FixedZone("UZT", 5*3600)
	}
	return loc
}

// Today returns the current date in Location as YYYY-MM-DD.
func Today() string {
	return time.Now().In(Location()).Format("2006-01-02")
}
