package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds the application configuration, read from the environment
type Config struct {
	Port        string  `mapstructure:"PORT"`
	DBPath      string  `mapstructure:"DB_PATH"`
	JWTSecret   string  `mapstructure:"JWT_SECRET"`
	LoadWorkers int     `mapstructure:"LOAD_WORKERS"` // files loaded in parallel
	RateLimit   float64 `mapstructure:"RATE_LIMIT"`   // requests per second and client
	RateBurst   int     `mapstructure:"RATE_BURST"`
	TimeZone    string  `mapstructure:"TIME_ZONE"` // IANA zone for GPX timestamps, empty keeps the file's wall clock

	MaxUploadBytes int64 `mapstructure:"MAX_UPLOAD_BYTES"` // limit of one upload request body
}

// DefaultMaxUploadBytes is the upload limit when MAX_UPLOAD_BYTES is unset or invalid
const DefaultMaxUploadBytes = 32 << 20

// Load loads the configuration
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", ":8080")
	v.SetDefault("DB_PATH", DefaultDBPath())
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("LOAD_WORKERS", runtime.NumCPU())
	v.SetDefault("RATE_LIMIT", 20.0)
	v.SetDefault("RATE_BURST", 40)
	v.SetDefault("TIME_ZONE", "")
	v.SetDefault("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)

	var cfg Config
	_ = v.Unmarshal(&cfg)

	if cfg.LoadWorkers < 1 {
		cfg.LoadWorkers = 1
	}
	if cfg.MaxUploadBytes < 1 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &cfg
}

// DefaultDBPath returns the database file below the per-user application data directory:
// %APPDATA% on Windows, ~/Library/Application Support on macOS, ~/.local/share elsewhere.
func DefaultDBPath() string {
	return filepath.Join(applicationDataDir(), "trakxmap", "database", "trakxmap.db")
}

func applicationDataDir() string {
	if runtime.GOOS == "windows" {
		if dir := os.Getenv("APPDATA"); dir != "" {
			return dir
		}
		return "."
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support")
	}
	return filepath.Join(home, ".local", "share")
}
