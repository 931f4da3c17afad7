package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"walletlab/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Session  SessionConfig  `mapstructure:"session" yaml:"session"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" yaml:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string   `mapstructure:"port" yaml:"port"`
	GinMode        string   `mapstructure:"gin_mode" yaml:"gin_mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// StorageConfig holds upload storage settings
type StorageConfig struct {
	UploadDir      string `mapstructure:"upload_dir" yaml:"upload_dir"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// SessionConfig holds workspace session settings
type SessionConfig struct {
	CookieName string        `mapstructure:"cookie_name" yaml:"cookie_name"`
	TTL        time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// envBindings maps config keys onto the environment variables that override them
var envBindings = map[string]string{
	"database.url":               "DATABASE_URL",
	"database.max_open_conns":    "DB_MAX_OPEN_CONNS",
	"database.max_idle_conns":    "DB_MAX_IDLE_CONNS",
	"database.conn_max_lifetime": "DB_CONN_MAX_LIFETIME",
	"server.port":                "PORT",
	"server.gin_mode":            "GIN_MODE",
	"server.allowed_origins":     "ALLOWED_ORIGINS",
	"storage.upload_dir":         "UPLOAD_DIR",
	"storage.max_upload_bytes":   "MAX_UPLOAD_BYTES",
	"session.cookie_name":        "SESSION_COOKIE",
	"session.ttl":                "SESSION_TTL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "debug")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("storage.max_upload_bytes", 50*1024*1024) // 50MB
	v.SetDefault("session.cookie_name", "walletlab_session")
	v.SetDefault("session.ttl", 24*time.Hour)
}

// Load reads configuration from defaults, the optional YAML file named by CONFIG_FILE and the
// environment, then validates it
func Load() (*Config, error) {
	config, err := LoadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}
	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// LoadFile reads configuration without validating it. An empty path skips the file.
// Precedence: env > config file > defaults.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "failed to bind %s", env)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("read config file %s: %w", path, err))
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("unmarshal config: %w", err))
	}
	config.Server.AllowedOrigins = splitOrigins(config.Server.AllowedOrigins)
	return &config, nil
}

// splitOrigins accepts both a YAML list and a comma separated env value
func splitOrigins(origins []string) []string {
	var out []string
	for _, o := range origins {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	_ = v.Unmarshal(&config)
	return &config
}

// Save writes the configuration to path as YAML, creating the parent directory
func Save(c *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Storage.UploadDir == "" {
		return errors.ConfigInvalid("upload directory is required")
	}
	if config.Storage.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("max upload size must be positive")
	}
	if config.Session.CookieName == "" {
		return errors.ConfigInvalid("session cookie name is required")
	}
	return nil
}
