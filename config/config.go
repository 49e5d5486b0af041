package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via config files or the environment.
type AppConfig struct {
	EnvState string
	AppPort  string
	GinMode  string
	// Database; DatabaseURL wins over the discrete MySQL fields
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Credentials
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
	// HTTP
	AllowedOrigins []string
	// Redis backs the token revocation list when RedisAddr is set
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Logging configuration
	LogLevel      string
	LogPath       string
	GinLogPath    string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// Load builds the configuration once at boot.
// Precedence: defaults -> config file -> environment variables.
// ENV_STATE=dev|test switches environment lookups to DEV_* / TEST_* keys.
func Load() (*AppConfig, error) {
	envState := strings.ToLower(strings.TrimSpace(os.Getenv("ENV_STATE")))

	v := viper.New()
	switch envState {
	case "dev":
		v.SetEnvPrefix("DEV")
	case "test":
		v.SetEnvPrefix("TEST")
	}
	v.AutomaticEnv()
	applyDefaults(v, envState)

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = filepath.Join("config", "config.json")
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &AppConfig{
		EnvState:       envState,
		AppPort:        v.GetString("app_port"),
		GinMode:        v.GetString("gin_mode"),
		DatabaseURL:    v.GetString("database_url"),
		DBHost:         v.GetString("db_host"),
		DBPort:         v.GetString("db_port"),
		DBUser:         v.GetString("db_user"),
		DBPassword:     v.GetString("db_password"),
		DBName:         v.GetString("db_name"),
		JWTSecret:      v.GetString("jwt_secret"),
		TokenTTL:       v.GetDuration("token_ttl"),
		BcryptCost:     v.GetInt("bcrypt_cost"),
		AllowedOrigins: readList(v, "cors_allowed_origins"),
		RedisAddr:      v.GetString("redis_addr"),
		RedisPassword:  v.GetString("redis_password"),
		RedisDB:        v.GetInt("redis_db"),
		LogLevel:       v.GetString("log_level"),
		LogPath:        v.GetString("log_path"),
		GinLogPath:     v.GetString("gin_log_path"),
		LogMaxSizeMB:   v.GetInt("log_max_size_mb"),
		LogMaxBackups:  v.GetInt("log_max_backups"),
		LogMaxAgeDays:  v.GetInt("log_max_age_days"),
		LogCompress:    v.GetBool("log_compress"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the credential subsystem cannot start with.
func (c *AppConfig) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be within [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	return nil
}

// applyDefaults registers every key so AutomaticEnv can resolve it.
func applyDefaults(v *viper.Viper, envState string) {
	v.SetDefault("app_port", "8080")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("database_url", "")
	if envState == "test" {
		v.SetDefault("database_url", "sqlite://test.db")
	}
	v.SetDefault("db_host", "127.0.0.1")
	v.SetDefault("db_port", "3306")
	v.SetDefault("db_user", "root")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "storeapi")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", 15*time.Minute)
	v.SetDefault("bcrypt_cost", bcrypt.DefaultCost)
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_path", "")
	v.SetDefault("gin_log_path", "logs/go_gin.log")
	v.SetDefault("log_max_size_mb", 100)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_max_age_days", 7)
	v.SetDefault("log_compress", false)
}

// readList accepts both a JSON array and a comma separated string.
func readList(v *viper.Viper, key string) []string {
	if raw, ok := v.Get(key).(string); ok {
		return splitAndTrim(raw)
	}
	return v.GetStringSlice(key)
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
