package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	AutoMigrate bool   `mapstructure:"AUTO_MIGRATE"`

	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	FirebaseStorageBucket            string `mapstructure:"FIREBASE_STORAGE_BUCKET"`
	AdminClaim                       string `mapstructure:"ADMIN_CLAIM"`

	GeminiAPIKey         string        `mapstructure:"GEMINI_API_KEY"`
	GeminiTextModel      string        `mapstructure:"GEMINI_TEXT_MODEL"`
	GeminiImageModel     string        `mapstructure:"GEMINI_IMAGE_MODEL"`
	ProviderTimeout      time.Duration `mapstructure:"PROVIDER_TIMEOUT"`
	EditModeSpendsCredit bool          `mapstructure:"EDIT_MODE_SPENDS_CREDIT"`

	EncryptionKey string `mapstructure:"ENCRYPTION_KEY"` // Base64 encoded, optional
	ClientURL     string `mapstructure:"CLIENT_URL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	AMQPURL     string `mapstructure:"AMQP_URL"`
	EventsQueue string `mapstructure:"EVENTS_QUEUE"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	PlansFile string `mapstructure:"PLANS_FILE"`
}

var appConfig *Config

var envKeys = []string{
	"PORT", "GIN_MODE",
	"DATABASE_URL", "AUTO_MIGRATE",
	"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"FIREBASE_STORAGE_BUCKET", "ADMIN_CLAIM",
	"GEMINI_API_KEY", "GEMINI_TEXT_MODEL", "GEMINI_IMAGE_MODEL", "PROVIDER_TIMEOUT", "EDIT_MODE_SPENDS_CREDIT",
	"ENCRYPTION_KEY", "CLIENT_URL",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"AMQP_URL", "EVENTS_QUEUE",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"PLANS_FILE",
}

// LoadConfig loads configuration from environment variables using Viper.
// Outside release mode a local .env file is read first, if present.
func LoadConfig() (*Config, error) {
	if !strings.EqualFold(os.Getenv("GIN_MODE"), "release") {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("AUTO_MIGRATE", false)
	v.SetDefault("ADMIN_CLAIM", "role")
	v.SetDefault("GEMINI_TEXT_MODEL", "gemini-3-flash-preview")
	v.SetDefault("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image")
	v.SetDefault("PROVIDER_TIMEOUT", "90s")
	v.SetDefault("EDIT_MODE_SPENDS_CREDIT", false)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("EVENTS_QUEUE", "thumblytic.events")
	v.SetDefault("RATE_LIMIT_RPS", 2)
	v.SetDefault("RATE_LIMIT_BURST", 5)

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appConfig = &cfg
	return appConfig, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	if c.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	if c.ClientURL == "" {
		return errors.New("CLIENT_URL is required")
	}
	if c.ProviderTimeout <= 0 {
		return errors.New("PROVIDER_TIMEOUT must be positive")
	}
	if c.EncryptionKey != "" {
		if _, err := c.EncryptionKeyBytes(); err != nil {
			return err
		}
	}
	return nil
}

// EncryptionKeyBytes decodes ENCRYPTION_KEY. It returns nil when no key is configured.
func (c *Config) EncryptionKeyBytes() ([]byte, error) {
	if c.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// IsRelease reports whether gin should run in release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}

// GetConfig returns the loaded application configuration.
// It will panic if LoadConfig has not been called successfully.
func GetConfig() *Config {
	if appConfig == nil {
		panic("config not loaded; call LoadConfig first")
	}
	return appConfig
}
