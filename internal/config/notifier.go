package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// NotifierConfig configures cmd/notifier, which mails appeal events.
type NotifierConfig struct {
	GinMode     string `mapstructure:"GIN_MODE"`
	AMQPURL     string `mapstructure:"AMQP_URL"`
	EventsQueue string `mapstructure:"EVENTS_QUEUE"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     string `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`

	// AdminEmail receives a notice for every submitted appeal.
	AdminEmail string `mapstructure:"ADMIN_EMAIL"`
	ClientURL  string `mapstructure:"CLIENT_URL"`
}

var notifierEnvKeys = []string{
	"GIN_MODE", "AMQP_URL", "EVENTS_QUEUE",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "SMTP_FROM",
	"ADMIN_EMAIL", "CLIENT_URL",
}

// LoadNotifierConfig loads the notifier's configuration from the environment.
func LoadNotifierConfig() (*NotifierConfig, error) {
	if !strings.EqualFold(os.Getenv("GIN_MODE"), "release") {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("EVENTS_QUEUE", "thumblytic.events")
	v.SetDefault("SMTP_PORT", "587")

	for _, key := range notifierEnvKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg NotifierConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal notifier config: " + err.Error())
	}
	switch {
	case cfg.AMQPURL == "":
		return nil, errors.New("AMQP_URL is required")
	case cfg.SMTPHost == "":
		return nil, errors.New("SMTP_HOST is required")
	case cfg.SMTPFrom == "":
		return nil, errors.New("SMTP_FROM is required")
	}
	return &cfg, nil
}

// IsRelease reports whether production logging should be used.
func (c *NotifierConfig) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}
