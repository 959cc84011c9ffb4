package sendloandecision

import (
	"time"

	"loan-assessment-workers/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	SenderID     string
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		EmailEnabled: true,
		SMSEnabled:   false,
		FromEmail:    "noreply@example.com",
		Timeout:      30 * time.Second,
	}
}

func ConfigFrom(n config.NotificationConfig) *Config {
	cfg := LoadConfig()
	cfg.EmailEnabled = n.Email.Enabled
	cfg.SMSEnabled = n.SMS.Enabled
	cfg.SenderID = n.SMS.SenderID
	if n.Email.FromEmail != "" {
		cfg.FromEmail = n.Email.FromEmail
	}
	return cfg
}
