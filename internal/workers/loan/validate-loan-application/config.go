package validateloanapplication

import "time"

type Config struct {
	// RegistryPath points at the activity registry holding the input schema.
	// The embedded schema is used when it is empty or unreadable.
	RegistryPath string
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		RegistryPath: "configs/activity-registry.json",
		Timeout:      10 * time.Second,
	}
}
