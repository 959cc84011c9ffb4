package createloanapplicationrecord

import "time"

type Config struct {
	Timeout time.Duration
	// DuplicateWindow is how long an identical submission is rejected.
	DuplicateWindow time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         10 * time.Second,
		DuplicateWindow: 10 * time.Minute,
	}
}
