package indexloandecision

import "time"

type Config struct {
	Index   string
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Index:   "loan-decisions",
		Timeout: 10 * time.Second,
	}
}
