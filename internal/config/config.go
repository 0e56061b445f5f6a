package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Get returns the environment variable or the fallback when unset/empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetInt parses an integer environment variable, falling back on bad input.
func GetInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}

// GetDuration parses a duration environment variable (e.g. "5m", "15s"),
// falling back on bad input.
func GetDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: %s=%q is not a duration, using %s", key, v, fallback)
		return fallback
	}
	return d
}
