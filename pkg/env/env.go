package env

import "os"

// Get returns the value of the given environment variable or a fallback.
// Only bootstrap code (logger format selection) should reach for this;
// everything else goes through pkg/config.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
