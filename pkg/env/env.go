package env

import "os"

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	return First(fallback, key)
}

// First returns the first non-empty variable among keys, or fallback. Used
// where a platform variable (PORT, LOG_FORMAT) may stand in for the
// WIREBAZAAR_-prefixed one.
func First(fallback string, keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return fallback
}
