package env

import (
	"os"
	"strings"
)

// String returns the trimmed value of key, or fallback when it is unset or blank.
func String(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		if trimmed := strings.TrimSpace(val); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
