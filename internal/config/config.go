package config

import (
	"os"
	"strconv"
	"strings"
)

// Config carries the environment-driven settings of the wallet core.
type Config struct {
	// Relay
	RelayBaseURL string
	RelayAPIKey  string

	// Database
	DBPath string

	// Session lock
	RelockThresholdSec int
	ExcludedScreens    []string

	// One-time code
	CodeTTLSec int

	// Display
	Currency string
}

// Load reads the configuration from environment variables, falling back
// to production defaults.
func Load() *Config {
	return &Config{
		RelayBaseURL: strings.TrimSuffix(getEnv("RELAY_BASE_URL", "http://localhost:8080"), "/"),
		RelayAPIKey:  getEnv("RELAY_API_KEY", ""),

		DBPath: getEnv("DB_PATH", "./wallet.db"),

		RelockThresholdSec: getEnvInt("RELOCK_THRESHOLD_SEC", 10),
		ExcludedScreens: getEnvList("LOCK_EXCLUDED_SCREENS",
			[]string{"ShopNotification", "MileageCancelNotification"}),

		CodeTTLSec: getEnvInt("CODE_TTL_SEC", 180),

		Currency: getEnv("CURRENCY", "krw"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
