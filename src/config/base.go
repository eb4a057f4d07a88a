package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pulseworks/pulsebot/src/data"
)

// LoadEnvFile loads a local .env when present. Missing files are fine; real
// deployments configure through the environment and the settings table.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// GetSetting retrieves a setting with env fallback
func GetSetting(name, envKey, defaultValue string) string {
	val := data.GetSetting(name)
	if val == "" {
		val = os.Getenv(envKey)
	}
	if val == "" {
		val = defaultValue
	}
	return val
}

func getIntSetting(name, envKey string, def int) int {
	raw := GetSetting(name, envKey, "")
	if raw == "" {
		return def
	}
	if val, err := strconv.Atoi(raw); err == nil {
		return val
	}
	return def
}

func getFloatSetting(name, envKey string, def float64) float64 {
	raw := GetSetting(name, envKey, "")
	if raw == "" {
		return def
	}
	if val, err := strconv.ParseFloat(raw, 64); err == nil {
		return val
	}
	return def
}

func getBoolSetting(name, envKey string, def bool) bool {
	raw := GetSetting(name, envKey, "")
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func getDurationSetting(name, envKey string, def time.Duration) time.Duration {
	raw := GetSetting(name, envKey, "")
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}

func parseCSV(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			out = append(out, strings.ToLower(trimmed))
		}
	}
	return out
}
