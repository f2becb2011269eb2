package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the alarm service.
type Config struct {
	HTTPPort       int
	SQLiteDSN      string
	AudioDir       string
	DefaultHorizon time.Duration
	LogLevel       string
}

// Load parses configuration values from the current process environment.
// Every field has a usable default; invalid values are reported together so
// a misconfigured deployment fails fast with one actionable message.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:       5000,
		SQLiteDSN:      "file:alarmas.db",
		AudioDir:       "audios",
		DefaultHorizon: 24 * time.Hour,
		LogLevel:       "info",
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ORANGECLOCK_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ORANGECLOCK_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ORANGECLOCK_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if dir := strings.TrimSpace(os.Getenv("ORANGECLOCK_AUDIO_DIR")); dir != "" {
		cfg.AudioDir = dir
	}

	if horizonValue := strings.TrimSpace(os.Getenv("ORANGECLOCK_HORIZON")); horizonValue != "" {
		horizon, err := time.ParseDuration(horizonValue)
		if err != nil || horizon <= 0 {
			invalid = append(invalid, "ORANGECLOCK_HORIZON")
		} else {
			cfg.DefaultHorizon = horizon
		}
	}

	if level := strings.TrimSpace(os.Getenv("ORANGECLOCK_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("valores de variables de entorno no válidos: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
