package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/clinicpulse/clinicpulse/internal/logging"
)

// DefaultTickInterval matches the dashboard's simulated refresh cadence.
const DefaultTickInterval = 30 * time.Second

// Config holds application configuration
type Config struct {
	DatabaseURL    string
	Port           string
	ClinicName     string
	TickInterval   time.Duration
	TrustedOrigins []string
	RealtimeListen bool // Relay Postgres NOTIFY events onto the update bus
}

// Load loads configuration from multiple sources with priority:
// 1. Command flags (set via LoadWithOverrides)
// 2. Config file (./clinicpulse.toml or $XDG_CONFIG_HOME/clinicpulse/clinicpulse.toml)
// 3. Environment variables
func Load() (*Config, error) {
	v := newBaseViper()
	_ = v.ReadInConfig()
	return buildConfig(v, "", "", ""), nil
}

// LoadWithOverrides loads config and applies flag overrides
func LoadWithOverrides(databaseURL, port, clinicName string) (*Config, error) {
	v := newBaseViper()
	_ = v.ReadInConfig()
	return buildConfig(v, databaseURL, port, clinicName), nil
}

func newBaseViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("clinicpulse")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	// XDG Base Directory, resolved by hand so tests can point it elsewhere
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		v.AddConfigPath(filepath.Join(configHome, "clinicpulse"))
	}

	return v
}

func buildConfig(v *viper.Viper, overrideDatabaseURL, overridePort, overrideClinicName string) *Config {
	cfg := &Config{
		Port:           "3000",
		ClinicName:     "Clinic",
		TickInterval:   DefaultTickInterval,
		TrustedOrigins: []string{"localhost"},
		RealtimeListen: true,
	}

	// Apply config file values
	if v.IsSet("database_url") {
		cfg.DatabaseURL = v.GetString("database_url")
	}
	if v.IsSet("port") {
		cfg.Port = v.GetString("port")
	}
	if v.IsSet("clinic_name") {
		cfg.ClinicName = v.GetString("clinic_name")
	}
	if v.IsSet("tick_interval") {
		if d := v.GetDuration("tick_interval"); d > 0 {
			cfg.TickInterval = d
		}
	}
	if v.IsSet("trusted_origins") {
		cfg.TrustedOrigins = parseTrustedOrigins(v.GetString("trusted_origins"))
	}
	if v.IsSet("realtime.listen") {
		cfg.RealtimeListen = v.GetBool("realtime.listen")
	}

	// Environment fallback (only if not configured)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if !v.IsSet("port") {
		if envPort := os.Getenv("PORT"); envPort != "" {
			cfg.Port = envPort
		}
	}
	if !v.IsSet("clinic_name") {
		if envName := os.Getenv("CLINIC_NAME"); envName != "" {
			cfg.ClinicName = envName
		}
	}
	if !v.IsSet("tick_interval") {
		if d, err := time.ParseDuration(os.Getenv("TICK_INTERVAL")); err == nil && d > 0 {
			cfg.TickInterval = d
		}
	}
	if !v.IsSet("trusted_origins") {
		if envOrigins := os.Getenv("TRUSTED_ORIGINS"); envOrigins != "" {
			cfg.TrustedOrigins = parseTrustedOrigins(envOrigins)
		}
	}
	if !v.IsSet("realtime.listen") {
		if b, err := strconv.ParseBool(os.Getenv("REALTIME_LISTEN")); err == nil {
			cfg.RealtimeListen = b
		}
	}

	// Apply overrides (flags) last
	if overrideDatabaseURL != "" {
		cfg.DatabaseURL = overrideDatabaseURL
	}
	if overridePort != "" {
		cfg.Port = overridePort
	}
	if overrideClinicName != "" {
		cfg.ClinicName = overrideClinicName
	}

	return cfg
}

// parseTrustedOrigins parses a comma-separated string into a slice of trimmed, lowercased origins
func parseTrustedOrigins(originsStr string) []string {
	if originsStr == "" {
		return []string{}
	}

	parts := strings.Split(originsStr, ",")
	origins := make([]string, 0, len(parts))

	for _, part := range parts {
		origin, err := SanitizeTrustedDomain(part)
		if err != nil {
			logging.L().Warn("ignoring trusted origin", "error", err)
			continue
		}
		origins = append(origins, origin)
	}

	return origins
}

// AllowedOrigins renders the trusted origins as CORS origin URLs.
func (c *Config) AllowedOrigins() []string {
	out := make([]string, 0, len(c.TrustedOrigins)*2)
	for _, origin := range c.TrustedOrigins {
		out = append(out, "http://"+origin, "https://"+origin)
	}
	return out
}
