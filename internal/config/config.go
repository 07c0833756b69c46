package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds the env-driven runtime settings. Persisted user settings
// (the custom explorer endpoint) live in Settings instead.
type Config struct {
	PricePollSecs   int
	NetworkPollSecs int

	APIEnabled bool
	APIPort    int
	APIKey     string

	SSHPort        int
	SSHHostKeyPath string
}

// Load reads the runtime configuration from the environment, falling back
// to defaults with a warning where values are missing or malformed.
func Load() *Config {
	cfg := &Config{}

	cfg.PricePollSecs = 60
	if v := strings.TrimSpace(os.Getenv("PRICE_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PricePollSecs = n
		} else {
			log.Printf("Warning: invalid PRICE_POLL_SECS=%q, using %d", v, cfg.PricePollSecs)
		}
	}

	cfg.NetworkPollSecs = 120
	if v := strings.TrimSpace(os.Getenv("NETWORK_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.NetworkPollSecs = n
		} else {
			log.Printf("Warning: invalid NETWORK_POLL_SECS=%q, using %d", v, cfg.NetworkPollSecs)
		}
	}

	cfg.APIEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("API_ENABLED")), "true")

	cfg.APIPort = 8080
	if v := strings.TrimSpace(os.Getenv("API_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.APIPort = n
		}
	}

	cfg.APIKey = strings.TrimSpace(os.Getenv("API_KEY"))

	cfg.SSHPort = 23234
	if v := strings.TrimSpace(os.Getenv("SSH_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SSHPort = n
		}
	}

	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/btc_tray_host_key"
	}

	return cfg
}
