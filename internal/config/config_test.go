package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PRICE_POLL_SECS", "")
	t.Setenv("NETWORK_POLL_SECS", "")
	t.Setenv("API_ENABLED", "")
	t.Setenv("API_PORT", "")
	t.Setenv("SSH_PORT", "")

	cfg := Load()
	if cfg.PricePollSecs != 60 || cfg.NetworkPollSecs != 120 {
		t.Fatalf("unexpected default intervals: %+v", cfg)
	}
	if cfg.APIEnabled {
		t.Fatal("API must default to disabled")
	}
	if cfg.APIPort != 8080 || cfg.SSHPort != 23234 {
		t.Fatalf("unexpected default ports: %+v", cfg)
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("PRICE_POLL_SECS", "30")
	t.Setenv("NETWORK_POLL_SECS", "300")
	t.Setenv("API_ENABLED", "TRUE")
	t.Setenv("API_PORT", "9090")
	t.Setenv("API_KEY", "secret")

	cfg := Load()
	if cfg.PricePollSecs != 30 || cfg.NetworkPollSecs != 300 {
		t.Fatalf("unexpected intervals: %+v", cfg)
	}
	if !cfg.APIEnabled || cfg.APIPort != 9090 || cfg.APIKey != "secret" {
		t.Fatalf("unexpected API config: %+v", cfg)
	}

	t.Setenv("PRICE_POLL_SECS", "bad")
	cfg = Load()
	if cfg.PricePollSecs != 60 {
		t.Fatalf("invalid interval should fall back to default, got %d", cfg.PricePollSecs)
	}
}
