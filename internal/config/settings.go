package config

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultMempoolAPIURL is used whenever the custom endpoint is disabled.
const DefaultMempoolAPIURL = "https://mempool.space/api"

const (
	appDirName       = "btc-tray"
	settingsFileName = "config.json"
)

// Settings is the persisted user configuration record.
type Settings struct {
	MempoolCustomURLEnabled bool   `json:"mempool_custom_url_enabled"`
	MempoolAPIURL           string `json:"mempool_api_url"`
}

func DefaultSettings() Settings {
	return Settings{
		MempoolCustomURLEnabled: false,
		MempoolAPIURL:           DefaultMempoolAPIURL,
	}
}

// SettingsStore owns the on-disk settings file. Every change is saved
// synchronously.
type SettingsStore struct {
	mu       sync.Mutex
	path     string
	settings Settings
}

// OpenSettings loads the settings file from the per-user config directory,
// creating it with defaults when missing or corrupt. A config directory that
// cannot be created is tolerated: the file falls back to the working
// directory.
func OpenSettings() *SettingsStore {
	dir, err := os.UserConfigDir()
	if err != nil {
		log.Printf("Warning: cannot resolve user config dir: %v, using working directory", err)
		dir = "."
	} else {
		dir = filepath.Join(dir, appDirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("Warning: cannot create config dir %s: %v, using working directory", dir, err)
			dir = "."
		}
	}
	return openSettingsAt(filepath.Join(dir, settingsFileName))
}

func openSettingsAt(path string) *SettingsStore {
	s := &SettingsStore{path: path, settings: DefaultSettings()}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: cannot read settings file: %v, restoring defaults", err)
		}
		if err := s.save(); err != nil {
			log.Printf("Warning: cannot persist default settings: %v", err)
		}
		return s
	}

	if err := json.Unmarshal(data, &s.settings); err != nil {
		log.Printf("Warning: corrupt settings file, restoring defaults: %v", err)
		s.settings = DefaultSettings()
		if err := s.save(); err != nil {
			log.Printf("Warning: cannot persist default settings: %v", err)
		}
	}
	return s
}

// Settings returns a copy of the current record.
func (s *SettingsStore) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetCustomURLEnabled toggles the custom endpoint and saves synchronously.
func (s *SettingsStore) SetCustomURLEnabled(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.MempoolCustomURLEnabled = enabled
	return s.save()
}

// SetMempoolAPIURL stores a normalized endpoint URL and saves synchronously.
func (s *SettingsStore) SetMempoolAPIURL(rawURL string) error {
	normalized, err := NormalizeEndpoint(rawURL)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.MempoolAPIURL = normalized
	return s.save()
}

// ActiveMempoolURL resolves which explorer endpoint gateway calls use.
func (s *SettingsStore) ActiveMempoolURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings.MempoolCustomURLEnabled && s.settings.MempoolAPIURL != "" {
		return s.settings.MempoolAPIURL
	}
	return DefaultMempoolAPIURL
}

func (s *SettingsStore) save() error {
	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

// NormalizeEndpoint turns user input into a usable explorer base URL: spaces
// and trailing slashes are trimmed, a missing scheme defaults to https, the
// result must be a valid absolute URL, and the /api path suffix is ensured.
func NormalizeEndpoint(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("endpoint URL is empty")
	}
	raw = strings.TrimRight(raw, "/")
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("endpoint URL %q has no host", raw)
	}

	u.Path = strings.TrimRight(u.Path, "/")
	if !strings.HasSuffix(u.Path, "/api") {
		u.Path += "/api"
	}
	return u.String(), nil
}
