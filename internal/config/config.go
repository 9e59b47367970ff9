package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
)

type Config struct {
	BaseURL         string `json:"base_url"`
	LogLevel        string `json:"log_level"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
	RetryAttempts   int    `json:"retry_attempts"`
	RefreshSchedule string `json:"refresh_schedule"`
	Auth            struct {
		SessionCookieName string `json:"session_cookie_name"`
		SessionCookie     string `json:"session_cookie" secret:"true"`
		XSRFToken         string `json:"xsrf_token" secret:"true"`
	} `json:"auth"`
}

// DefaultPath returns ~/.clawconsole/config.json.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".clawconsole", "config.json")
}

func defaults() *Config {
	cfg := &Config{
		BaseURL:        "http://localhost:8080",
		LogLevel:       "info",
		TimeoutSeconds: 60,
		RetryAttempts:  2,
	}
	cfg.Auth.SessionCookieName = "SESSION"
	return cfg
}

// Load reads the config file at path. The file may contain // and /* */
// comments. A missing file is created with defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if baseURL := os.Getenv("CLAWCONSOLE_BASE_URL"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if cookie := os.Getenv("CLAWCONSOLE_SESSION_COOKIE"); cookie != "" {
		cfg.Auth.SessionCookie = cookie
	}
	if token := os.Getenv("CLAWCONSOLE_XSRF_TOKEN"); token != "" {
		cfg.Auth.XSRFToken = token
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, nil
}

// Save writes cfg to path atomically, creating the parent directory.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return writeAtomic(path, append(data, '\n'))
}

func writeAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}
