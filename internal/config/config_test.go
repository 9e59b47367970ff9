package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func tempConfigPath(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "config.json")
}

func writeTestConfig(t *testing.T, path string, cfg *Config) {
	t.Helper()
	if err := Save(path, cfg); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
}

func TestLoad_WritesDefaults(t *testing.T) {
	path := tempConfigPath(t)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("expected default base_url, got %q", cfg.BaseURL)
	}
	if cfg.Auth.SessionCookieName != "SESSION" {
		t.Errorf("expected default cookie name SESSION, got %q", cfg.Auth.SessionCookieName)
	}
	if cfg.RetryAttempts != 2 {
		t.Errorf("expected 2 retry attempts, got %d", cfg.RetryAttempts)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected defaults written to %s: %v", path, err)
	}
}

func TestSave_ReloadRoundTrip(t *testing.T) {
	path := tempConfigPath(t)

	original := &Config{
		BaseURL:         "https://jclaw.example.com",
		LogLevel:        "debug",
		TimeoutSeconds:  15,
		RetryAttempts:   4,
		RefreshSchedule: "@every 30s",
	}
	original.Auth.SessionCookieName = "JSESSIONID"
	original.Auth.SessionCookie = "cookie-round-trip"
	original.Auth.XSRFToken = "xsrf-round-trip"

	if err := Save(path, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.BaseURL != original.BaseURL {
		t.Errorf("BaseURL mismatch: %v != %v", loaded.BaseURL, original.BaseURL)
	}
	if loaded.LogLevel != original.LogLevel {
		t.Errorf("LogLevel mismatch: %v != %v", loaded.LogLevel, original.LogLevel)
	}
	if loaded.TimeoutSeconds != original.TimeoutSeconds {
		t.Errorf("TimeoutSeconds mismatch: %v != %v", loaded.TimeoutSeconds, original.TimeoutSeconds)
	}
	if loaded.RefreshSchedule != original.RefreshSchedule {
		t.Errorf("RefreshSchedule mismatch: %v != %v", loaded.RefreshSchedule, original.RefreshSchedule)
	}
	if loaded.Auth.SessionCookieName != original.Auth.SessionCookieName {
		t.Errorf("SessionCookieName mismatch: %v != %v", loaded.Auth.SessionCookieName, original.Auth.SessionCookieName)
	}
	if loaded.Auth.SessionCookie != original.Auth.SessionCookie {
		t.Errorf("SessionCookie mismatch: %v != %v", loaded.Auth.SessionCookie, original.Auth.SessionCookie)
	}
}

func TestLoad_Comments(t *testing.T) {
	path := tempConfigPath(t)
	data := `{
  // console target
  "base_url": "https://admin.example.com/",
  /* keep quiet */
  "log_level": "warn"
}`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != "https://admin.example.com" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.BaseURL)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected log_level=warn, got %q", cfg.LogLevel)
	}
	if cfg.TimeoutSeconds != 60 {
		t.Errorf("expected default timeout kept, got %d", cfg.TimeoutSeconds)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := tempConfigPath(t)
	writeTestConfig(t, path, &Config{BaseURL: "http://from-file"})

	t.Setenv("CLAWCONSOLE_BASE_URL", "http://from-env")
	t.Setenv("CLAWCONSOLE_SESSION_COOKIE", "env-cookie")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseURL != "http://from-env" {
		t.Errorf("expected env base_url, got %q", cfg.BaseURL)
	}
	if cfg.Auth.SessionCookie != "env-cookie" {
		t.Errorf("expected env session cookie, got %q", cfg.Auth.SessionCookie)
	}
}

func TestSave_AtomicWrite(t *testing.T) {
	path := tempConfigPath(t)

	cfg := &Config{LogLevel: "info"}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Verify no temp file left behind
	tmpPath := path + ".tmp"
	if _, err := os.Stat(tmpPath); !os.IsNotExist(err) {
		t.Errorf("temp file should not exist after successful save")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved config: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Errorf("saved file is not valid JSON: %v", err)
	}
}

func TestListValues_WithMask(t *testing.T) {
	cfg := &Config{LogLevel: "info"}
	cfg.Auth.SessionCookie = "cookie-secret-1234"
	cfg.Auth.XSRFToken = "xsrf-5678"

	flat, err := ListValues(cfg, true)
	if err != nil {
		t.Fatalf("ListValues failed: %v", err)
	}
	if flat["auth.session_cookie"] != "***1234" {
		t.Errorf("expected masked auth.session_cookie=***1234, got %v", flat["auth.session_cookie"])
	}
	if flat["auth.xsrf_token"] != "***5678" {
		t.Errorf("expected masked auth.xsrf_token=***5678, got %v", flat["auth.xsrf_token"])
	}
	if flat["log_level"] != "info" {
		t.Errorf("expected log_level=info, got %v", flat["log_level"])
	}
}

func TestListValues_NoMask(t *testing.T) {
	cfg := &Config{}
	cfg.Auth.SessionCookie = "cookie-secret-1234"

	flat, err := ListValues(cfg, false)
	if err != nil {
		t.Fatalf("ListValues failed: %v", err)
	}
	if flat["auth.session_cookie"] != "cookie-secret-1234" {
		t.Errorf("expected unmasked cookie, got %v", flat["auth.session_cookie"])
	}
}

func TestGetValue_ExistingKey(t *testing.T) {
	path := tempConfigPath(t)

	cfg := &Config{LogLevel: "debug", TimeoutSeconds: 8}
	cfg.Auth.SessionCookieName = "SESSION"
	writeTestConfig(t, path, cfg)

	v, err := GetValue(path, "auth.session_cookie_name")
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if v != "SESSION" {
		t.Errorf("expected SESSION, got %v", v)
	}

	v, err = GetValue(path, "timeout_seconds")
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	// JSON numbers are float64
	if v != float64(8) {
		t.Errorf("expected timeout_seconds=8, got %v (%T)", v, v)
	}
}

func TestGetValue_UnknownKey(t *testing.T) {
	path := tempConfigPath(t)
	writeTestConfig(t, path, &Config{LogLevel: "info"})

	_, err := GetValue(path, "nonexistent.key")
	if err == nil {
		t.Fatal("expected error for unknown key, got nil")
	}
	expected := "unknown config key: nonexistent.key"
	if err.Error() != expected {
		t.Errorf("expected error %q, got %q", expected, err.Error())
	}
}

func TestSetValue_StringAndNumeric(t *testing.T) {
	path := tempConfigPath(t)
	writeTestConfig(t, path, &Config{LogLevel: "info", BaseURL: "http://keep"})

	if err := SetValue(path, "log_level", "debug"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if err := SetValue(path, "retry_attempts", "5"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	v, _ := GetValue(path, "log_level")
	if v != "debug" {
		t.Errorf("expected log_level=debug after set, got %v", v)
	}
	v, _ = GetValue(path, "retry_attempts")
	if v != float64(5) {
		t.Errorf("expected retry_attempts=5, got %v (%T)", v, v)
	}
	v, _ = GetValue(path, "base_url")
	if v != "http://keep" {
		t.Errorf("expected base_url preserved, got %v", v)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load after SetValue failed: %v", err)
	}
	if cfg.RetryAttempts != 5 {
		t.Errorf("expected typed retry_attempts=5 after reload, got %d", cfg.RetryAttempts)
	}
}

func TestSetValue_NestedKey(t *testing.T) {
	path := tempConfigPath(t)
	writeTestConfig(t, path, &Config{})

	if err := SetValue(path, "auth.session_cookie", "new-cookie"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	v, err := GetValue(path, "auth.session_cookie")
	if err != nil {
		t.Fatalf("GetValue failed: %v", err)
	}
	if v != "new-cookie" {
		t.Errorf("expected new-cookie, got %v", v)
	}
}

func TestSetValue_NonexistentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist", "config.json")
	if err := SetValue(path, "log_level", "debug"); err == nil {
		t.Fatal("expected error for nonexistent file, got nil")
	}
}

func TestSetValue_UnknownKey(t *testing.T) {
	path := tempConfigPath(t)
	writeTestConfig(t, path, &Config{})

	err := SetValue(path, "auth.password", "x")
	if err == nil || err.Error() != "unknown config key: auth.password" {
		t.Fatalf("expected unknown key error, got %v", err)
	}
	if _, err := GetValue(path, "auth.password"); err == nil {
		t.Error("expected nothing written for an unknown key")
	}
}

func TestSetValue_IntegerField(t *testing.T) {
	path := tempConfigPath(t)
	writeTestConfig(t, path, &Config{TimeoutSeconds: 60})

	if err := SetValue(path, "timeout_seconds", "soon"); err == nil {
		t.Fatal("expected error for non-integer timeout")
	}
	v, _ := GetValue(path, "timeout_seconds")
	if v != float64(60) {
		t.Errorf("expected timeout unchanged, got %v", v)
	}
}

func TestSetValue_NumericStringStaysString(t *testing.T) {
	path := tempConfigPath(t)
	writeTestConfig(t, path, &Config{})

	if err := SetValue(path, "auth.xsrf_token", "1234"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Auth.XSRFToken != "1234" {
		t.Errorf("expected xsrf token 1234, got %q", cfg.Auth.XSRFToken)
	}
}
