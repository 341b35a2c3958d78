package config

import (
	"os"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp(t.TempDir(), "config*.json")
	if err != nil {
		t.Fatalf("Failed to create temporary file: %v", err)
	}
	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write to temporary file: %v", err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatalf("Failed to close temporary file: %v", err)
	}
	return tmpfile.Name()
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("BOOKHIVE_SESSION_KEY", "")
	t.Setenv("BOOKHIVE_DATABASE_PATH", "")
	path := writeTempConfig(t, `{
		"app_name": "TestApp",
		"listen_ip": "127.0.0.1",
		"listen_port": 9090,
		"session_key": "test-session-key",
		"database_path": "/tmp/test.db",
		"signup_captcha": true
	}`)

	if err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if AppConfig.AppName != "TestApp" {
		t.Errorf("Expected AppName 'TestApp', got '%s'", AppConfig.AppName)
	}
	if AppConfig.Addr() != "127.0.0.1:9090" {
		t.Errorf("Expected address '127.0.0.1:9090', got '%s'", AppConfig.Addr())
	}
	if AppConfig.SessionKey != "test-session-key" {
		t.Errorf("Expected SessionKey 'test-session-key', got '%s'", AppConfig.SessionKey)
	}
	if AppConfig.DatabasePath != "/tmp/test.db" {
		t.Errorf("Expected DatabasePath '/tmp/test.db', got '%s'", AppConfig.DatabasePath)
	}
	if !AppConfig.SignupCaptcha {
		t.Error("Expected SignupCaptcha to be enabled")
	}
	// Unset fields keep their defaults
	if AppConfig.LogLevel != "info" {
		t.Errorf("Expected default LogLevel 'info', got '%s'", AppConfig.LogLevel)
	}
	if AppConfig.RequestsPerMinute != 100 {
		t.Errorf("Expected default RequestsPerMinute 100, got %d", AppConfig.RequestsPerMinute)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("BOOKHIVE_SESSION_KEY", "from-env")
	t.Setenv("BOOKHIVE_DATABASE_PATH", "env.db")
	path := writeTempConfig(t, `{"session_key": "from-file", "database_path": "file.db"}`)

	if err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if AppConfig.SessionKey != "from-env" {
		t.Errorf("Expected SessionKey from environment, got '%s'", AppConfig.SessionKey)
	}
	if AppConfig.DatabasePath != "env.db" {
		t.Errorf("Expected DatabasePath from environment, got '%s'", AppConfig.DatabasePath)
	}
}

func TestLoadConfigGeneratesSessionKey(t *testing.T) {
	t.Setenv("BOOKHIVE_SESSION_KEY", "")
	path := writeTempConfig(t, `{"session_key": "CHANGE_ME_IN_PRODUCTION"}`)

	if err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if AppConfig.SessionKey == "" || AppConfig.SessionKey == "CHANGE_ME_IN_PRODUCTION" {
		t.Errorf("Expected a generated session key, got '%s'", AppConfig.SessionKey)
	}
	if len(AppConfig.SessionKey) != 64 {
		t.Errorf("Expected a 32-byte hex key, got length %d", len(AppConfig.SessionKey))
	}
}

func TestLoadConfigInvalidPath(t *testing.T) {
	err := LoadConfig("non-existent-path.json")
	if err == nil {
		t.Error("LoadConfig with non-existent path should have failed")
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	path := writeTempConfig(t, `{ "invalid": json }`)

	err := LoadConfig(path)
	if err == nil {
		t.Error("LoadConfig with invalid JSON should have failed")
	}
}
