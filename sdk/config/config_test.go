package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
base-url: https://api.eralove.example/
request-timeout: 30
files-path-prefix: /files/
credentials-file: /tmp/creds.json
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BaseURL != "https://api.eralove.example" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", cfg.BaseURL)
	}
	if got := cfg.RequestTimeout(); got != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", got)
	}
	if cfg.FilesPathPrefix != "/files/" {
		t.Errorf("FilesPathPrefix = %q", cfg.FilesPathPrefix)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "base-url: https://api.eralove.example\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := cfg.RequestTimeout(); got != DefaultRequestTimeout {
		t.Errorf("RequestTimeout = %v, want default %v", got, DefaultRequestTimeout)
	}
	if cfg.FilesPathPrefix != DefaultFilesPathPrefix {
		t.Errorf("FilesPathPrefix = %q, want default", cfg.FilesPathPrefix)
	}
	if cfg.CredentialsFile == "" {
		t.Error("CredentialsFile not defaulted")
	}
}

func TestLoadConfigMissingBaseURL(t *testing.T) {
	path := writeConfig(t, "request-timeout: 5\n")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for missing base-url")
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, "base-url: https://file.example\n")
	t.Setenv("ERALOVE_BASE_URL", "https://env.example")
	t.Setenv("ERALOVE_REQUEST_TIMEOUT", "7")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BaseURL != "https://env.example" {
		t.Errorf("BaseURL = %q, want env override", cfg.BaseURL)
	}
	if cfg.RequestTimeoutSeconds != 7 {
		t.Errorf("RequestTimeoutSeconds = %d, want 7", cfg.RequestTimeoutSeconds)
	}
}
