// Package config provides configuration management for the EraLove client.
// It handles loading and parsing YAML configuration files and provides
// structured access to application settings including the API base address,
// request timeout, protected file prefix, and credential persistence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultRequestTimeout applies when request-timeout is absent from the file.
	DefaultRequestTimeout = 15 * time.Second

	// DefaultFilesPathPrefix is the backend's user-file-serving path prefix.
	// URLs under this prefix require bearer authentication.
	DefaultFilesPathPrefix = "/files/"

	// DefaultCredentialsFile is the credential store location relative to the
	// user home directory when credentials-file is not configured.
	DefaultCredentialsFile = ".eralove/credentials.json"
)

// Config represents the client configuration, loaded from a YAML file.
type Config struct {
	// BaseURL is the root address of the EraLove REST backend.
	BaseURL string `yaml:"base-url" json:"base-url"`

	// RequestTimeoutSeconds bounds every request issued through the pipeline.
	// <= 0 falls back to DefaultRequestTimeout.
	RequestTimeoutSeconds int `yaml:"request-timeout,omitempty" json:"request-timeout,omitempty"`

	// FilesPathPrefix is the path prefix under BaseURL that serves protected
	// user files. The media fetcher keys its classification rule on it.
	FilesPathPrefix string `yaml:"files-path-prefix,omitempty" json:"files-path-prefix,omitempty"`

	// LandingURL is reported to the auth-expired hook when the session becomes
	// unrecoverable, so embedding applications can route the user there.
	LandingURL string `yaml:"landing-url,omitempty" json:"landing-url,omitempty"`

	// CredentialsFile is where access/refresh tokens and the cached user
	// profile are persisted across runs.
	CredentialsFile string `yaml:"credentials-file,omitempty" json:"credentials-file,omitempty"`

	// ProxyURL is the URL of an optional proxy server for outbound requests.
	ProxyURL string `yaml:"proxy-url,omitempty" json:"proxy-url,omitempty"`

	// Debug enables debug-level logging.
	Debug bool `yaml:"debug,omitempty" json:"debug,omitempty"`

	// RequestLog enables detailed request/response logging.
	RequestLog bool `yaml:"request-log,omitempty" json:"request-log,omitempty"`

	// LogFile, when set, routes log output to a rotated file instead of stderr.
	LogFile string `yaml:"log-file,omitempty" json:"log-file,omitempty"`

	// WatchCredentials enables reloading of the credential store when the
	// backing file is modified by another process.
	WatchCredentials bool `yaml:"watch-credentials,omitempty" json:"watch-credentials,omitempty"`
}

// RequestTimeout returns the configured timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	if c == nil || c.RequestTimeoutSeconds <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// LoadConfig reads and parses the YAML configuration file, applies environment
// overrides, and fills defaults. Environment variables win over file values so
// deployments can tweak a shared file without editing it.
func LoadConfig(configFile string) (*Config, error) {
	cfg := &Config{}
	if strings.TrimSpace(configFile) != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("eralove config: read %s failed: %w", configFile, err)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("eralove config: parse %s failed: %w", configFile, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("eralove config: base-url is required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("ERALOVE_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("ERALOVE_REQUEST_TIMEOUT")); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			cfg.RequestTimeoutSeconds = seconds
		}
	}
	if v := strings.TrimSpace(os.Getenv("ERALOVE_FILES_PATH_PREFIX")); v != "" {
		cfg.FilesPathPrefix = v
	}
	if v := strings.TrimSpace(os.Getenv("ERALOVE_CREDENTIALS_FILE")); v != "" {
		cfg.CredentialsFile = v
	}
	if v := strings.TrimSpace(os.Getenv("ERALOVE_PROXY_URL")); v != "" {
		cfg.ProxyURL = v
	}
	if v := strings.TrimSpace(os.Getenv("ERALOVE_DEBUG")); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = debug
		}
	}
}

func applyDefaults(cfg *Config) error {
	if strings.TrimSpace(cfg.FilesPathPrefix) == "" {
		cfg.FilesPathPrefix = DefaultFilesPathPrefix
	}
	if strings.TrimSpace(cfg.CredentialsFile) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("eralove config: resolve home dir failed: %w", err)
		}
		cfg.CredentialsFile = filepath.Join(home, DefaultCredentialsFile)
	}
	return nil
}
