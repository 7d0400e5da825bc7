package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file, applies defaults, applies
// SCOPEROOT_* environment variable overrides, and validates the result.
//
// A missing configuration file is not an error: ScopeRoot runs with
// defaults plus environment overrides, since the interesting configuration
// (the allow file) lives inside the shared root anyway.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides using the
// SCOPEROOT_SECTION_FIELD naming convention. Environment variables always
// take precedence over file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("SCOPEROOT_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("SCOPEROOT_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("SCOPEROOT_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	if val := os.Getenv("SCOPEROOT_SHARE_ROOT"); val != "" {
		cfg.Share.Root = val
	}
	if val := os.Getenv("SCOPEROOT_SHARE_ALLOW_FILE"); val != "" {
		cfg.Share.AllowFile = val
	}
	if val := os.Getenv("SCOPEROOT_SHARE_MAX_READ_BYTES"); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Share.MaxReadBytes = n
		}
	}

	if val := os.Getenv("SCOPEROOT_POLICY_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Policy.Watch = &b
		}
	}

	if val := os.Getenv("SCOPEROOT_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("SCOPEROOT_AUDIT_PATH"); val != "" {
		cfg.Audit.Path = val
	}

	if val := os.Getenv("SCOPEROOT_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("SCOPEROOT_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
}
