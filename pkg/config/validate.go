package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
)

// Validate checks the configuration for errors. It is called after defaults
// are applied, so every field is expected to hold a usable value.
func Validate(cfg *Config) error {
	if _, _, err := net.SplitHostPort(cfg.Server.ListenAddress); err != nil {
		return fmt.Errorf("server.listen_address %q is not a valid host:port: %w",
			cfg.Server.ListenAddress, err)
	}

	info, err := os.Stat(cfg.Share.Root)
	if err != nil {
		return fmt.Errorf("share.root %q is not accessible: %w", cfg.Share.Root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("share.root %q is not a directory", cfg.Share.Root)
	}

	// The allow file is a name inside the root, not a path of its own.
	if strings.ContainsRune(cfg.Share.AllowFile, filepath.Separator) || strings.Contains(cfg.Share.AllowFile, "/") {
		return fmt.Errorf("share.allow_file %q must be a bare file name, not a path", cfg.Share.AllowFile)
	}

	if cfg.Share.MaxReadBytes < 0 {
		return fmt.Errorf("share.max_read_bytes must not be negative")
	}
	if cfg.Policy.DebounceInterval < 0 {
		return fmt.Errorf("policy.debounce_interval must not be negative")
	}
	if cfg.Audit.RetentionDays < 0 {
		return fmt.Errorf("audit.retention_days must not be negative")
	}
	if cfg.Audit.MaxRecords < 0 {
		return fmt.Errorf("audit.max_records must not be negative")
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level %q is not one of debug, info, warn, error",
			cfg.Telemetry.Logging.Level)
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format %q is not one of json, text",
			cfg.Telemetry.Logging.Format)
	}

	return nil
}
