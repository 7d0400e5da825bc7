package config

import "time"

// Config is the root configuration structure for ScopeRoot.
type Config struct {
	// Server contains HTTP server configuration including listen address
	// and timeouts.
	Server ServerConfig `yaml:"server"`

	// Share contains the shared root location, the allow file name, and
	// read limits.
	Share ShareConfig `yaml:"share"`

	// Policy contains configuration for the policy engine's hot-reload
	// behavior.
	Policy PolicyConfig `yaml:"policy"`

	// Audit contains configuration for the access decision audit trail.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8000"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response
	// writes. Streamable MCP responses can be long-lived, so the default
	// is generous. Default: 5m
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request on a
	// kept-alive connection. Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ShareConfig describes the directory tree being exposed.
type ShareConfig struct {
	// Root is the shared root directory. All evaluated paths are relative
	// to it. Default: "." (the working directory)
	Root string `yaml:"root"`

	// AllowFile is the name of the allow-list file, located directly
	// inside the shared root. Default: ".scoperoot-allow"
	AllowFile string `yaml:"allow_file"`

	// MaxReadBytes caps read_text responses. Requests may lower but not
	// raise it. Default: 200000
	MaxReadBytes int64 `yaml:"max_read_bytes"`
}

// PolicyConfig contains configuration for policy hot-reload.
type PolicyConfig struct {
	// Watch enables the fsnotify-based file watcher in addition to the
	// per-request change check. Default: true
	Watch *bool `yaml:"watch"`

	// DebounceInterval is the quiet period after the last allow file
	// event before the watcher reloads. Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// AuditConfig contains configuration for the decision audit trail.
type AuditConfig struct {
	// Enabled turns audit recording on. Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	// Default: "scoperoot-audit.db"
	Path string `yaml:"path"`

	// RetentionDays is how long decision records are kept. Zero disables
	// age-based pruning. Default: 30
	RetentionDays int `yaml:"retention_days"`

	// MaxRecords caps the number of stored records. Zero disables
	// count-based pruning. Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression for automatic pruning
	// (e.g. "0 3 * * *" for daily at 3 AM). Empty disables the scheduler.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text"). Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled exposes /metrics on the server. Default: true
	Enabled *bool `yaml:"enabled"`

	// Namespace is the metric name prefix. Default: "scoperoot"
	Namespace string `yaml:"namespace"`
}
