// Package config defines ScopeRoot's YAML configuration: server listen
// settings, the shared root and allow file location, policy hot-reload
// behavior, the audit trail, and telemetry.
//
// Configuration is loaded once at startup by the composition root and passed
// down explicitly; there is no package-level configuration state. Loading
// applies defaults, then SCOPEROOT_* environment overrides, then validation.
package config
