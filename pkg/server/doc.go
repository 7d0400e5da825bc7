// Package server provides the HTTP server exposing the shared tree over the
// Model Context Protocol.
//
// The server mounts three endpoints:
//
//   - /mcp      - the streamable MCP endpoint with the list_files and
//     read_text tools
//   - /healthz  - liveness check
//   - /metrics  - Prometheus metrics, when enabled
//
// Every denial reported to a remote caller uses the same message. Whether a
// path was outside the policy, hard-denied, or an escape attempt is visible
// only in the host's own logs, metrics, and audit trail.
package server
