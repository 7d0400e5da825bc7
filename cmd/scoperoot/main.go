// ScopeRoot exposes a local directory tree to MCP clients behind an
// allow-list policy engine.
//
// Access is default-deny: a file is visible only when a pattern in the
// .scoperoot-allow file at the shared root matches it, and built-in deny
// patterns for secrets and VCS internals win over any allow rule. The allow
// file is hot-reloaded, so edits take effect without a restart.
//
// Usage:
//
//	# Serve the current directory
//	scoperoot run
//
//	# Serve a specific directory with custom configuration
//	scoperoot run --config /etc/scoperoot/config.yaml
//
//	# Lint an allow file
//	scoperoot check --root /srv/share
//
//	# Ask what the policy would decide for a path
//	scoperoot eval src/main.py
//
//	# Show version information
//	scoperoot version
package main

func main() {
	Execute()
}
