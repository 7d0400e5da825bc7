package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"scoperoot-hq/scoperoot/pkg/cli"
	"scoperoot-hq/scoperoot/pkg/config"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "scoperoot",
	Short: "ScopeRoot - policy-gated file sharing for MCP clients",
	Long: `ScopeRoot exposes a local directory tree to MCP clients behind an
allow-list policy engine.

Access is default-deny:
  - A file is visible only when a pattern in the .scoperoot-allow file at
    the shared root matches it
  - Built-in deny patterns for secrets and VCS internals win over any
    allow rule
  - Paths that escape the shared root are always rejected

The allow file is hot-reloaded, so edits take effect without a restart.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// shareLocation resolves the shared root and allow file path from the
// configuration, honoring a custom share.allow_file name. A non-empty
// rootFlag overrides the configured root.
func shareLocation(rootFlag string) (root, allowPath string, err error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return "", "", cli.NewConfigError("", err.Error())
	}
	root = cfg.Share.Root
	if rootFlag != "" {
		root = rootFlag
	}
	return root, filepath.Join(root, cfg.Share.AllowFile), nil
}
