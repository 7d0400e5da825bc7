package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scoperoot-hq/scoperoot/pkg/cli"
	"scoperoot-hq/scoperoot/pkg/policy"
)

var evalFlags struct {
	root   string
	format string
}

var evalCmd = &cobra.Command{
	Use:   "eval PATH [PATH...]",
	Short: "Evaluate paths against the policy",
	Long: `Evaluate one or more relative paths against the allow file and print
the decision for each one.

Unlike responses to remote callers, this command shows the full decision
reason, including whether a path was hard-denied or escaped the root.

Examples:
  # What would a client see for these paths?
  scoperoot eval src/main.py .env docs/readme.md

  # Evaluate against a different root
  scoperoot eval --root /srv/share src/main.py`,
	Args: cobra.MinimumNArgs(1),
	RunE: evalPaths,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVarP(&evalFlags.root, "root", "r", "", "shared root directory (default: configured share.root)")
	evalCmd.Flags().StringVar(&evalFlags.format, "format", "text", "output format: text, json")
}

// EvalResult is the decision for one evaluated path.
type EvalResult struct {
	Path    string `json:"path"`
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

func evalPaths(cmd *cobra.Command, args []string) error {
	root, allowPath, err := shareLocation(evalFlags.root)
	if err != nil {
		return err
	}
	store := policy.NewStore(policy.NewLoader(allowPath, nil), nil)
	if _, err := store.Reload(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v (evaluating against default-deny)\n", err)
	}

	gate, err := policy.NewGate(root, store, nil)
	if err != nil {
		return fmt.Errorf("failed to open shared root: %w", err)
	}

	results := make([]EvalResult, 0, len(args))
	denied := false
	for _, path := range args {
		d := gate.Evaluate(path, policy.OpRead)
		if !d.Allowed {
			denied = true
		}
		results = append(results, EvalResult{
			Path:    path,
			Allowed: d.Allowed,
			Reason:  d.Reason.String(),
		})
	}

	if evalFlags.format == "json" {
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			mark := "✓"
			if !r.Allowed {
				mark = "✗"
			}
			fmt.Printf("%s %s (%s)\n", mark, r.Path, r.Reason)
		}
	}

	if denied {
		os.Exit(1)
	}
	return nil
}
