package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scoperoot-hq/scoperoot/pkg/cli"
	"scoperoot-hq/scoperoot/pkg/policy"
)

var checkFlags struct {
	root   string
	file   string
	format string
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate an allow file",
	Long: `Parse an allow file and report its patterns.

The check command validates every pattern in the allow file and reports
parse errors with line numbers. It also warns about allow patterns that
are fully shadowed by the built-in deny rules and can never take effect.

Examples:
  # Check the allow file in the current directory
  scoperoot check

  # Check the allow file in a specific root
  scoperoot check --root /srv/share

  # Check a specific file
  scoperoot check --file /tmp/candidate-allow

  # JSON output for CI
  scoperoot check --format json`,
	RunE: checkAllowFile,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkFlags.root, "root", "r", "", "shared root containing the allow file (default: configured share.root)")
	checkCmd.Flags().StringVarP(&checkFlags.file, "file", "f", "", "allow file to check (overrides --root)")
	checkCmd.Flags().StringVar(&checkFlags.format, "format", "text", "output format: text, json")
}

// CheckResult is the outcome of validating one allow file.
type CheckResult struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Patterns []string `json:"patterns,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func checkAllowFile(cmd *cobra.Command, args []string) error {
	path := checkFlags.file
	if path == "" {
		var err error
		if _, path, err = shareLocation(checkFlags.root); err != nil {
			return err
		}
	}

	result := CheckResult{File: path, Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return outputCheckResult(result)
	}

	loader := policy.NewLoader(path, nil)
	rs, err := loader.Parse(data)
	if err != nil {
		result.Valid = false
		var parseErr *policy.ParseError
		if errors.As(err, &parseErr) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("line %d: pattern %q: %s", parseErr.Line, parseErr.Pattern, parseErr.Message))
		} else {
			result.Errors = append(result.Errors, err.Error())
		}
		return outputCheckResult(result)
	}

	result.Patterns = rs.AllowSources()

	// An allow pattern that names a hard-denied path is legal but inert.
	for _, src := range rs.AllowSources() {
		if rs.HardDenied(src) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("pattern %q is shadowed by a built-in deny rule", src))
		}
	}

	return outputCheckResult(result)
}

func outputCheckResult(result CheckResult) error {
	if checkFlags.format == "json" {
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, result); err != nil {
			return err
		}
	} else {
		if result.Valid {
			fmt.Printf("✓ %s: %d patterns\n", result.File, len(result.Patterns))
			for _, p := range result.Patterns {
				fmt.Printf("  %s\n", p)
			}
		} else {
			fmt.Printf("✗ %s\n", result.File)
			for _, e := range result.Errors {
				fmt.Printf("  error: %s\n", e)
			}
		}
		for _, w := range result.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
	}

	if !result.Valid {
		return fmt.Errorf("allow file is invalid")
	}
	return nil
}
