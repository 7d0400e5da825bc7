/*
Package cli provides command-line interface utilities for the scoperoot
command.

Output Formatting:

Command results can be rendered as text or JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Signal Handling:

SetupSignalHandler returns a context cancelled on SIGINT or SIGTERM, for
driving graceful shutdown:

	ctx := cli.SetupSignalHandler()
	if err := srv.Start(ctx); err != nil {
		return err
	}

Error Types:

ConfigError and CommandError give command failures a consistent shape for
the top-level error printer.
*/
package cli
