/*
Package cli provides output formatting, exit codes, progress and signal
helpers for the cardvault command.

Output Formatting:

Results are printed as text, JSON or an aligned table. Table output needs
the result to implement Tabular:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, records); err != nil {
		return err
	}

Exit Codes:

	os.Exit(cli.ExitCode(err))

maps configuration errors to 2, partially failed batches to 3 and missing
archive records to 4.

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
