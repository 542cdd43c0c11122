/*
main.go - Batch audit CLI

PURPOSE:
  One-shot command-line front end for the audit engine: reads the two
  source workbooks, runs the reconciliation, writes the findings
  workbook, and prints a summary.

USAGE:
  audit run --security security.xlsx --overtime overtime.xlsx \
        --from 2023-05-01 --to 2023-05-31 -o findings.xlsx

SEE ALSO:
  - ingest/ingest.go: Workbook reading and report writing
  - recon/analyzer.go: The engine behind the run command
*/
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/warp/presence-audit/clock"
	"github.com/warp/presence-audit/ingest"
	"github.com/warp/presence-audit/recon"
)

var (
	securityPath string
	overtimePath string
	outputPath   string
	fromDate     string
	toDate       string
	verbose      bool
)

func main() {
	root := &cobra.Command{
		Use:   "audit",
		Short: "Reconcile overtime claims against the building security log",
	}
	root.AddCommand(newRunCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one audit over a pair of workbooks",
		RunE:  runAudit,
	}

	cmd.Flags().StringVar(&securityPath, "security", "", "security log workbook (xlsx)")
	cmd.Flags().StringVar(&overtimePath, "overtime", "", "overtime report workbook (xlsx)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "findings workbook to write (optional)")
	cmd.Flags().StringVar(&fromDate, "from", "", "start date, YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&toDate, "to", "", "end date, YYYY-MM-DD (inclusive)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	cmd.MarkFlagRequired("security")
	cmd.MarkFlagRequired("overtime")

	return cmd
}

func runAudit(cmd *cobra.Command, _ []string) error {
	log := newLogger()

	filter, err := parseRange()
	if err != nil {
		return err
	}

	securityTable, err := ingest.ReadSecurityWorkbook(securityPath)
	if err != nil {
		return err
	}
	overtimeTable, err := ingest.ReadOvertimeWorkbook(overtimePath)
	if err != nil {
		return err
	}

	result, err := recon.NewAnalyzer(log).Run(securityTable, overtimeTable, filter)
	if err != nil {
		return err
	}

	if outputPath != "" {
		if err := ingest.WriteReport(outputPath, result); err != nil {
			return err
		}
	}

	printSummary(cmd, result)
	return nil
}

func parseRange() (clock.Range, error) {
	var filter clock.Range
	if fromDate != "" {
		d, err := clock.ParseDate(fromDate)
		if err != nil {
			return clock.Range{}, fmt.Errorf("invalid --from date %q: %w", fromDate, err)
		}
		filter.From = d
	}
	if toDate != "" {
		d, err := clock.ParseDate(toDate)
		if err != nil {
			return clock.Range{}, fmt.Errorf("invalid --to date %q: %w", toDate, err)
		}
		filter.To = d
	}
	return filter, nil
}

func printSummary(cmd *cobra.Command, result *recon.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Suspicious claims:     %d\n", len(result.Verdicts))
	fmt.Fprintf(out, "Rows missing times:    %d\n", len(result.MissingTime))
	fmt.Fprintf(out, "Rows with errors:      %d\n", len(result.ErrorRows))
	fmt.Fprintf(out, "Unclear security days: %d\n", len(result.UnclearDays))
	for _, v := range result.Verdicts {
		fmt.Fprintf(out, "  %s  %-12s %s: %s\n", v.BusinessDate, v.Employee, v.OvertimePeriod, v.Reason)
	}
	if outputPath != "" {
		fmt.Fprintf(out, "Report written to %s\n", outputPath)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()
}
