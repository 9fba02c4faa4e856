package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arengifoc/logsort/internal/audit"
	"github.com/arengifoc/logsort/internal/report"
)

var auditReportPath string

var auditCmd = &cobra.Command{
	Use:   "audit [dir]",
	Short: "Count error occurrences in an already-organized log tree",
	Long: `Audit recursively scans every *.log file under the given directory and
counts whole-word, case-insensitive occurrences of "error". Results go to
stdout, or to a report file with --report.

Examples:
  logsort audit /var/log/sorted
  logsort audit /var/log/sorted --report reporte.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().StringVarP(&auditReportPath, "report", "r", "", "write results to this file instead of stdout")
}

func runAudit(cmd *cobra.Command, args []string) error {
	root := args[0]
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("cannot access %q: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", root)
	}

	var lines []report.Line
	var failed int
	for res := range audit.New(nil).Scan(context.Background(), root) {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", res.Path, res.Err)
			failed++
			continue
		}
		lines = append(lines, report.Line{Name: res.Name, Count: res.Count})
	}

	if auditReportPath != "" {
		if err := report.Write(lines, auditReportPath); err != nil {
			return err
		}
	} else {
		for _, l := range lines {
			fmt.Print(report.Format(l))
		}
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d file(s) could not be read\n", failed)
	}
	return nil
}
