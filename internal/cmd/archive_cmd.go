package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arengifoc/logsort/internal/archive"
)

var (
	archiveDays int
	archiveOut  string
)

var archiveCmd = &cobra.Command{
	Use:   "archive [dir]",
	Short: "Zip log files older than a cutoff",
	Long: `Archive collects every *.log file under the given directory older than
the cutoff into backup_<YYYYMMDD>.zip. If today's backup already exists the
run is skipped.

Examples:
  logsort archive /var/log/sorted
  logsort archive /var/log/sorted --days 30 --out /backups`,
	Args: cobra.ExactArgs(1),
	RunE: runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().IntVar(&archiveDays, "days", 7, "archive files older than this many days")
	archiveCmd.Flags().StringVar(&archiveOut, "out", os.TempDir(), "directory for the backup zip")
}

func runArchive(cmd *cobra.Command, args []string) error {
	res, err := archive.Run(archive.Config{
		Dir:    args[0],
		OutDir: archiveOut,
		MaxAge: time.Duration(archiveDays) * 24 * time.Hour,
	})
	if errors.Is(err, archive.ErrZipExists) {
		fmt.Fprintf(os.Stderr, "%s already exists, nothing to do\n", res.ZipPath)
		return nil
	}
	if err != nil {
		return err
	}

	for _, f := range res.Failures {
		fmt.Fprintf(os.Stderr, "warning: %s: %v\n", f.Path, f.Err)
	}

	if res.Archived == 0 {
		fmt.Fprintln(os.Stderr, "no log files old enough to archive")
		return nil
	}
	fmt.Printf("archived %d file(s) into %s (%d skipped)\n", res.Archived, res.ZipPath, res.Skipped)
	return nil
}
