package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/frahmantamala/missiontime/internal/report"
	"github.com/frahmantamala/missiontime/pkg/dateutil"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report commands",
}

var (
	reportDept      int64
	reportProgram   int64
	reportWeekEnd   string
	reportLastWeeks int
	reportOut       string
)

var reportExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the weekly, daily and grid sheets for one report week to an xlsx file",
	RunE: func(cmd *cobra.Command, args []string) error {
		weekEnd := dateutil.Truncate(time.Now())
		if reportWeekEnd != "" {
			var err error
			if weekEnd, err = dateutil.Parse(reportWeekEnd); err != nil {
				return fmt.Errorf("invalid --week-end: %w", err)
			}
		}

		deps, err := initializeDependencies()
		if err != nil {
			return err
		}
		defer deps.Close()

		lastN := reportLastWeeks
		if lastN <= 0 {
			lastN = deps.Config.Report.RecentWeeks
		}
		out := reportOut
		if out == "" {
			out = filepath.Join(deps.Config.Report.OutputDir,
				fmt.Sprintf("hours_%d_%d_%s.xlsx", reportDept, reportProgram, dateutil.Format(weekEnd)))
		}

		exporter := report.NewExporter(deps.Aggregation, deps.Logger)
		err = writeReport(out, func(w io.Writer) error {
			return exporter.Export(context.Background(), w, report.Request{
				DepartmentID: reportDept,
				ProgramID:    reportProgram,
				WeekStart:    dateutil.Monday(weekEnd),
				WeekEnd:      weekEnd,
				LastN:        lastN,
			})
		})
		if err != nil {
			return err
		}
		fmt.Println("report written to", out)
		return nil
	},
}

// writeReport creates out and removes it again when the write or the close fails.
func writeReport(out string, write func(w io.Writer) error) error {
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(out)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(out)
		return fmt.Errorf("failed to close %s: %w", out, err)
	}
	return nil
}

func init() {
	reportExportCmd.Flags().Int64Var(&reportDept, "department", 0, "department or complex id; its whole subtree is included")
	reportExportCmd.Flags().Int64Var(&reportProgram, "program", 0, "program id")
	reportExportCmd.Flags().StringVar(&reportWeekEnd, "week-end", "", "last day of the report week, yyyy-MM-dd (default today)")
	reportExportCmd.Flags().IntVar(&reportLastWeeks, "weeks", 0, "weekly columns to include (default report.recent_weeks)")
	reportExportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "output file (default under report.output_dir)")
	_ = reportExportCmd.MarkFlagRequired("department")
	_ = reportExportCmd.MarkFlagRequired("program")

	reportCmd.AddCommand(reportExportCmd)
}
