package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/trace-report-tools/internal/cli"
	"github.com/fpang/trace-report-tools/internal/config"
	"github.com/fpang/trace-report-tools/internal/logging"
	"github.com/fpang/trace-report-tools/internal/lsmreport"
	"github.com/fpang/trace-report-tools/internal/metrics"
	"github.com/fpang/trace-report-tools/internal/pueue"
	"github.com/fpang/trace-report-tools/internal/sheet"
	"github.com/fpang/trace-report-tools/internal/source"
)

// rootCmd is the main Cobra command for the lsm-rotations CLI.
var rootCmd = &cobra.Command{
	Use:   "lsm-rotations",
	Short: "Count ops-completed markers between FIFO rotations of LSM benchmark tasks",
	Long: `lsm-rotations reads the pueue task state, selects finished LSM tasks whose
run succeeded, and scans each task's log for FIFO rotations. For every task it
records how many "M ops completed" markers were logged between consecutive
rotations and writes one row per task to an xlsx workbook.

Paths come from the environment:
  PUEUE_STATE_PATH    pueue state.json
  PUEUE_LOGS_DIR      directory of <task-id>.log files
  LSM_ROTATIONS_XLSX  output workbook
  LSM_LABEL_MARKER    label substring that selects tasks (case-insensitive)

Example:
  lsm-rotations`,
	Args: cobra.NoArgs,
	Run:  runMain,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	rec := metrics.New("lsm-rotations")
	defer rec.Flush()

	cfg, err := config.Load()
	if err != nil {
		logging.Init("info")
		rec.Fatal().Err(err).Msg("Invalid configuration")
	}
	logging.Init(cfg.Logging.Level)

	logging.NewStartupLogger("lsm-rotations").
		Input("state", cfg.Pueue.StatePath).
		Input("logs", cfg.Pueue.LogsDir).
		Output("xlsx", cfg.Report.RotationsXLSX).
		Config("label_marker", cfg.Report.LabelMarker).
		Config("encoding", cfg.Report.Encoding).
		Log()

	tasks, err := pueue.LoadState(cfg.Pueue.StatePath)
	if err != nil {
		rec.Fatal().Err(err).Str("path", cfg.Pueue.StatePath).Msg("Failed to load task state")
	}
	rec.Add("tasks", len(tasks))

	rows := lsmreport.Build(tasks, lsmreport.Options{
		LogsDir:     cfg.Pueue.LogsDir,
		LabelMarker: cfg.Report.LabelMarker,
		Source:      source.Options{Encoding: cfg.Report.Encoding},
	})
	rec.Add("selected_tasks", len(rows))
	for _, r := range rows {
		rec.Add("segments", len(r.Counts))
	}

	if err := writeWorkbook(cfg.Report.RotationsXLSX, rows); err != nil {
		rec.Fatal().Err(err).Msg("Failed to write report")
	}
	fmt.Printf("Excel: %s\n", cfg.Report.RotationsXLSX)

	key, err := cli.PublishReport(context.Background(), cfg.Upload, cfg.Report.RotationsXLSX)
	if err != nil {
		rec.Fatal().Err(err).Msg("Failed to upload report")
	}
	if key != "" {
		rec.Property("s3_key", key)
		fmt.Printf("Uploaded: s3://%s/%s\n", cfg.Upload.Bucket, key)
	}
}

func writeWorkbook(path string, rows []lsmreport.Row) error {
	wb, err := sheet.New(lsmreport.SheetName)
	if err != nil {
		return err
	}
	defer wb.Close()

	if err := lsmreport.Write(wb, rows); err != nil {
		return err
	}
	if err := wb.SaveAs(path); err != nil {
		return err
	}
	log.Debug().Str("sheet", wb.Name()).Str("path", path).Int("rows", len(rows)).Msg("Workbook saved")
	return nil
}
