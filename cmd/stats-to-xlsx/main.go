package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/trace-report-tools/internal/cli"
	"github.com/fpang/trace-report-tools/internal/config"
	"github.com/fpang/trace-report-tools/internal/logging"
	"github.com/fpang/trace-report-tools/internal/metrics"
	"github.com/fpang/trace-report-tools/internal/sheet"
	"github.com/fpang/trace-report-tools/internal/sizestats"
	"github.com/fpang/trace-report-tools/internal/source"
)

// CLI flags
var titleFlag string

// rootCmd is the main Cobra command for the stats-to-xlsx CLI.
var rootCmd = &cobra.Command{
	Use:   "stats-to-xlsx <input_txt>",
	Short: "Convert a trace size statistics report into an xlsx summary table",
	Long: `stats-to-xlsx reads the "Under 2KB", "Over 2KB" and "All" sections of a
trace-info report and writes a summary table next to it, with the input's
extension replaced by .xlsx. Footprints are shown in GB with their share of
the All column; key counts are grouped with commas.

Examples:
  stats-to-xlsx trace_0.txt
  stats-to-xlsx --title "Twitter trace_0" results/trace_0.txt`,
	Args: cobra.ExactArgs(1),
	Run:  runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&titleFlag, "title", "t", "", "Table and sheet title (default: input file name without extension)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	rec := metrics.New("stats-to-xlsx")
	defer rec.Flush()

	cfg, err := config.Load()
	if err != nil {
		logging.Init("info")
		rec.Fatal().Err(err).Msg("Invalid configuration")
	}
	logging.Init(cfg.Logging.Level)

	input, err := cli.ResolveFile(args[0])
	if err != nil {
		rec.Fatal().Err(err).Msg("Invalid input report")
	}
	output := cli.OutputPath(args[0], ".xlsx")
	title := titleFlag
	if title == "" {
		title, _ = cli.SplitExt(filepath.Base(input))
	}

	logging.NewStartupLogger("stats-to-xlsx").
		Input("report", input).
		Output("xlsx", output).
		Config("title", title).
		Config("encoding", cfg.Report.Encoding).
		Log()

	stats, err := sizestats.ParseFile(input, source.Options{Encoding: cfg.Report.Encoding})
	if err != nil {
		rec.Fatal().Err(err).Str("path", input).Msg("Failed to read statistics report")
	}
	rec.Add("metrics_found", stats.Len())
	if stats.Len() == 0 {
		log.Warn().Str("path", input).Msg("No section metrics found, writing zeros")
	}

	if err := writeWorkbook(output, title, stats); err != nil {
		rec.Fatal().Err(err).Msg("Failed to write summary table")
	}
	fmt.Printf("Excel file created: %s\n", output)

	key, err := cli.PublishReport(context.Background(), cfg.Upload, output)
	if err != nil {
		rec.Fatal().Err(err).Msg("Failed to upload summary table")
	}
	if key != "" {
		rec.Property("s3_key", key)
		fmt.Printf("Uploaded: s3://%s/%s\n", cfg.Upload.Bucket, key)
	}
}

func writeWorkbook(path, title string, stats *sizestats.Stats) error {
	wb, err := sheet.New(sheet.SafeName(title))
	if err != nil {
		return err
	}
	defer wb.Close()

	if err := sizestats.WriteTable(wb, title, stats); err != nil {
		return err
	}
	if err := wb.SaveAs(path); err != nil {
		return err
	}
	log.Debug().Str("sheet", wb.Name()).Str("path", path).Msg("Workbook saved")
	return nil
}
