package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fpang/trace-report-tools/internal/cli"
	"github.com/fpang/trace-report-tools/internal/config"
	"github.com/fpang/trace-report-tools/internal/logging"
	"github.com/fpang/trace-report-tools/internal/metrics"
	"github.com/fpang/trace-report-tools/internal/source"
	"github.com/fpang/trace-report-tools/internal/trace"
)

// rootCmd is the main Cobra command for the obj-size-bin CLI.
var rootCmd = &cobra.Command{
	Use:   "obj-size-bin <input_files...>",
	Short: "Histogram object sizes of key/value traces in power-of-two bins",
	Long: `obj-size-bin counts the objects of one or more CSV traces per size bin. Bins
have upper bounds 64 B, 128 B, ... 1 MiB; smaller objects go to the first bin
and larger ones to the last. One "<bound> <count>" line per bin is printed.

Arguments may be glob patterns, including "**".

Examples:
  obj-size-bin trace_0.csv trace_1.csv
  obj-size-bin 'traces/**/*.csv.zst'`,
	Args: cobra.MinimumNArgs(1),
	Run:  runMain,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	rec := metrics.New("obj-size-bin")
	defer rec.Flush()

	cfg, err := config.Load()
	if err != nil {
		logging.Init("info")
		rec.Fatal().Err(err).Msg("Invalid configuration")
	}
	logging.Init(cfg.Logging.Level)

	files, err := cli.ExpandInputs(args)
	if err != nil {
		rec.Fatal().Err(err).Msg("Failed to resolve input files")
	}

	startup := logging.NewStartupLogger("obj-size-bin").
		Output("histogram", "stdout").
		Config("encoding", cfg.Report.Encoding)
	for i, f := range files {
		startup.Input("trace_"+strconv.Itoa(i), f)
	}
	startup.Log()

	var hist trace.Histogram
	opts := source.Options{Encoding: cfg.Report.Encoding}
	for _, f := range files {
		skipped, err := trace.EachFile(f, opts, hist.Add)
		if err != nil {
			rec.Fatal().Err(err).Msg("Failed to read trace")
		}
		rec.Count("files")
		rec.Add("skipped_rows", skipped)
	}
	rec.Add("records", int(hist.Total()))

	if _, err := hist.WriteTo(os.Stdout); err != nil {
		rec.Fatal().Err(err).Msg("Failed to write histogram")
	}
}
