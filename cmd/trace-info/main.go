package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/trace-report-tools/internal/cli"
	"github.com/fpang/trace-report-tools/internal/config"
	"github.com/fpang/trace-report-tools/internal/logging"
	"github.com/fpang/trace-report-tools/internal/metrics"
	"github.com/fpang/trace-report-tools/internal/sizestats"
	"github.com/fpang/trace-report-tools/internal/source"
	"github.com/fpang/trace-report-tools/internal/trace"
)

// rootCmd is the main Cobra command for the trace-info CLI.
var rootCmd = &cobra.Command{
	Use:   "trace-info <trace_file> <output_file>",
	Short: "Summarise object sizes of a key/value trace",
	Long: `trace-info reads a CSV trace (key,op,size,op_count,key_size; header optional,
gzip and zstd accepted) and writes average key, value and object sizes plus
two footprints for objects up to 2KB, above 2KB and all objects. The report
is the input of stats-to-xlsx.

Use "-" as output_file to write to stdout.

Examples:
  trace-info trace_0.csv trace_0.txt
  trace-info trace_0.csv.zst -`,
	Args: cobra.ExactArgs(2),
	Run:  runMain,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	started := time.Now()
	rec := metrics.New("trace-info")
	defer rec.Flush()

	cfg, err := config.Load()
	if err != nil {
		logging.Init("info")
		rec.Fatal().Err(err).Msg("Invalid configuration")
	}
	logging.Init(cfg.Logging.Level)

	input, err := cli.ResolveFile(args[0])
	if err != nil {
		rec.Fatal().Err(err).Msg("Invalid trace file")
	}
	output := args[1]

	logging.NewStartupLogger("trace-info").
		Input("trace", input).
		Output("report", output).
		Config("encoding", cfg.Report.Encoding).
		Log()

	info := trace.NewInfo()
	skipped, err := trace.EachFile(input, source.Options{Encoding: cfg.Report.Encoding}, info.Add)
	if err != nil {
		rec.Fatal().Err(err).Msg("Failed to read trace")
	}
	all := info.Summary(sizestats.SectionAll)
	rec.Add("records", int(all.TotalKeys))
	rec.Add("skipped_rows", skipped)
	rec.Metric("footprint", float64(all.Footprint1), metrics.UnitBytes)
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("Skipped malformed trace rows")
	}

	if err := writeReport(output, info); err != nil {
		rec.Fatal().Err(err).Str("path", output).Msg("Failed to write report")
	}
	if output != "-" {
		printSummary(os.Stdout, input, output, all, skipped, time.Since(started))
	}
}

func writeReport(path string, info *trace.Info) error {
	if path == "-" {
		return info.WriteReport(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := info.WriteReport(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	return nil
}

func printSummary(w io.Writer, input, output string, all trace.Summary, skipped int, elapsed time.Duration) {
	cli.Banner(w, "Trace Info")
	cli.KV(w, "Trace", input)
	cli.KV(w, "Records", all.TotalKeys)
	cli.KV(w, "Unique keys", all.UniqueKeys)
	cli.KV(w, "Footprint", cli.FormatBytes(uint64(all.Footprint1)))
	if skipped > 0 {
		cli.KV(w, "Skipped rows", skipped)
	}
	cli.Rule(w)
	cli.KV(w, "Report", output)
	cli.KV(w, "Elapsed", cli.FormatDurationShort(elapsed))
}
