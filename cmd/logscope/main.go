// Command logscope ingests a Couchbase Lite log corpus (a single file
// or a non-recursive directory of files) into a queryable SQLite
// database of typed structured events.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/cbl-diagnostics/logscope/internal/ingest"
	"github.com/cbl-diagnostics/logscope/internal/logx"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("logscope", flag.ContinueOnError)
	input := fs.String("input", "", "path to a log file or a directory of log files (required)")
	output := fs.String("output", "logscope.sqlite", "path to the output SQLite database")
	reduceLines := fs.Bool("reduce-lines", false, "coalesce non-expected line failures into reduced clusters for logging")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *input == "" {
		fmt.Fprintln(os.Stderr, "logscope: -input is required")
		return 2
	}

	log := logx.New()
	ctx := context.Background()

	summary, err := ingest.Run(ctx, ingest.Options{
		InputPath:   *input,
		OutputPath:  *output,
		ReduceLines: *reduceLines,
	}, log)
	if err != nil {
		log.Error("run failed", "error", err)
		return 1
	}

	log.Info("run complete",
		"files_ingested", summary.FilesIngested,
		"files_failed", summary.FilesFailed,
		"error_count", summary.ErrorCount,
		"noise_count", summary.NoiseCount,
	)
	return 0
}
