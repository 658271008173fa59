// Package ingest drives one end-to-end run: open the store, write the
// event-type dictionary, then iterate discovered files through the
// File Parser, writing each file transactionally. Individual file
// failures are logged and do not abort the run; store failures do.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cbl-diagnostics/logscope/internal/catalog"
	"github.com/cbl-diagnostics/logscope/internal/discovery"
	"github.com/cbl-diagnostics/logscope/internal/fileparser"
	"github.com/cbl-diagnostics/logscope/internal/store"
)

// Options configures one run of the driver.
type Options struct {
	InputPath   string
	OutputPath  string
	ReduceLines bool
}

// Summary is the aggregate, per-run result returned to the CLI.
type Summary struct {
	FilesIngested int
	FilesFailed   int
	ErrorCount    int // aggregate non-expected-noise line failures
	NoiseCount    int
}

// Run executes one ingest pass per Options, against the process-wide
// catalog.
func Run(ctx context.Context, opts Options, log *slog.Logger) (Summary, error) {
	return RunWithCatalog(ctx, opts, catalog.Global(), log)
}

// RunWithCatalog is Run parameterized over an explicit catalog, so
// tests can exercise the driver against a scratch catalog instead of
// the embedded production one.
func RunWithCatalog(ctx context.Context, opts Options, c *catalog.Catalog, log *slog.Logger) (Summary, error) {
	candidates, err := discovery.Discover(opts.InputPath, c, log)
	if err != nil {
		return Summary{}, err
	}

	s, err := store.Open(ctx, opts.OutputPath)
	if err != nil {
		return Summary{}, fmt.Errorf("ingest: %w", err)
	}
	defer s.Close()

	registry := c.Registry()
	if err := s.WriteEventTypes(ctx, registry); err != nil {
		return Summary{}, fmt.Errorf("ingest: %w", err)
	}

	var summary Summary
	for _, cand := range candidates {
		out, err := fileparser.ParseFile(cand.Path, cand.Probe.Lines, cand.Probe.Pattern, cand.Probe.Platform, opts.ReduceLines)
		if err != nil {
			log.Warn("file parse failed", "path", cand.Path, "error", err)
			summary.FilesFailed++
			continue
		}

		if err := s.WriteFile(ctx, store.FileRecord{
			Path:      out.Path,
			Level:     out.Level,
			Timestamp: out.BaseDate,
			Lines:     out.Lines,
		}, registry); err != nil {
			return summary, fmt.Errorf("ingest: %w", err)
		}

		log.Info("file ingested",
			"path", cand.Path,
			"lines", len(out.Lines),
			"errors", out.ErrorCount,
			"noise", out.NoiseCount,
		)
		if len(out.ReducedFails) > 0 {
			for reduced, count := range out.ReducedFails {
				log.Debug("reduced failure cluster", "path", cand.Path, "pattern", reduced, "count", count)
			}
		}

		summary.FilesIngested++
		summary.ErrorCount += out.ErrorCount
		summary.NoiseCount += out.NoiseCount
	}

	return summary, nil
}
