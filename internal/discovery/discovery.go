// Package discovery enumerates candidate log files under an input path
// and filters them by whether the format probe recognizes them.
package discovery

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cbl-diagnostics/logscope/internal/catalog"
	"github.com/cbl-diagnostics/logscope/internal/probe"
	"github.com/cbl-diagnostics/logscope/internal/taxonomy"
)

// Candidate is one file that probed successfully, carrying the probe
// result so the File Parser never has to re-read or re-probe it.
type Candidate struct {
	Path  string
	Probe *probe.Result
}

// Discover resolves path (a regular file or a non-recursive directory)
// to the list of files the format probe recognizes. A single file that
// fails to probe is a hard NotLogs error; within a directory, files
// that fail to probe are silently skipped. The overall call fails with
// NotLogs only if the final candidate list is empty.
func Discover(path string, c *catalog.Catalog, log *slog.Logger) ([]Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", taxonomy.ErrNotLogs, path, err)
	}

	if !info.IsDir() {
		result, err := probe.Probe(path, c)
		if err != nil {
			if errors.Is(err, taxonomy.ErrNotLogs) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s: %w", taxonomy.ErrNotLogs, path, err)
		}
		return []Candidate{{Path: path, Probe: result}}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", taxonomy.ErrNotLogs, path, err)
	}

	var candidates []Candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		full := filepath.Join(path, entry.Name())
		result, err := probe.Probe(full, c)
		if err != nil {
			log.Debug("skipping file that did not probe as a recognized log", "path", full, "reason", err)
			continue
		}
		candidates = append(candidates, Candidate{Path: full, Probe: result})
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", taxonomy.ErrNotLogs, path)
	}
	return candidates, nil
}
