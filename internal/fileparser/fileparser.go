package fileparser

import (
	"runtime"
	"sync"
	"time"

	"github.com/cbl-diagnostics/logscope/internal/catalog"
	"github.com/cbl-diagnostics/logscope/internal/lineparser"
	"github.com/cbl-diagnostics/logscope/internal/reduce"
	"github.com/cbl-diagnostics/logscope/internal/taxonomy"
)

// FileOutput is what the Ingest Driver receives for one parsed file.
type FileOutput struct {
	Path         string
	Level        *lineparser.Level
	BaseDate     time.Time
	Lines        []lineparser.Line
	ErrorCount   int // hard failures, excluding expected noise
	NoiseCount   int // NoDomain + IgnoredEvent
	ReducedFails map[string]int
}

// lineResult carries one line's outcome. Results live in a pre-sized
// slice at each line's original index, so parallel workers write to the
// right position instead of relying on completion order.
type lineResult struct {
	line lineparser.Line
	err  error
}

// ParseFile consumes one file path under a resolved PatternSet+Version,
// recovering its header, parsing lines (in parallel when the platform
// carries full per-line timestamps), and reconciling day rollovers for
// partial-timestamp platforms.
func ParseFile(path string, rawLines []string, pattern *catalog.PatternSet, platform *catalog.PlatformPattern, reduceLines bool) (FileOutput, error) {
	var firstLine string
	if len(rawLines) > 0 {
		firstLine = rawLines[0]
	}

	hdr, err := recoverHeader(path, platform, firstLine)
	if err != nil {
		return FileOutput{}, err
	}

	results := make([]lineResult, len(rawLines))
	header := lineparser.FileHeader{Level: hdr.Level, BaseDate: hdr.BaseDate}

	if platform.FullTimestamp {
		parallelParse(rawLines, header, pattern, platform, results)
	} else {
		sequentialParse(rawLines, header, pattern, platform, results)
	}

	out := FileOutput{Path: path, Level: hdr.Level, BaseDate: hdr.BaseDate}
	if reduceLines {
		out.ReducedFails = make(map[string]int)
	}

	lines := make([]lineparser.Line, 0, len(rawLines))
	for i, r := range results {
		if r.err != nil {
			if taxonomy.ExpectedNoise(r.err) {
				out.NoiseCount++
			} else {
				out.ErrorCount++
				if reduceLines {
					out.ReducedFails[reduce.Reduce(rawLines[i])]++
				}
			}
			continue
		}
		r.line.LineNum = i + 1
		lines = append(lines, r.line)
	}

	if !platform.FullTimestamp {
		reconcileDayRollover(lines, hdr.BaseDate)
	}

	out.Lines = lines
	return out, nil
}

func parallelParse(rawLines []string, header lineparser.FileHeader, pattern *catalog.PatternSet, platform *catalog.PlatformPattern, results []lineResult) {
	n := len(rawLines)
	if n == 0 {
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= n {
			break
		}
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				line, err := lineparser.Parse(rawLines[i], i+1, header, pattern, platform)
				results[i] = lineResult{line: line, err: err}
			}
		}(start, end)
	}
	wg.Wait()
}

func sequentialParse(rawLines []string, header lineparser.FileHeader, pattern *catalog.PatternSet, platform *catalog.PlatformPattern, results []lineResult) {
	for i, raw := range rawLines {
		line, err := lineparser.Parse(raw, i+1, header, pattern, platform)
		results[i] = lineResult{line: line, err: err}
	}
}

// reconcileDayRollover restores monotonicity for partial-timestamp
// platforms: walking lines in original order, whenever a line's
// timestamp (after applying the running day offset) falls strictly
// before the file's base timestamp, the offset advances by one day and
// that line's timestamp is shifted forward by the same amount.
func reconcileDayRollover(lines []lineparser.Line, base time.Time) {
	additionalDays := 0
	for i := range lines {
		adjusted := lines[i].Timestamp.AddDate(0, 0, additionalDays)
		if adjusted.Before(base) {
			additionalDays++
			adjusted = adjusted.AddDate(0, 0, 1)
		}
		lines[i].Timestamp = adjusted
	}
}
