// Package fileparser orchestrates parsing one log file under an
// already-resolved PatternSet and PlatformPattern: it recovers the
// file-level header, parses lines in parallel when the platform allows
// it, performs day-rollover reconciliation for partial-timestamp
// platforms, and emits a FileOutput.
package fileparser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/cbl-diagnostics/logscope/internal/catalog"
	"github.com/cbl-diagnostics/logscope/internal/lineparser"
	"github.com/cbl-diagnostics/logscope/internal/taxonomy"
)

// filenameHeader matches the documented filename convention
// "<prefix>_<levelToken>_<epoch_ms>".
var filenameHeader = regexp.MustCompile(`^.+_(?P<level>[A-Za-z]+)_(?P<epoch_ms>\d+)(?:\.\w+)?$`)

// Header is the recovered file-level level and base timestamp used to
// seed every line parse.
type Header struct {
	Level    *lineparser.Level
	BaseDate time.Time
}

// recoverHeader infers the file-level level and base timestamp from the
// filename stem, falling back per the documented rules when the
// filename doesn't carry one or the other.
func recoverHeader(path string, platform *catalog.PlatformPattern, firstLine string) (Header, error) {
	stem := filepath.Base(path)
	m := filenameHeader.FindStringSubmatch(stem)

	var level *lineparser.Level
	var baseDate time.Time
	haveDate := false

	if m != nil {
		levelIdx := filenameHeader.SubexpIndex("level")
		epochIdx := filenameHeader.SubexpIndex("epoch_ms")
		if lvl, ok := levelFromToken(m[levelIdx]); ok {
			level = &lvl
		}
		if ms, err := strconv.ParseInt(m[epochIdx], 10, 64); err == nil {
			baseDate = time.UnixMilli(ms).UTC()
			haveDate = true
		}
	}

	if level == nil && platform.LevelRegex == nil {
		return Header{}, fmt.Errorf("%w: %s", taxonomy.ErrCannotParse, path)
	}

	if !haveDate {
		if platform.FullTimestamp {
			parsed, ok := parseFirstLineTimestamp(firstLine, platform)
			if !ok {
				return Header{}, fmt.Errorf("%w: %s: no filename timestamp and first line is unparseable", taxonomy.ErrCannotParse, path)
			}
			baseDate = parsed
		} else {
			info, err := os.Stat(path)
			if err != nil {
				return Header{}, fmt.Errorf("%w: %s: %v", taxonomy.ErrCannotParse, path, err)
			}
			baseDate = creationTime(info)
		}
	}

	return Header{Level: level, BaseDate: baseDate}, nil
}

// parseFirstLineTimestamp applies platform's timestamp regex/formats to
// a single line, used as a header-recovery fallback when the filename
// carries no timestamp.
func parseFirstLineTimestamp(line string, platform *catalog.PlatformPattern) (time.Time, bool) {
	if line == "" || platform.TimestampRegex == nil {
		return time.Time{}, false
	}
	m := platform.TimestampRegex.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}
	idx := platform.TimestampRegex.SubexpIndex("ts")
	if idx < 0 || idx >= len(m) {
		return time.Time{}, false
	}
	raw := m[idx]
	for _, layout := range platform.TimestampFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func levelFromToken(token string) (lineparser.Level, bool) {
	switch token {
	case "Error", "E":
		return lineparser.LevelError, true
	case "Warning", "W":
		return lineparser.LevelWarning, true
	case "Info", "I":
		return lineparser.LevelInfo, true
	case "Verbose", "V":
		return lineparser.LevelVerbose, true
	case "Debug", "D":
		return lineparser.LevelDebug, true
	default:
		return 0, false
	}
}
