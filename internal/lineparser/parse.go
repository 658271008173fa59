package lineparser

import (
	"fmt"
	"time"

	"github.com/cbl-diagnostics/logscope/internal/catalog"
	"github.com/cbl-diagnostics/logscope/internal/objectpath"
	"github.com/cbl-diagnostics/logscope/internal/taxonomy"
)

// FileHeader carries the per-file context a line needs but cannot
// derive from itself: a level when the whole file is single-level, and
// the base calendar date a partial (wall-clock-only) timestamp combines
// with.
type FileHeader struct {
	Level    *Level
	BaseDate time.Time
}

// Parse resolves one line under pattern/platform, following the steps
// in order: domain, object path, timestamp, level, event.
func Parse(line string, lineNum int, header FileHeader, pattern *catalog.PatternSet, platform *catalog.PlatformPattern) (Line, error) {
	domain, err := parseDomain(line, platform)
	if err != nil {
		return Line{}, err
	}

	objPath, hasObj := parseObjectPath(line, pattern)

	ts, err := parseTimestamp(line, header, platform)
	if err != nil {
		return Line{}, err
	}

	level, err := parseLevel(line, header, platform)
	if err != nil {
		return Line{}, err
	}

	eventKey, eventData, err := dispatchEvent(line, pattern)
	if err != nil {
		return Line{}, err
	}

	return Line{
		LineNum:    lineNum,
		Level:      level,
		Timestamp:  ts,
		Domain:     domain,
		EventKey:   eventKey,
		EventData:  eventData,
		ObjectPath: objPath,
		HasObject:  hasObj,
	}, nil
}

func parseDomain(line string, platform *catalog.PlatformPattern) (string, error) {
	m := platform.DomainRegex.FindStringSubmatch(line)
	if m == nil {
		return "", taxonomy.ErrNoDomain
	}
	idx := platform.DomainRegex.SubexpIndex("domain")
	if idx < 0 || idx >= len(m) || m[idx] == "" {
		return "", taxonomy.ErrNoDomain
	}
	return m[idx], nil
}

// parseObjectPath is silent on non-match: absence of an object path is
// not an error, per the documented contract.
func parseObjectPath(line string, pattern *catalog.PatternSet) (string, bool) {
	if pattern.ObjectRegex == nil {
		return "", false
	}
	m := pattern.ObjectRegex.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	idx := pattern.ObjectRegex.SubexpIndex("obj")
	if idx < 0 || idx >= len(m) || m[idx] == "" {
		return "", false
	}
	return objectpath.Resolve(m[idx]), true
}

func parseTimestamp(line string, header FileHeader, platform *catalog.PlatformPattern) (time.Time, error) {
	m := platform.TimestampRegex.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, taxonomy.ErrNoTimestamp
	}
	idx := platform.TimestampRegex.SubexpIndex("ts")
	if idx < 0 || idx >= len(m) || m[idx] == "" {
		return time.Time{}, taxonomy.ErrNoTimestamp
	}
	raw := m[idx]

	for _, layout := range platform.TimestampFormats {
		if platform.FullTimestamp {
			t, err := time.Parse(layout, raw)
			if err == nil {
				return t, nil
			}
			continue
		}
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		combined := time.Date(
			header.BaseDate.Year(), header.BaseDate.Month(), header.BaseDate.Day(),
			t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
			header.BaseDate.Location(),
		)
		return combined, nil
	}
	return time.Time{}, taxonomy.ErrNoTimestamp
}

func parseLevel(line string, header FileHeader, platform *catalog.PlatformPattern) (Level, error) {
	if header.Level != nil {
		return *header.Level, nil
	}
	if platform.LevelRegex == nil {
		return 0, taxonomy.ErrNoLevel
	}
	m := platform.LevelRegex.FindStringSubmatch(line)
	if m == nil {
		return 0, taxonomy.ErrNoLevel
	}
	idx := platform.LevelRegex.SubexpIndex("level")
	if idx < 0 || idx >= len(m) {
		return 0, taxonomy.ErrNoLevel
	}
	token := m[idx]

	names := platform.LevelNames
	switch token {
	case names.Error:
		return LevelError, nil
	case names.Warn:
		return LevelWarning, nil
	case names.Info:
		return LevelInfo, nil
	case names.Verbose:
		return LevelVerbose, nil
	case names.Debug:
		return LevelDebug, nil
	default:
		return 0, fmt.Errorf("%w: %q", taxonomy.ErrNoSuchLevel, token)
	}
}

// dispatchEvent tries each EventSpec in declaration order, per the
// documented probing rules.
func dispatchEvent(line string, pattern *catalog.PatternSet) (string, string, error) {
	for _, spec := range pattern.Events {
		m := spec.Regex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if spec.Ignore {
			return "", "", taxonomy.ErrIgnoredEvent
		}
		data, err := buildEventData(spec.Regex, spec, m)
		if err != nil {
			return "", "", err
		}
		return spec.Key, data, nil
	}
	return "", "", taxonomy.ErrUnknownEvent
}
