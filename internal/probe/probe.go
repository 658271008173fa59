// Package probe identifies which catalog PatternSet and PlatformPattern
// apply to a given log file by scanning its lines for a version string.
package probe

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/Masterminds/semver/v3"

	"github.com/cbl-diagnostics/logscope/internal/bindecoder"
	"github.com/cbl-diagnostics/logscope/internal/catalog"
	"github.com/cbl-diagnostics/logscope/internal/taxonomy"
)

// Result is the outcome of successfully probing a file: the resolved
// version, the PatternSet whose range contains it, the matching
// platform within that set, and the plain-text lines to feed to the
// Line Parser (already binary-decoded if the source was encoded).
type Result struct {
	Version  *semver.Version
	Pattern  *catalog.PatternSet
	Platform *catalog.PlatformPattern
	Lines    []string
}

// Probe reads path, binary-decoding it first when the magic number is
// present, then scans lines against every PatternSet/PlatformPattern in
// catalog order for a version_regex match.
func Probe(path string, c *catalog.Catalog) (*Result, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	versionStr, matchedLine, pattern, platform, ok := scanForVersion(lines, c)
	if !ok {
		return nil, fmt.Errorf("%w: %s", taxonomy.ErrNotLogs, path)
	}

	version, err := catalog.ParseVersion(versionStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: unparseable version %q: %v", taxonomy.ErrNotLogs, path, versionStr, err)
	}

	resolved, err := c.PatternsForVersion(version)
	if err != nil {
		return nil, err
	}

	if resolved != pattern {
		// The line that matched belongs to a different range than the
		// PatternSet we first scanned under; re-discover the matching
		// platform within the correct set by re-scanning the same line.
		rePlatform, ok := matchPlatform([]string{matchedLine}, resolved)
		if !ok {
			return nil, fmt.Errorf("%w: %s: line %q", taxonomy.ErrUnsupportedPlatform, path, matchedLine)
		}
		platform = rePlatform
	}

	return &Result{Version: version, Pattern: resolved, Platform: platform, Lines: lines}, nil
}

// scanForVersion walks every PatternSet/PlatformPattern pair in catalog
// order and returns the first version-regex match across the file's
// lines, alongside the PatternSet/PlatformPattern it matched under and
// the matched line itself (kept for error reporting if a later step
// can't resolve a platform).
func scanForVersion(lines []string, c *catalog.Catalog) (string, string, *catalog.PatternSet, *catalog.PlatformPattern, bool) {
	for _, ps := range c.Sets() {
		for i := range ps.Platforms {
			pp := &ps.Platforms[i]
			for _, line := range lines {
				m := pp.VersionRegex.FindStringSubmatch(line)
				if m == nil {
					continue
				}
				idx := pp.VersionRegex.SubexpIndex("ver")
				if idx < 0 || idx >= len(m) {
					continue
				}
				return m[idx], line, ps, pp, true
			}
		}
	}
	return "", "", nil, nil, false
}

// matchPlatform re-scans lines for a version match against only the
// platforms of the given (already version-resolved) PatternSet.
func matchPlatform(lines []string, ps *catalog.PatternSet) (*catalog.PlatformPattern, bool) {
	for i := range ps.Platforms {
		pp := &ps.Platforms[i]
		for _, line := range lines {
			if pp.VersionRegex.MatchString(line) {
				return pp, true
			}
		}
	}
	return nil, false
}

// readLines reads path's contents as plain text lines, transparently
// binary-decoding first when the file starts with the binary magic.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", taxonomy.ErrNotLogs, path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if bindecoder.IsBinary(br) {
		dec, err := bindecoder.NewDecoder(br)
		if err != nil {
			return nil, err
		}
		return dec.Decode()
	}

	var lines []string
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			lines = append(lines, trimNewline(line))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", taxonomy.ErrNotLogs, path, err)
		}
	}
	return lines, nil
}

func trimNewline(s string) string {
	n := len(s)
	if n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	n = len(s)
	if n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}
