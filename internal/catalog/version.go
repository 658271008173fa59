package catalog

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"

	"github.com/cbl-diagnostics/logscope/internal/taxonomy"
)

// twoComponentVersion matches a bare "major.minor" version string with
// no patch component.
var twoComponentVersion = regexp.MustCompile(`^\d+\.\d+$`)

// coerceVersionString applies the "3.2" -> "3.2.0" wart: a two-component
// version string is padded with a patch component of zero before semver
// parsing, since some builds report only major.minor.
func coerceVersionString(s string) string {
	if twoComponentVersion.MatchString(s) {
		return s + ".0"
	}
	return s
}

// ParseVersion parses a version string captured from a log line,
// applying the "3.2" -> "3.2.0" coercion before delegating to semver.
func ParseVersion(s string) (*semver.Version, error) {
	return semver.NewVersion(coerceVersionString(s))
}

// PatternsForVersion returns the PatternSet whose range contains v, or
// ErrUnsupportedVersion if v falls outside every covered range.
func (c *Catalog) PatternsForVersion(v *semver.Version) (*PatternSet, error) {
	for _, ps := range c.sets {
		if ps.Range.Contains(v) {
			return ps, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", taxonomy.ErrUnsupportedVersion, v.String())
}

// Sets returns every compiled PatternSet in ascending range order. Used
// by the format probe to scan candidate version lines.
func (c *Catalog) Sets() []*PatternSet { return c.sets }
