// Package catalog holds the compile-time registry of version-dispatched
// pattern sets that drive the rest of the parsing engine: one PatternSet
// per supported semantic-version range, each carrying the regexes,
// timestamp grammar, level vocabulary, and event shapes for that range.
//
// The catalog is assembled once, at process init, from declarative YAML
// specifications embedded into the binary. There is no code-generation
// step: init-time parsing plus table-driven dispatch over the compiled
// PatternSets stands in for it.
package catalog

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// CaptureKind enumerates the ways an EventSpec field can be typed and
// defaulted.
type CaptureKind int

const (
	// CaptureBool treats the captured token as a decimal integer: zero
	// is false, any other value is true. Required.
	CaptureBool CaptureKind = iota
	// CaptureChar stores the captured token as a single character.
	// Required.
	CaptureChar
	// CaptureInt parses the captured token as a signed base-10 integer.
	// Required.
	CaptureInt
	// CaptureHexInt parses the captured token as base-16, stored signed
	// 64-bit. Required.
	CaptureHexInt
	// CaptureFloat parses the captured token as a floating-point value.
	// Required.
	CaptureFloat
	// CaptureString stores the captured token verbatim. Required.
	CaptureString
	// CaptureOptionalInt stores null when the capture is absent or
	// unparseable, otherwise an integer.
	CaptureOptionalInt
	// CaptureOptionalString stores null when the capture is absent or
	// empty, otherwise the token verbatim.
	CaptureOptionalString
	// CaptureDefaultedInt stores the declared default when the capture
	// is absent or unparseable, otherwise an integer.
	CaptureDefaultedInt
	// CaptureDefaultedFloat stores the declared default when the
	// capture is absent or unparseable, otherwise a float.
	CaptureDefaultedFloat
	// CaptureDefaultedString stores the declared default when the
	// capture is absent, otherwise the token verbatim.
	CaptureDefaultedString
)

// CaptureSpec describes one declared field of an EventSpec's captures.
// Field order within an EventSpec is preserved and is the order used
// when serializing the event's JSON payload.
type CaptureSpec struct {
	Name    string
	Kind    CaptureKind
	Default any // only meaningful for Defaulted* kinds
}

// EventSpec is one recognizable message shape within a PatternSet.
type EventSpec struct {
	Key      string
	Regex    *regexp.Regexp
	Captures []CaptureSpec // nil means the event carries no payload
	Ignore   bool
}

// LevelNames maps the five-valued level enum to the literal tokens a
// PlatformPattern's level_regex captures for that level.
type LevelNames struct {
	Error   string
	Warn    string
	Info    string
	Verbose string
	Debug   string
}

// PlatformPattern is one OS/runtime variant within a PatternSet.
type PlatformPattern struct {
	Name             string
	VersionRegex     *regexp.Regexp // named capture "ver"
	TimestampRegex   *regexp.Regexp // named capture "ts"
	FullTimestamp    bool
	TimestampFormats []string // Go reference-time layouts, tried in order
	DomainRegex      *regexp.Regexp // named capture "domain"
	LevelRegex       *regexp.Regexp // optional; named capture "level"
	LevelNames       LevelNames
}

// PatternSet is the immutable, compiled form of one version range's
// declarative specification.
type PatternSet struct {
	Range       VersionRange
	ObjectRegex *regexp.Regexp // named capture "obj"
	Events      []EventSpec    // declaration order preserved
	Platforms   []PlatformPattern
}

// EventByKey returns the EventSpec registered under key, if any.
func (ps *PatternSet) EventByKey(key string) (EventSpec, bool) {
	for _, e := range ps.Events {
		if e.Key == key {
			return e, true
		}
	}
	return EventSpec{}, false
}

// VersionRange is a half-open semver interval [From, To).
type VersionRange struct {
	From *semver.Version
	To   *semver.Version // nil means unbounded above
}

// Contains reports whether v falls in [From, To).
func (r VersionRange) Contains(v *semver.Version) bool {
	if v.LessThan(r.From) {
		return false
	}
	if r.To != nil && !v.LessThan(r.To) {
		return false
	}
	return true
}

func (r VersionRange) String() string {
	if r.To == nil {
		return fmt.Sprintf("[%s, +inf)", r.From.String())
	}
	return fmt.Sprintf("[%s, %s)", r.From.String(), r.To.String())
}
