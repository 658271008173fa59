// Package taxonomy centralizes the error kinds surfaced by the ingestion
// engine. Names carry semantics, not Go types: every kind is a sentinel
// error (or a wrapped sentinel via fmt.Errorf("%w: ...")), checked with
// errors.Is throughout the engine.
package taxonomy

import "errors"

// Discovery and probe errors.
var (
	// ErrNotLogs means discovery or the format probe found no recognizable
	// log content at the given path.
	ErrNotLogs = errors.New("not a recognized log file or directory")

	// ErrUnsupportedVersion means a version was found but no PatternSet
	// in the catalog covers it.
	ErrUnsupportedVersion = errors.New("unsupported log version")

	// ErrUnsupportedPlatform means a version was resolved but no platform
	// sub-variant within its PatternSet matched the probed line.
	ErrUnsupportedPlatform = errors.New("unsupported platform variant")
)

// Header reconstruction errors.
var (
	// ErrInvalidFilename means the filename doesn't carry the expected
	// header metadata (level/timestamp convention).
	ErrInvalidFilename = errors.New("filename does not carry expected header metadata")

	// ErrCannotParse means header reconstruction produced an inconsistent
	// result (e.g. a per-line level regex is required but absent).
	ErrCannotParse = errors.New("cannot reconstruct file header")
)

// Per-line errors.
var (
	// ErrNoDomain means the domain regex didn't match. Counted as
	// expected noise, not a hard failure.
	ErrNoDomain = errors.New("line has no domain")

	// ErrNoLevel means no level could be resolved for the line.
	ErrNoLevel = errors.New("line has no level")

	// ErrNoTimestamp means none of the platform's timestamp formats
	// parsed the ts capture.
	ErrNoTimestamp = errors.New("line has no parseable timestamp")

	// ErrNoObject means an object path was required but absent. Reserved
	// for callers that treat object paths as mandatory; the Line Parser
	// itself treats a missing object path as a silent non-match.
	ErrNoObject = errors.New("line has no object path")

	// ErrNoSuchLevel means a level token was captured but didn't match
	// any entry in the platform's level name table.
	ErrNoSuchLevel = errors.New("no such level")

	// ErrUnknownEvent means no EventSpec in the PatternSet matched the
	// line.
	ErrUnknownEvent = errors.New("no event spec matched line")

	// ErrIgnoredEvent means the line matched an EventSpec marked ignore.
	// Counted as expected noise, not a hard failure.
	ErrIgnoredEvent = errors.New("line matched an ignored event")

	// ErrInvalidCapture means an event's regex matched but a required
	// capture could not be converted per its declared CaptureType.
	ErrInvalidCapture = errors.New("event capture failed its declared type")
)

// Binary decode errors.
var (
	// ErrInvalidBinaryLogs means the binary stream violated its protocol
	// (bad header, out-of-range token/object id, truncated entry).
	ErrInvalidBinaryLogs = errors.New("invalid binary log stream")

	// ErrInvalidVarint means a varint exceeded the maximum encoded length
	// without terminating, or the stream ended before a varint was
	// complete.
	ErrInvalidVarint = errors.New("invalid varint encoding")
)

// ExpectedNoise reports whether err represents a per-line condition the
// engine treats as expected noise (a line that simply isn't a log
// statement, or an event explicitly marked ignore) rather than a genuine
// parse failure. File summaries count these separately from hard
// failures so operators aren't alarmed by ordinary preamble lines.
func ExpectedNoise(err error) bool {
	return errors.Is(err, ErrNoDomain) || errors.Is(err, ErrIgnoredEvent)
}
