package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

//go:embed specs/*.yaml
var specFS embed.FS

// filenamePattern matches the declared filename convention
// "M-m-p_M-m-p.(yaml|yml)" delimiting [from, to).
var filenamePattern = regexp.MustCompile(`^(\d+)-(\d+)-(\d+)_(\d+)-(\d+)-(\d+)\.ya?ml$`)

// These constants name the capture groups the catalog asserts at build
// time; their absence from a pattern author's regex is a
// programmer error in the specification, not a data error, so it panics
// rather than surfacing as a runtime parse failure.
const (
	captureVersion   = "ver"
	captureTimestamp = "ts"
	captureDomain    = "domain"
	captureLevel     = "level"
	captureObject    = "obj"
)

// Catalog is the compiled, queryable registry built from every embedded
// pattern specification.
type Catalog struct {
	sets     []*PatternSet // sorted by Range.From, ascending
	registry *EventRegistry
}

var global *Catalog

func init() {
	c, err := build(specFS)
	if err != nil {
		panic("catalog: " + err.Error())
	}
	global = c
}

// Global returns the process-wide catalog compiled from the embedded
// pattern specifications at init time.
func Global() *Catalog { return global }

// BuildFromFS compiles a Catalog from an arbitrary filesystem holding a
// "specs" directory of pattern specification files, the same way the
// embedded production catalog is built. Tests use this to exercise the
// rest of the engine against a small scratch catalog instead of the
// full embedded one.
func BuildFromFS(fsys fs.FS) (*Catalog, error) {
	return build(fsys)
}

func build(fsys fs.FS) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, "specs")
	if err != nil {
		return nil, fmt.Errorf("reading embedded specs: %w", err)
	}

	var sets []*PatternSet
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		m := filenamePattern.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("spec file %q does not match the M-m-p_M-m-p.yaml filename convention", name)
		}

		raw, err := fs.ReadFile(fsys, "specs/"+name)
		if err != nil {
			return nil, fmt.Errorf("reading spec %q: %w", name, err)
		}

		var sf specFile
		if err := yaml.Unmarshal(raw, &sf); err != nil {
			return nil, fmt.Errorf("parsing spec %q: %w", name, err)
		}

		rng, err := rangeFromMatch(m)
		if err != nil {
			return nil, fmt.Errorf("spec %q: %w", name, err)
		}

		ps, err := compilePatternSet(rng, &sf)
		if err != nil {
			return nil, fmt.Errorf("compiling spec %q: %w", name, err)
		}
		sets = append(sets, ps)
	}

	sort.Slice(sets, func(i, j int) bool { return sets[i].Range.From.LessThan(sets[j].Range.From) })

	if err := assertNonOverlapping(sets); err != nil {
		return nil, err
	}

	return &Catalog{sets: sets, registry: newEventRegistry(sets)}, nil
}

func rangeFromMatch(m []string) (VersionRange, error) {
	from, err := semver.NewVersion(fmt.Sprintf("%s.%s.%s", m[1], m[2], m[3]))
	if err != nil {
		return VersionRange{}, fmt.Errorf("invalid lower bound: %w", err)
	}
	to, err := semver.NewVersion(fmt.Sprintf("%s.%s.%s", m[4], m[5], m[6]))
	if err != nil {
		return VersionRange{}, fmt.Errorf("invalid upper bound: %w", err)
	}
	return VersionRange{From: from, To: to}, nil
}

func assertNonOverlapping(sets []*PatternSet) error {
	for i := 1; i < len(sets); i++ {
		prev, cur := sets[i-1].Range, sets[i].Range
		if prev.To == nil || cur.From.LessThan(prev.To) {
			return fmt.Errorf("pattern ranges overlap: %s and %s", prev, cur)
		}
	}
	return nil
}

func compilePatternSet(rng VersionRange, sf *specFile) (*PatternSet, error) {
	objectRegex, err := compileNamed(sf.Object, captureObject, false)
	if err != nil {
		return nil, fmt.Errorf("object regex: %w", err)
	}

	platforms := make([]PlatformPattern, 0, len(sf.Platforms))
	for _, p := range sf.Platforms {
		pp, err := compilePlatform(p)
		if err != nil {
			return nil, fmt.Errorf("platform %q: %w", p.Name, err)
		}
		platforms = append(platforms, pp)
	}

	seen := make(map[string]bool, len(sf.Events))
	events := make([]EventSpec, 0, len(sf.Events))
	for _, e := range sf.Events {
		if seen[e.Key] {
			return nil, fmt.Errorf("duplicate event key %q", e.Key)
		}
		seen[e.Key] = true

		re, err := regexp.Compile(e.Regex)
		if err != nil {
			return nil, fmt.Errorf("event %q regex: %w", e.Key, err)
		}
		captures := make([]CaptureSpec, 0, len(e.Captures))
		for _, c := range e.Captures {
			kind, err := parseCaptureKind(c.Type)
			if err != nil {
				return nil, fmt.Errorf("event %q capture %q: %w", e.Key, c.Name, err)
			}
			captures = append(captures, CaptureSpec{Name: c.Name, Kind: kind, Default: c.Default})
		}
		events = append(events, EventSpec{
			Key:      e.Key,
			Regex:    re,
			Captures: captures,
			Ignore:   e.Ignore,
		})
	}

	return &PatternSet{
		Range:       rng,
		ObjectRegex: objectRegex,
		Events:      events,
		Platforms:   platforms,
	}, nil
}

func compilePlatform(p platformSpec) (PlatformPattern, error) {
	versionRegex, err := compileNamed(p.VersionRegex, captureVersion, true)
	if err != nil {
		return PlatformPattern{}, fmt.Errorf("version_regex: %w", err)
	}
	timestampRegex, err := compileNamed(p.TimestampRegex, captureTimestamp, true)
	if err != nil {
		return PlatformPattern{}, fmt.Errorf("timestamp_regex: %w", err)
	}
	domainRegex, err := compileNamed(p.DomainRegex, captureDomain, true)
	if err != nil {
		return PlatformPattern{}, fmt.Errorf("domain_regex: %w", err)
	}
	var levelRegex *regexp.Regexp
	if p.LevelRegex != "" {
		levelRegex, err = compileNamed(p.LevelRegex, captureLevel, true)
		if err != nil {
			return PlatformPattern{}, fmt.Errorf("level_regex: %w", err)
		}
	}

	return PlatformPattern{
		Name:             p.Name,
		VersionRegex:     versionRegex,
		TimestampRegex:   timestampRegex,
		FullTimestamp:    p.FullTimestamp,
		TimestampFormats: p.TimestampFormats,
		DomainRegex:      domainRegex,
		LevelRegex:       levelRegex,
		LevelNames: LevelNames{
			Error:   p.LevelNames.Error,
			Warn:    p.LevelNames.Warn,
			Info:    p.LevelNames.Info,
			Verbose: p.LevelNames.Verbose,
			Debug:   p.LevelNames.Debug,
		},
	}, nil
}

// compileNamed compiles pattern and asserts it carries the named group
// requiredName. required=false allows an empty pattern (no object regex
// declared for this version range).
func compileNamed(pattern, requiredName string, required bool) (*regexp.Regexp, error) {
	if pattern == "" {
		if required {
			return nil, fmt.Errorf("missing pattern (needs named capture %q)", requiredName)
		}
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	hasGroup := false
	for _, n := range re.SubexpNames() {
		if n == requiredName {
			hasGroup = true
			break
		}
	}
	if !hasGroup {
		return nil, fmt.Errorf("pattern %q lacks required named capture %q", pattern, requiredName)
	}
	return re, nil
}
