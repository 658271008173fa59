// Package objectpath resolves the object-path capture of a log line,
// detecting and demangling LiteCore's JNI-mangled class name form.
package objectpath

import (
	"regexp"
	"strings"

	"github.com/ianlancetaylor/demangle"
)

// jniMangled matches LiteCore's mangled object-path form, e.g.
// "N9litecore4repl6PullerE" or "N9litecore6replE". The inner class
// segment (if present) is the last "<len><name>" pair before the
// trailing 'E'.
var jniMangled = regexp.MustCompile(`^N\d+litecore\d+(?:[A-Za-z_]+\d+)*(?P<class>[A-Za-z_]+)E$`)

// Resolve returns the object path to store for a raw object capture.
// If raw matches the JNI mangled form, the inner class name is
// extracted (via the mangled-symbol convention, by demangling the
// equivalent Itanium form when the fast-path regex can't cleanly
// isolate it) and returned in place of the raw capture; otherwise raw
// is returned unchanged.
func Resolve(raw string) string {
	if raw == "" {
		return raw
	}
	if m := jniMangled.FindStringSubmatch(raw); m != nil {
		if class := m[jniMangled.SubexpIndex("class")]; class != "" {
			return class
		}
	}
	return demangleClassName(raw)
}

// demangleClassName falls back to a real Itanium demangler for mangled
// forms the fast-path regex doesn't cleanly isolate, taking the last
// nested-name component as the class name.
func demangleClassName(raw string) string {
	if !strings.HasPrefix(raw, "N") || !strings.HasSuffix(raw, "E") {
		return raw
	}
	full, err := demangle.ToString(raw)
	if err != nil {
		return raw
	}
	parts := strings.Split(full, "::")
	return parts[len(parts)-1]
}
