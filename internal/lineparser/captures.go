package lineparser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cbl-diagnostics/logscope/internal/catalog"
	"github.com/cbl-diagnostics/logscope/internal/taxonomy"
)

// buildEventData resolves every declared capture of spec against match
// (the result of spec.Regex.FindStringSubmatch on the line), in
// declared order, and renders the result as a JSON object string with
// that same field order preserved. A nil/empty captures list yields an
// empty string (the event carries no payload).
func buildEventData(re *regexp.Regexp, spec catalog.EventSpec, match []string) (string, error) {
	if len(spec.Captures) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteByte('{')
	for i, field := range spec.Captures {
		raw, present := namedGroup(re, match, field.Name)
		value, err := convertCapture(field, raw, present)
		if err != nil {
			return "", fmt.Errorf("%w: event %q capture %q: %v", taxonomy.ErrInvalidCapture, spec.Key, field.Name, err)
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("%w: event %q capture %q: %v", taxonomy.ErrInvalidCapture, spec.Key, field.Name, err)
		}
		if i > 0 {
			b.WriteByte(',')
		}
		keyEncoded, _ := json.Marshal(field.Name)
		b.Write(keyEncoded)
		b.WriteByte(':')
		b.Write(encoded)
	}
	b.WriteByte('}')
	return b.String(), nil
}

func namedGroup(re *regexp.Regexp, match []string, name string) (string, bool) {
	idx := re.SubexpIndex(name)
	if idx < 0 || idx >= len(match) || match[idx] == "" {
		return "", false
	}
	return match[idx], true
}

// convertCapture applies the CaptureType semantics described for
// EventSpec captures: required kinds fail hard when absent or
// unparseable; Optional* kinds store nil when absent or empty;
// Defaulted* kinds fall back to their declared default.
func convertCapture(field catalog.CaptureSpec, raw string, present bool) (any, error) {
	switch field.Kind {
	case catalog.CaptureBool:
		if !present {
			return nil, fmt.Errorf("missing required bool capture")
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bool capture %q: %w", raw, err)
		}
		return n != 0, nil

	case catalog.CaptureChar:
		if !present {
			return nil, fmt.Errorf("missing required char capture")
		}
		return raw, nil

	case catalog.CaptureInt:
		if !present {
			return nil, fmt.Errorf("missing required int capture")
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid int capture %q: %w", raw, err)
		}
		return n, nil

	case catalog.CaptureHexInt:
		if !present {
			return nil, fmt.Errorf("missing required hex_int capture")
		}
		n, err := strconv.ParseInt(raw, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid hex_int capture %q: %w", raw, err)
		}
		return n, nil

	case catalog.CaptureFloat:
		if !present {
			return nil, fmt.Errorf("missing required float capture")
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float capture %q: %w", raw, err)
		}
		return f, nil

	case catalog.CaptureString:
		if !present {
			return nil, fmt.Errorf("missing required string capture")
		}
		return raw, nil

	case catalog.CaptureOptionalInt:
		if !present {
			return nil, nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, nil
		}
		return n, nil

	case catalog.CaptureOptionalString:
		if !present {
			return nil, nil
		}
		return raw, nil

	case catalog.CaptureDefaultedInt:
		if !present {
			return field.Default, nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return field.Default, nil
		}
		return n, nil

	case catalog.CaptureDefaultedFloat:
		if !present {
			return field.Default, nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return field.Default, nil
		}
		return f, nil

	case catalog.CaptureDefaultedString:
		if !present {
			return field.Default, nil
		}
		return raw, nil

	default:
		return nil, fmt.Errorf("unknown capture kind")
	}
}
