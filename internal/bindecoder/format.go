package bindecoder

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cbl-diagnostics/logscope/internal/taxonomy"
)

// replayFormat walks format character by character: literal characters
// copy through, '%' introduces a conversion consumed per the documented
// specifier table.
func (d *Decoder) replayFormat(format string) (string, error) {
	var out strings.Builder
	runes := []rune(format)
	i := 0
	for i < len(runes) {
		c := runes[i]
		if c != '%' {
			out.WriteRune(c)
			i++
			continue
		}
		i++ // consume '%'
		if i >= len(runes) {
			return "", fmt.Errorf("%w: dangling '%%' in format string at offset %d", taxonomy.ErrInvalidBinaryLogs, d.offset)
		}

		conv, next, err := d.parseConversion(runes, i)
		if err != nil {
			return "", err
		}
		i = next
		out.WriteString(conv)
	}
	return out.String(), nil
}

// parseConversion consumes one conversion starting just after '%' at
// runes[i], returning the rendered text and the index just past the
// specifier character.
func (d *Decoder) parseConversion(runes []rune, i int) (string, int, error) {
	hasDashFlag := false
	hasDotStar := false

	// optional '-' flag (checked first so '@'/'s' can special-case it)
	if i < len(runes) && runes[i] == '-' {
		hasDashFlag = true
		i++
	}
	// zero or more of "# 0 - + ' "
	for i < len(runes) && strings.ContainsRune("# 0-+' ", runes[i]) {
		if runes[i] == '-' {
			hasDashFlag = true
		}
		i++
	}
	// optional width digits
	for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
		i++
	}
	// optional precision
	if i < len(runes) && runes[i] == '.' {
		i++
		if i < len(runes) && runes[i] == '*' {
			hasDotStar = true
			i++
		} else {
			for i < len(runes) && runes[i] >= '0' && runes[i] <= '9' {
				i++
			}
		}
	}
	// optional length modifiers
	for i < len(runes) && strings.ContainsRune("hljtzq", runes[i]) {
		i++
	}

	if i >= len(runes) {
		return "", i, fmt.Errorf("%w: truncated conversion at offset %d", taxonomy.ErrInvalidBinaryLogs, d.offset)
	}
	specifier := runes[i]
	i++

	text, err := d.renderSpecifier(specifier, hasDashFlag, hasDotStar)
	if err != nil {
		return "", i, err
	}
	return text, i, nil
}

func (d *Decoder) renderSpecifier(specifier rune, hasDashFlag, hasDotStar bool) (string, error) {
	switch specifier {
	case 'c':
		v, err := d.readSignedByteMagnitude()
		if err != nil {
			return "", err
		}
		return string(rune(v)), nil

	case 'd', 'i':
		v, err := d.readSignedByteMagnitude()
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(v, 10), nil

	case 'x', 'X':
		// Both cases render lowercase: the wire format has no case bit,
		// so %X is not distinguished from %x on replay.
		v, err := d.readVarint()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%02x", v), nil

	case 'u':
		v, err := d.readVarint()
		if err != nil {
			return "", err
		}
		return strconv.FormatUint(v, 10), nil

	case 'e', 'E', 'f', 'F', 'g', 'G', 'a', 'A':
		return d.readDouble()

	case '@', 's':
		if hasDashFlag && !hasDotStar {
			return d.readToken()
		}
		return d.readLengthPrefixedBytes(hasDashFlag)

	case 'p':
		return d.readPointer()

	case '%':
		return "%", nil

	default:
		return "", fmt.Errorf("%w: unknown format specifier %q at offset %d", taxonomy.ErrInvalidBinaryLogs, specifier, d.offset)
	}
}

func (d *Decoder) readDouble() (string, error) {
	bits := make([]byte, 8)
	for i := range bits {
		b, err := d.readByte()
		if err != nil {
			return "", fmt.Errorf("%w: reading double at offset %d: %v", taxonomy.ErrInvalidBinaryLogs, d.offset, err)
		}
		bits[i] = b
	}
	u := uint64(bits[0]) | uint64(bits[1])<<8 | uint64(bits[2])<<16 | uint64(bits[3])<<24 |
		uint64(bits[4])<<32 | uint64(bits[5])<<40 | uint64(bits[6])<<48 | uint64(bits[7])<<56
	f := math.Float64frombits(u)
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}

func (d *Decoder) readLengthPrefixedBytes(hexEncode bool) (string, error) {
	n, err := d.readVarint()
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	for i := range buf {
		b, err := d.readByte()
		if err != nil {
			return "", fmt.Errorf("%w: reading %%s/%%@ bytes at offset %d: %v", taxonomy.ErrInvalidBinaryLogs, d.offset, err)
		}
		buf[i] = b
	}
	if hexEncode {
		var sb strings.Builder
		for _, b := range buf {
			fmt.Fprintf(&sb, "%02x", b)
		}
		return sb.String(), nil
	}
	return string(buf), nil
}

func (d *Decoder) readPointer() (string, error) {
	if d.pointerSize == 8 {
		var v uint64
		for shift := uint(0); shift < 64; shift += 8 {
			b, err := d.readByte()
			if err != nil {
				return "", fmt.Errorf("%w: reading pointer at offset %d: %v", taxonomy.ErrInvalidBinaryLogs, d.offset, err)
			}
			v |= uint64(b) << shift
		}
		return fmt.Sprintf("0x%016x", v), nil
	}
	var v uint32
	for shift := uint(0); shift < 32; shift += 8 {
		b, err := d.readByte()
		if err != nil {
			return "", fmt.Errorf("%w: reading pointer at offset %d: %v", taxonomy.ErrInvalidBinaryLogs, d.offset, err)
		}
		v |= uint32(b) << shift
	}
	return fmt.Sprintf("0x%08x", v), nil
}
