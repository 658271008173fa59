// Package bindecoder streams Couchbase Lite's tokenized binary log
// format into plain text lines, reconstructing absolute timestamps,
// string and object dictionaries, and printf-style messages. The
// decoder is a strictly sequential state machine: tokens and objects
// are append-only maps owned by a single consumer, so there is
// nothing to share across goroutines.
package bindecoder

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/cbl-diagnostics/logscope/internal/taxonomy"
)

// Magic is the four-byte header that identifies a binary-encoded log
// stream. Any other leading bytes mean the file is plain text.
var Magic = [4]byte{0xCF, 0xB2, 0xAB, 0x1B}

// SupportedFormatVersion is the only binary format version this decoder
// understands.
const SupportedFormatVersion = 1

const ticksPerSecond = 1_000_000

// levelNames indexes 1..5 to the five-valued level enum; index 0 is
// unused (an out-of-range level byte yields an empty level).
var levelNames = [...]string{"", "Debug", "Verbose", "Info", "Warning", "Error"}

// Decoder decodes one binary log stream. It is not safe for concurrent
// use; the binary format's state machine precludes parallelism.
type Decoder struct {
	r                 *bufio.Reader
	offset            int64
	pointerSize       int
	startEpochSeconds int64
	elapsedTicks      uint64
	tokens            []string
	objects           map[uint64]string
}

// IsBinary peeks the first four bytes of r and reports whether they
// match the binary format's magic number. On a short read (fewer than
// four bytes available) it reports false: such a file cannot carry a
// valid binary header and is treated as plain text.
func IsBinary(r *bufio.Reader) bool {
	head, err := r.Peek(4)
	if err != nil {
		return false
	}
	return head[0] == Magic[0] && head[1] == Magic[1] && head[2] == Magic[2] && head[3] == Magic[3]
}

// NewDecoder reads and validates the binary header from r, returning a
// Decoder ready to stream entries.
func NewDecoder(r io.Reader) (*Decoder, error) {
	br := bufio.NewReader(r)
	d := &Decoder{r: br, objects: make(map[uint64]string)}

	head := make([]byte, 4)
	if _, err := io.ReadFull(d.r, head); err != nil {
		return nil, fmt.Errorf("%w: reading magic: %v", taxonomy.ErrInvalidBinaryLogs, err)
	}
	d.offset += 4
	if head[0] != Magic[0] || head[1] != Magic[1] || head[2] != Magic[2] || head[3] != Magic[3] {
		return nil, fmt.Errorf("%w: bad magic at offset 0", taxonomy.ErrInvalidBinaryLogs)
	}

	formatVersion, err := d.readByte()
	if err != nil {
		return nil, fmt.Errorf("%w: reading format version: %v", taxonomy.ErrInvalidBinaryLogs, err)
	}
	if formatVersion != SupportedFormatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d at offset 0", taxonomy.ErrInvalidBinaryLogs, formatVersion)
	}

	pointerSize, err := d.readByte()
	if err != nil {
		return nil, fmt.Errorf("%w: reading pointer size: %v", taxonomy.ErrInvalidBinaryLogs, err)
	}
	if pointerSize != 4 && pointerSize != 8 {
		return nil, fmt.Errorf("%w: invalid pointer size %d at offset %d", taxonomy.ErrInvalidBinaryLogs, pointerSize, d.offset)
	}
	d.pointerSize = int(pointerSize)

	startSeconds, err := d.readVarint()
	if err != nil {
		return nil, err
	}
	d.startEpochSeconds = int64(startSeconds)

	return d, nil
}

func (d *Decoder) readByte() (byte, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	d.offset++
	return b, nil
}

// readNullTerminated reads bytes up to and including a trailing NUL,
// returning the bytes before it.
func (d *Decoder) readNullTerminated() (string, error) {
	s, err := d.r.ReadString(0)
	if err != nil {
		return "", fmt.Errorf("%w: reading null-terminated string at offset %d: %v", taxonomy.ErrInvalidBinaryLogs, d.offset, err)
	}
	d.offset += int64(len(s))
	return s[:len(s)-1], nil
}

// readToken implements the tokenized-string protocol: a varint id
// indexes into the append-only tokens table; id == len(tokens) reads
// and interns a new string; any larger id is a protocol error.
func (d *Decoder) readToken() (string, error) {
	id, err := d.readVarint()
	if err != nil {
		return "", err
	}
	switch {
	case id < uint64(len(d.tokens)):
		return d.tokens[id], nil
	case id == uint64(len(d.tokens)):
		s, err := d.readNullTerminated()
		if err != nil {
			return "", err
		}
		d.tokens = append(d.tokens, s)
		return s, nil
	default:
		return "", fmt.Errorf("%w: token id %d out of range at offset %d", taxonomy.ErrInvalidBinaryLogs, id, d.offset)
	}
}

// readObject implements the object-dictionary protocol: id 0 means no
// object; a previously seen nonzero id is reused; a new nonzero id
// reads and interns a null-terminated string.
func (d *Decoder) readObject() (string, bool, error) {
	id, err := d.readVarint()
	if err != nil {
		return "", false, err
	}
	if id == 0 {
		return "", false, nil
	}
	if s, ok := d.objects[id]; ok {
		return s, true, nil
	}
	s, err := d.readNullTerminated()
	if err != nil {
		return "", false, err
	}
	d.objects[id] = s
	return s, true, nil
}

// Entry is one decoded binary log record, rendered to its canonical
// textual line form.
type Entry struct {
	Timestamp time.Time
	Domain    string
	Level     string
	Object    string
	HasObject bool
	Message   string
}

// Render produces the canonical textual line:
// "<TS> <domain> <level>[ Obj=<object>] <message>".
func (e Entry) Render() string {
	ts := e.Timestamp.UTC().Format("2006-01-02T15:04:05.000000")
	if e.HasObject {
		return fmt.Sprintf("%s %s %s Obj=%s %s", ts, e.Domain, e.Level, e.Object, e.Message)
	}
	return fmt.Sprintf("%s %s %s %s", ts, e.Domain, e.Level, e.Message)
}

// Decode reads every entry in the stream until EOF, rendering each to
// its canonical line. It returns all lines decoded so far alongside a
// non-nil error when decoding fails partway through; callers treat this
// as failure of the whole file per the documented propagation policy.
func (d *Decoder) Decode() ([]string, error) {
	var lines []string
	for {
		entry, err := d.decodeEntry()
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
		lines = append(lines, entry.Render())
	}
}

func (d *Decoder) decodeEntry() (Entry, error) {
	first, err := d.readByte()
	if err != nil {
		if err == io.EOF {
			return Entry{}, io.EOF
		}
		return Entry{}, fmt.Errorf("%w: reading entry at offset %d: %v", taxonomy.ErrInvalidBinaryLogs, d.offset, err)
	}
	delta, err := d.readVarintContinuing(first)
	if err != nil {
		return Entry{}, err
	}
	d.elapsedTicks += delta

	levelByte, err := d.readByte()
	if err != nil {
		return Entry{}, fmt.Errorf("%w: reading level byte at offset %d: %v", taxonomy.ErrInvalidBinaryLogs, d.offset, err)
	}
	level := ""
	if levelByte >= 1 && int(levelByte) < len(levelNames) {
		level = levelNames[levelByte]
	}

	domain, err := d.readToken()
	if err != nil {
		return Entry{}, err
	}

	object, hasObject, err := d.readObject()
	if err != nil {
		return Entry{}, err
	}

	format, err := d.readToken()
	if err != nil {
		return Entry{}, err
	}

	message, err := d.replayFormat(format)
	if err != nil {
		return Entry{}, err
	}

	seconds := d.startEpochSeconds + int64(d.elapsedTicks/ticksPerSecond)
	micros := int64(d.elapsedTicks % ticksPerSecond)
	ts := time.Unix(seconds, micros*1000).UTC()

	return Entry{
		Timestamp: ts,
		Domain:    domain,
		Level:     level,
		Object:    object,
		HasObject: hasObject,
		Message:   message,
	}, nil
}
