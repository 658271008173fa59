package bindecoder

import (
	"fmt"

	"github.com/cbl-diagnostics/logscope/internal/taxonomy"
)

// maxVarintBytes bounds a well-formed varint: 7 payload bits per byte,
// so ten bytes are the fewest that cover 64 bits, matching the
// documented "max ten bytes" wire-format limit.
const maxVarintBytes = 10

// readVarint reads a little-endian, 7-bits-per-byte varint with a
// continuation bit in each byte's MSB, per the documented wire format.
func (d *Decoder) readVarint() (uint64, error) {
	b, err := d.readByte()
	if err != nil {
		return 0, fmt.Errorf("%w: reading varint byte at offset %d: %v", taxonomy.ErrInvalidVarint, d.offset, err)
	}
	return d.readVarintContinuing(b)
}

// readVarintContinuing decodes a varint whose first byte has already
// been read (used at entry boundaries, where the caller must
// distinguish a clean end-of-stream from a truncated entry).
func (d *Decoder) readVarintContinuing(first byte) (uint64, error) {
	var value uint64
	var shift uint

	b := first
	for i := 0; i < maxVarintBytes; i++ {
		value |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return value, nil
		}
		shift += 7

		var err error
		b, err = d.readByte()
		if err != nil {
			return 0, fmt.Errorf("%w: reading varint byte at offset %d: %v", taxonomy.ErrInvalidVarint, d.offset, err)
		}
	}
	return 0, fmt.Errorf("%w: varint exceeded %d bytes at offset %d", taxonomy.ErrInvalidVarint, maxVarintBytes, d.offset)
}

// readSignedByteMagnitude implements the c/d/i specifier protocol: one
// byte signals sign, followed by a varint magnitude.
func (d *Decoder) readSignedByteMagnitude() (int64, error) {
	sign, err := d.readByte()
	if err != nil {
		return 0, fmt.Errorf("%w: reading sign byte at offset %d: %v", taxonomy.ErrInvalidBinaryLogs, d.offset, err)
	}
	mag, err := d.readVarint()
	if err != nil {
		return 0, err
	}
	if sign != 0 {
		return -int64(mag), nil
	}
	return int64(mag), nil
}
