package bindecoder_test

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbl-diagnostics/logscope/internal/bindecoder"
)

func putVarint(buf *bytes.Buffer, v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf.WriteByte(b | 0x80)
		} else {
			buf.WriteByte(b)
			return
		}
	}
}

func buildStream(t *testing.T, startEpoch int64, entries func(*bytes.Buffer)) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(bindecoder.Magic[:])
	buf.WriteByte(bindecoder.SupportedFormatVersion)
	buf.WriteByte(8)
	putVarint(&buf, uint64(startEpoch))
	entries(&buf)
	return buf.Bytes()
}

func TestIsBinaryDetectsMagic(t *testing.T) {
	plain := bufio.NewReader(bytes.NewReader([]byte("2023-12-08T10:00:00.000000 Sync Info hello\n")))
	assert.False(t, bindecoder.IsBinary(plain))

	var hdr bytes.Buffer
	hdr.Write(bindecoder.Magic[:])
	binr := bufio.NewReader(bytes.NewReader(hdr.Bytes()))
	assert.True(t, bindecoder.IsBinary(binr))
}

func TestDecodeSimpleEntry(t *testing.T) {
	raw := buildStream(t, 1_700_000_000, func(buf *bytes.Buffer) {
		putVarint(buf, 1_500_000) // elapsed ticks: 1.5s
		buf.WriteByte(3)          // level = Info
		putVarint(buf, 0)         // domain token id 0: new token
		buf.WriteString("Sync")
		buf.WriteByte(0)
		putVarint(buf, 0) // object id 0: no object
		putVarint(buf, 1) // format token id 1: new token (domain already took id 0)
		buf.WriteString("hello %d")
		buf.WriteByte(0)
		buf.WriteByte(0) // sign byte: positive
		putVarint(buf, 42)
	})

	dec, err := bindecoder.NewDecoder(bytes.NewReader(raw))
	require.NoError(t, err)

	lines, err := dec.Decode()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Sync Info hello 42")
	assert.NotContains(t, lines[0], "Obj=")
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := bindecoder.NewDecoder(bytes.NewReader([]byte("not a log file at all")))
	assert.Error(t, err)
}

func TestDecodeRejectsUnsupportedFormatVersion(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(bindecoder.Magic[:])
	buf.WriteByte(2) // unsupported version
	buf.WriteByte(8)
	putVarint(&buf, 0)

	_, err := bindecoder.NewDecoder(bytes.NewReader(buf.Bytes()))
	assert.Error(t, err)
}

func TestTokenReuseReturnsSameString(t *testing.T) {
	raw := buildStream(t, 0, func(buf *bytes.Buffer) {
		// first entry: domain introduces token 0 = "Sync", format introduces token 1 = "first"
		putVarint(buf, 0)
		buf.WriteByte(3)
		putVarint(buf, 0)
		buf.WriteString("Sync")
		buf.WriteByte(0)
		putVarint(buf, 0) // no object
		putVarint(buf, 1)
		buf.WriteString("first")
		buf.WriteByte(0)

		// second entry: domain reuses token 0 ("Sync"), format introduces token 2 = "second"
		putVarint(buf, 0)
		buf.WriteByte(3)
		putVarint(buf, 0) // reuse token id 0
		putVarint(buf, 0) // no object
		putVarint(buf, 2)
		buf.WriteString("second")
		buf.WriteByte(0)
	})

	dec, err := bindecoder.NewDecoder(bytes.NewReader(raw))
	require.NoError(t, err)
	lines, err := dec.Decode()
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Sync")
	assert.Contains(t, lines[1], "Sync")
}
