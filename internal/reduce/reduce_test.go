package reduce_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cbl-diagnostics/logscope/internal/reduce"
)

func TestReduceReplacesDocAndRevIDs(t *testing.T) {
	line := "2023-12-08T10:15:30.123456 Sync Info: Received rev 'project::b2d44c1c-1dd1-4f49-a939-99cbeb388dfc' / '2-e9f91077c5126dd7f5bd464ea8b8d7d3'"
	got := reduce.Reduce(line)
	assert.NotContains(t, got, "b2d44c1c")
	assert.NotContains(t, got, "e9f91077")
}

func TestReduceReplacesNumbersAndHex(t *testing.T) {
	got := reduce.Reduce("Compacted db, purged 42 docs at 0xDEADBEEF")
	assert.Contains(t, got, "{NUMBER}")
	assert.Contains(t, got, "{HEX}")
	assert.NotContains(t, got, "42")
	assert.NotContains(t, got, "0xDEADBEEF")
}

func TestReduceIsStableAcrossIdenticalShapedLines(t *testing.T) {
	a := reduce.Reduce("Sync Info: Saved 'a::1' / '1-aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa' rev")
	b := reduce.Reduce("Sync Info: Saved 'b::2' / '2-bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb' rev")
	assert.Equal(t, a, b)
}
