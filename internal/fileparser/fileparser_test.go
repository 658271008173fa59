package fileparser_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbl-diagnostics/logscope/internal/catalog"
	"github.com/cbl-diagnostics/logscope/internal/fileparser"
)

func legacyPatternSet(t *testing.T) (*catalog.PatternSet, *catalog.PlatformPattern) {
	t.Helper()
	v, err := catalog.ParseVersion("2.5.0")
	require.NoError(t, err)
	ps, err := catalog.Global().PatternsForVersion(v)
	require.NoError(t, err)
	require.NotEmpty(t, ps.Platforms)
	return ps, &ps.Platforms[0]
}

func modernPatternSet(t *testing.T) (*catalog.PatternSet, *catalog.PlatformPattern) {
	t.Helper()
	v, err := catalog.ParseVersion("3.1.0")
	require.NoError(t, err)
	ps, err := catalog.Global().PatternsForVersion(v)
	require.NoError(t, err)
	require.NotEmpty(t, ps.Platforms)
	return ps, &ps.Platforms[0]
}

func TestParseFileDayRolloverReconciliation(t *testing.T) {
	ps, pp := legacyPatternSet(t)

	base := time.Date(2023, 12, 8, 23, 59, 58, 0, time.UTC)
	path := fmt.Sprintf("/var/log/cbl/app_Info_%d.log", base.UnixMilli())

	rawLines := []string{
		"23:59:59.000 Sync I: Replicator state: idle",
		"00:00:00.500 Sync I: Replicator state: busy",
		"00:00:01.000 Sync I: Replicator state: idle",
	}

	out, err := fileparser.ParseFile(path, rawLines, ps, pp, false)
	require.NoError(t, err)
	require.Len(t, out.Lines, 3)

	assert.Equal(t, "2023-12-08", out.Lines[0].Timestamp.Format("2006-01-02"))
	assert.Equal(t, "2023-12-09", out.Lines[1].Timestamp.Format("2006-01-02"))
	assert.Equal(t, "2023-12-09", out.Lines[2].Timestamp.Format("2006-01-02"))

	for i := 1; i < len(out.Lines); i++ {
		assert.False(t, out.Lines[i].Timestamp.Before(out.Lines[i-1].Timestamp))
	}
}

func TestParseFileLineNumsPreserveOriginalPosition(t *testing.T) {
	ps, pp := modernPatternSet(t)
	path := "/var/log/cbl/app_Info_1700000000000.log"

	rawLines := []string{
		"2023-12-08T10:00:00.000000 Sync Info: Received rev 'a::1' / '1-aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa'",
		"2023-12-08T10:00:00.500000 Sync Info: something nobody recognizes happened",
		"2023-12-08T10:00:01.000000 Sync Info: Received rev 'a::2' / '2-bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb'",
	}

	out, err := fileparser.ParseFile(path, rawLines, ps, pp, true)
	require.NoError(t, err)
	require.Len(t, out.Lines, 2)
	assert.Equal(t, 1, out.Lines[0].LineNum)
	assert.Equal(t, 3, out.Lines[1].LineNum)
	assert.Equal(t, 1, out.ErrorCount)
}
