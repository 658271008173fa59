package lineparser_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbl-diagnostics/logscope/internal/catalog"
	"github.com/cbl-diagnostics/logscope/internal/lineparser"
	"github.com/cbl-diagnostics/logscope/internal/taxonomy"
)

func testCatalogSet(t *testing.T) (*catalog.PatternSet, *catalog.PlatformPattern) {
	t.Helper()
	v, err := catalog.ParseVersion("3.1.0")
	require.NoError(t, err)
	ps, err := catalog.Global().PatternsForVersion(v)
	require.NoError(t, err)
	require.NotEmpty(t, ps.Platforms)
	return ps, &ps.Platforms[0]
}

func TestParseResolvesDomainLevelTimestampAndEvent(t *testing.T) {
	ps, pp := testCatalogSet(t)
	line := "2023-12-08T10:15:30.123456 Sync Info: Obj=Puller Received rev 'project::b2d44c1c-1dd1-4f49-a939-99cbeb388dfc' / '2-e9f91077c5126dd7f5bd464ea8b8d7d3'"

	header := lineparser.FileHeader{BaseDate: time.Date(2023, 12, 8, 0, 0, 0, 0, time.UTC)}
	got, err := lineparser.Parse(line, 1, header, ps, pp)
	require.NoError(t, err)

	assert.Equal(t, lineparser.LevelInfo, got.Level)
	assert.Equal(t, "Sync", got.Domain)
	assert.Equal(t, "Puller", got.ObjectPath)
	assert.True(t, got.HasObject)
	assert.Equal(t, "IncomingrevReceived", got.EventKey)
	assert.Contains(t, got.EventData, `"doc_id":"project::b2d44c1c-1dd1-4f49-a939-99cbeb388dfc"`)
	assert.Contains(t, got.EventData, `"rev_id":"2-e9f91077c5126dd7f5bd464ea8b8d7d3"`)
	assert.Equal(t, 2023, got.Timestamp.Year())
}

func TestParseNoDomainIsSilentNoise(t *testing.T) {
	ps, pp := testCatalogSet(t)
	header := lineparser.FileHeader{BaseDate: time.Now()}
	_, err := lineparser.Parse("not-a-log-line", 1, header, ps, pp)
	require.Error(t, err)
	assert.True(t, taxonomy.ExpectedNoise(err))
}

func TestParseUnknownEvent(t *testing.T) {
	ps, pp := testCatalogSet(t)
	header := lineparser.FileHeader{BaseDate: time.Now()}
	line := "2023-12-08T10:15:30.123456 Sync Info: nothing recognizable happened here"
	_, err := lineparser.Parse(line, 1, header, ps, pp)
	require.Error(t, err)
}

func TestParseIgnoredEvent(t *testing.T) {
	ps, pp := testCatalogSet(t)
	header := lineparser.FileHeader{BaseDate: time.Now()}
	line := "2023-12-08T10:15:30.123456 Sync Debug: heartbeat"
	_, err := lineparser.Parse(line, 1, header, ps, pp)
	require.Error(t, err)
}
