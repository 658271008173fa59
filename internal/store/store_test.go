package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cbl-diagnostics/logscope/internal/catalog"
	"github.com/cbl-diagnostics/logscope/internal/lineparser"
	"github.com/cbl-diagnostics/logscope/internal/store"
)

func eventData(t *testing.T, docID, revID string) string {
	t.Helper()
	return `{"doc_id":"` + docID + `","rev_id":"` + revID + `"}`
}

// TestUninsertedRevsReproducesSourceIntegrationScenario builds the
// 10-line corpus shape described for find_uninserted_revs: four
// IncomingrevReceived rows and two DbSavedRev rows, with exactly two
// received revisions lacking a corresponding save.
func TestUninsertedRevsReproducesSourceIntegrationScenario(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "logscope.sqlite")

	s, err := store.Open(ctx, dbPath)
	require.NoError(t, err)
	defer s.Close()

	registry := catalog.Global().Registry()
	require.NoError(t, s.WriteEventTypes(ctx, registry))

	_, ok := registry.ID("IncomingrevReceived")
	require.True(t, ok)
	_, ok = registry.ID("DbSavedRev")
	require.True(t, ok)

	uninsertedDocA := "project::b2d44c1c-1dd1-4f49-a939-99cbeb388dfc"
	uninsertedRevA := "2-e9f91077c5126dd7f5bd464ea8b8d7d3"
	uninsertedDocB := "projectcoordinatorstatistics::923a1bd3-f9a6-4621-8feb-e39651bad366"
	uninsertedRevB := "26-bca3778f342fe8f57ad708893b181bd6"

	savedDocA := "project::aaaa1111-1dd1-4f49-a939-99cbeb388dfc"
	savedRevA := "1-1111111111111111111111111111aa"

	lines := []lineparser.Line{
		{LineNum: 1, Level: lineparser.LevelInfo, Timestamp: time.Now(), Domain: "Sync", EventKey: "IncomingrevReceived", EventData: eventData(t, uninsertedDocA, uninsertedRevA)},
		{LineNum: 2, Level: lineparser.LevelInfo, Timestamp: time.Now(), Domain: "Sync", EventKey: "IncomingrevReceived", EventData: eventData(t, uninsertedDocB, uninsertedRevB)},
		{LineNum: 3, Level: lineparser.LevelInfo, Timestamp: time.Now(), Domain: "Sync", EventKey: "IncomingrevReceived", EventData: eventData(t, savedDocA, savedRevA)},
		{LineNum: 4, Level: lineparser.LevelInfo, Timestamp: time.Now(), Domain: "Sync", EventKey: "IncomingrevReceived", EventData: eventData(t, savedDocA, savedRevA)},
		{LineNum: 5, Level: lineparser.LevelInfo, Timestamp: time.Now(), Domain: "DB", EventKey: "DbSavedRev", EventData: eventData(t, savedDocA, savedRevA)},
		{LineNum: 6, Level: lineparser.LevelInfo, Timestamp: time.Now(), Domain: "DB", EventKey: "DbSavedRev", EventData: eventData(t, savedDocA, savedRevA)},
	}

	require.NoError(t, s.WriteFile(ctx, store.FileRecord{
		Path:      "10-line-corpus.log",
		Timestamp: time.Now(),
		Lines:     lines,
	}, registry))

	got, err := s.UninsertedRevs(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert := require.New(t)
	assert.Equal(uninsertedDocA, got[0].DocID)
	assert.Equal(uninsertedRevA, got[0].RevID)
	assert.Equal(uninsertedDocB, got[1].DocID)
	assert.Equal(uninsertedRevB, got[1].RevID)
}

// TestUninsertedRevsMatchesOnDocIDAcrossRevisions asserts the join is
// doc_id-only: a doc received at one rev and later saved at a newer rev
// is not reported as uninserted.
func TestUninsertedRevsMatchesOnDocIDAcrossRevisions(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "logscope.sqlite")

	s, err := store.Open(ctx, dbPath)
	require.NoError(t, err)
	defer s.Close()

	registry := catalog.Global().Registry()
	require.NoError(t, s.WriteEventTypes(ctx, registry))

	docID := "project::c3a1b2d3-1dd1-4f49-a939-99cbeb388dfc"
	receivedRev := "1-1111111111111111111111111111aa"
	savedRev := "2-2222222222222222222222222222bb"

	lines := []lineparser.Line{
		{LineNum: 1, Level: lineparser.LevelInfo, Timestamp: time.Now(), Domain: "Sync", EventKey: "IncomingrevReceived", EventData: eventData(t, docID, receivedRev)},
		{LineNum: 2, Level: lineparser.LevelInfo, Timestamp: time.Now(), Domain: "DB", EventKey: "DbSavedRev", EventData: eventData(t, docID, savedRev)},
	}

	require.NoError(t, s.WriteFile(ctx, store.FileRecord{
		Path:      "doc-id-only-join.log",
		Timestamp: time.Now(),
		Lines:     lines,
	}, registry))

	got, err := s.UninsertedRevs(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}
