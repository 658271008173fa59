package store

import (
	"context"
	"fmt"
)

// UninsertedRev is one revision that was received over the wire but
// never reached a successful local save, per the documented
// find_uninserted_revs diagnostic.
type UninsertedRev struct {
	DocID string
	RevID string
}

// uninsertedRevsQuery left-joins every IncomingrevReceived event against
// DbSavedRev events sharing the same extracted doc_id, keeping only the
// rows with no matching save. Both event_data columns are JSON objects
// with doc_id/rev_id fields per the declared capture order.
const uninsertedRevsQuery = `
SELECT
	json_extract(recv.event_data, '$.doc_id') AS doc_id,
	json_extract(recv.event_data, '$.rev_id') AS rev_id
FROM lines recv
JOIN event_types recv_type ON recv_type.id = recv.event_type AND recv_type.name = 'IncomingrevReceived'
LEFT JOIN (
	SELECT DISTINCT
		json_extract(saved.event_data, '$.doc_id') AS doc_id
	FROM lines saved
	JOIN event_types saved_type ON saved_type.id = saved.event_type AND saved_type.name = 'DbSavedRev'
) saved ON saved.doc_id = json_extract(recv.event_data, '$.doc_id')
WHERE saved.doc_id IS NULL
ORDER BY doc_id, rev_id
`

// UninsertedRevs runs the diagnostic query an analyst would otherwise
// write by hand against the output database, reproducing the
// find_uninserted_revs integration scenario for any ingested corpus.
func (s *Store) UninsertedRevs(ctx context.Context) ([]UninsertedRev, error) {
	rows, err := s.db.QueryContext(ctx, uninsertedRevsQuery)
	if err != nil {
		return nil, fmt.Errorf("store: uninserted revs query: %w", err)
	}
	defer rows.Close()

	var out []UninsertedRev
	for rows.Next() {
		var r UninsertedRev
		if err := rows.Scan(&r.DocID, &r.RevID); err != nil {
			return nil, fmt.Errorf("store: scanning uninserted rev row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
