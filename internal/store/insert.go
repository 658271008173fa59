package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cbl-diagnostics/logscope/internal/catalog"
	"github.com/cbl-diagnostics/logscope/internal/lineparser"
)

// WriteEventTypes writes the full id/name table from registry inside a
// single transaction. Per the data model invariant, this must happen
// before any Line row referencing an event_type id is inserted.
func (s *Store) WriteEventTypes(ctx context.Context, registry *catalog.EventRegistry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: beginning event_types transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO event_types (id, name) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("store: preparing event_types insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range registry.All() {
		if _, err := stmt.ExecContext(ctx, row.ID, row.Name); err != nil {
			return fmt.Errorf("store: inserting event_type %q: %w", row.Name, err)
		}
	}

	return tx.Commit()
}

// FileRecord is the file-level metadata and its parsed lines, ready for
// a single transactional insert.
type FileRecord struct {
	Path      string
	Level     *lineparser.Level
	Timestamp time.Time
	Lines     []lineparser.Line
}

// WriteFile inserts one File row and batch-inserts its Line rows inside
// a single transaction, in line-number order. Per the propagation
// policy, a failure here is fatal to the run: it returns an error
// rather than being logged and skipped.
func (s *Store) WriteFile(ctx context.Context, rec FileRecord, registry *catalog.EventRegistry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: beginning file transaction for %s: %w", rec.Path, err)
	}
	defer tx.Rollback()

	var levelValue any
	if rec.Level != nil {
		levelValue = int(*rec.Level)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO files (path, level, timestamp) VALUES (?, ?, ?)`,
		rec.Path, levelValue, rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("store: inserting file %s: %w", rec.Path, err)
	}
	fileID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: reading file id for %s: %w", rec.Path, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO lines (file_id, line_num, level, timestamp, domain, event_type, event_data, object_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("store: preparing line insert for %s: %w", rec.Path, err)
	}
	defer stmt.Close()

	for _, line := range rec.Lines {
		eventTypeID, ok := registry.ID(line.EventKey)
		if !ok {
			return fmt.Errorf("store: %s line %d: unregistered event key %q", rec.Path, line.LineNum, line.EventKey)
		}

		var eventData any
		if line.EventData != "" {
			eventData = line.EventData
		}
		var objectPath any
		if line.HasObject {
			objectPath = line.ObjectPath
		}

		if _, err := stmt.ExecContext(ctx,
			fileID, line.LineNum, int(line.Level), line.Timestamp, line.Domain,
			eventTypeID, eventData, objectPath,
		); err != nil {
			return fmt.Errorf("store: inserting %s line %d: %w", rec.Path, line.LineNum, err)
		}
	}

	return tx.Commit()
}
