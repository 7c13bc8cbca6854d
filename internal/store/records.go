package store

import (
	"context"
	"fmt"
	"time"

	"github.com/charliedev/reliquary/model"
)

// InsertSearchRecord logs one executed search for usage statistics.
func (s *Store) InsertSearchRecord(ctx context.Context, r *model.SearchRecord) error {
	if r.Time.IsZero() {
		r.Time = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO reliquary_searchrecord (subjectId, time, term, filters) VALUES (?, ?, ?, ?)",
		r.SubjectID, formatTime(r.Time), r.Term, r.Filters)
	if err != nil {
		return fmt.Errorf("failed to insert search record: %w", err)
	}
	r.ID, err = res.LastInsertId()
	return err
}

// SearchRecordsBySubject retrieves the logged searches for one subject,
// newest first.
func (s *Store) SearchRecordsBySubject(ctx context.Context, subjectID string, limit int) ([]*model.SearchRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, subjectId, time, term, filters FROM reliquary_searchrecord WHERE subjectId = ? ORDER BY time DESC LIMIT ?",
		subjectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load search records: %w", err)
	}
	defer rows.Close()

	var records []*model.SearchRecord
	for rows.Next() {
		var r model.SearchRecord
		var at string
		if err := rows.Scan(&r.ID, &r.SubjectID, &at, &r.Term, &r.Filters); err != nil {
			return nil, err
		}
		r.Time = parseTime(at)
		records = append(records, &r)
	}
	return records, rows.Err()
}
