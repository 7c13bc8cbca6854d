package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charliedev/reliquary/model"
)

// EnqueueValues appends pending raw values for an element and site, one row
// per field/attribute. Called synchronously from the save hook; the actual
// indexing happens later in a background pass.
func (s *Store) EnqueueValues(ctx context.Context, elementID, siteID int64, values []model.QueueValue) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, v := range values {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO reliquary_indexqueue (elementId, siteId, fieldId, attribute, value) VALUES (?, ?, ?, ?, ?)",
			elementID, siteID, nullInt64(v.FieldID), nullString(v.Attribute), v.Value); err != nil {
			return fmt.Errorf("failed to enqueue value for element %d: %w", elementID, err)
		}
	}
	return tx.Commit()
}

// ClearPendingQueue removes all queued values for an element and site.
// Called before a newer save enqueues fresh values, so a stale pass cannot
// index intermediate content.
func (s *Store) ClearPendingQueue(ctx context.Context, elementID, siteID int64) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM reliquary_indexqueue WHERE elementId = ? AND siteId = ?", elementID, siteID); err != nil {
		return fmt.Errorf("failed to clear index queue for element %d: %w", elementID, err)
	}
	return nil
}

// ClearPendingQueueTx is ClearPendingQueue inside an existing transaction,
// used by the index writer's final cleanup step.
func (s *Store) ClearPendingQueueTx(ctx context.Context, tx *sql.Tx, elementID, siteID int64) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM reliquary_indexqueue WHERE elementId = ? AND siteId = ?", elementID, siteID); err != nil {
		return fmt.Errorf("failed to clear index queue for element %d: %w", elementID, err)
	}
	return nil
}

// PendingQueueValues retrieves the latest queued value per distinct
// (fieldId, attribute) group for an element and site. When multiple writes
// were queued before processing ran, only the most recently queued value of
// each group is returned.
func (s *Store) PendingQueueValues(ctx context.Context, tx *sql.Tx, elementID, siteID int64) ([]model.QueueValue, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT fieldId, attribute, value FROM reliquary_indexqueue
		 WHERE id IN (
			SELECT MAX(id) FROM reliquary_indexqueue
			WHERE elementId = ? AND siteId = ?
			GROUP BY fieldId, attribute
		 )`, elementID, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load queued values for element %d: %w", elementID, err)
	}
	defer rows.Close()

	var values []model.QueueValue
	for rows.Next() {
		var v model.QueueValue
		var fieldID sql.NullInt64
		var attribute sql.NullString
		if err := rows.Scan(&fieldID, &attribute, &v.Value); err != nil {
			return nil, err
		}
		v.FieldID = int64Ptr(fieldID)
		v.Attribute = stringPtr(attribute)
		values = append(values, v)
	}
	return values, rows.Err()
}

// QueueDepth reports the number of pending queue rows, for monitoring.
func (s *Store) QueueDepth(ctx context.Context) (int64, error) {
	var depth int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reliquary_indexqueue").Scan(&depth)
	return depth, err
}
