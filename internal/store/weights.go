package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/charliedev/reliquary/model"
)

const weightColumns = "id, fieldId, attribute, elementType, elementTypeId, multiplier, dateCreated, dateUpdated, uid"

func scanWeight(row interface{ Scan(...interface{}) error }) (*model.CustomFieldWeight, error) {
	var w model.CustomFieldWeight
	var fieldID, typeID sql.NullInt64
	var attribute sql.NullString
	var created, updated string
	if err := row.Scan(&w.ID, &fieldID, &attribute, &w.ElementType, &typeID, &w.Multiplier, &created, &updated, &w.UID); err != nil {
		return nil, err
	}
	w.FieldID = int64Ptr(fieldID)
	w.Attribute = stringPtr(attribute)
	w.ElementTypeID = int64Ptr(typeID)
	w.DateCreated = parseTime(created)
	w.DateUpdated = parseTime(updated)
	return &w, nil
}

// AllWeights retrieves every configured custom field weight.
func (s *Store) AllWeights(ctx context.Context) ([]*model.CustomFieldWeight, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+weightColumns+" FROM reliquary_customfieldweights")
	if err != nil {
		return nil, fmt.Errorf("failed to load custom field weights: %w", err)
	}
	defer rows.Close()

	var weights []*model.CustomFieldWeight
	for rows.Next() {
		w, err := scanWeight(rows)
		if err != nil {
			return nil, err
		}
		weights = append(weights, w)
	}
	return weights, rows.Err()
}

// SaveWeight inserts or updates a custom field weight.
func (s *Store) SaveWeight(ctx context.Context, w *model.CustomFieldWeight) error {
	now := time.Now().UTC()
	w.DateUpdated = now
	if w.ID == 0 {
		w.DateCreated = now
		w.UID = uuid.NewString()
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO reliquary_customfieldweights (fieldId, attribute, elementType, elementTypeId, multiplier, dateCreated, dateUpdated, uid)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			nullInt64(w.FieldID), nullString(w.Attribute), w.ElementType, nullInt64(w.ElementTypeID), w.Multiplier, formatTime(w.DateCreated), formatTime(w.DateUpdated), w.UID)
		if err != nil {
			return fmt.Errorf("failed to insert custom field weight: %w", err)
		}
		w.ID, err = res.LastInsertId()
		if err != nil {
			return err
		}
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE reliquary_customfieldweights SET fieldId = ?, attribute = ?, elementType = ?, elementTypeId = ?, multiplier = ?, dateUpdated = ? WHERE id = ?`,
		nullInt64(w.FieldID), nullString(w.Attribute), w.ElementType, nullInt64(w.ElementTypeID), w.Multiplier, formatTime(w.DateUpdated), w.ID)
	if err != nil {
		return fmt.Errorf("failed to update custom field weight %d: %w", w.ID, err)
	}
	return nil
}

// DeleteWeight removes a custom field weight.
func (s *Store) DeleteWeight(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM reliquary_customfieldweights WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete custom field weight %d: %w", id, err)
	}
	return nil
}
