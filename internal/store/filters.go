package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/charliedev/reliquary/model"
)

const filterColumns = "id, groupId, fieldId, attribute, handle, name, sortOrder, dateCreated, dateUpdated, uid"

func scanFilter(row interface{ Scan(...interface{}) error }) (*model.SearchGroupFilter, error) {
	var f model.SearchGroupFilter
	var fieldID sql.NullInt64
	var attribute sql.NullString
	var created, updated string
	if err := row.Scan(&f.ID, &f.GroupID, &fieldID, &attribute, &f.Handle, &f.Name, &f.SortOrder, &created, &updated, &f.UID); err != nil {
		return nil, err
	}
	f.FieldID = int64Ptr(fieldID)
	f.Attribute = stringPtr(attribute)
	f.DateCreated = parseTime(created)
	f.DateUpdated = parseTime(updated)
	return &f, nil
}

// FiltersByGroup retrieves a group's filters ordered by sort order.
func (s *Store) FiltersByGroup(ctx context.Context, groupID int64) ([]*model.SearchGroupFilter, error) {
	s.mu.RLock()
	if filters, ok := s.filtersByGroup[groupID]; ok {
		s.mu.RUnlock()
		return filters, nil
	}
	s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+filterColumns+" FROM reliquary_searchgroupfilters WHERE groupId = ? ORDER BY sortOrder", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load filters for group %d: %w", groupID, err)
	}
	defer rows.Close()

	var filters []*model.SearchGroupFilter
	for rows.Next() {
		f, err := scanFilter(rows)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.filtersByGroup[groupID] = filters
	for _, f := range filters {
		s.filtersByID[f.ID] = f
	}
	s.mu.Unlock()
	return filters, nil
}

// FilterByID retrieves a single filter, or nil when none exists.
func (s *Store) FilterByID(ctx context.Context, filterID int64) (*model.SearchGroupFilter, error) {
	s.mu.RLock()
	if f, ok := s.filtersByID[filterID]; ok {
		s.mu.RUnlock()
		return f, nil
	}
	s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+filterColumns+" FROM reliquary_searchgroupfilters WHERE id = ?", filterID)
	f, err := scanFilter(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load filter %d: %w", filterID, err)
	}

	s.mu.Lock()
	s.filtersByID[f.ID] = f
	s.mu.Unlock()
	return f, nil
}

// SaveFilter inserts or updates a filter and invalidates the caches.
func (s *Store) SaveFilter(ctx context.Context, f *model.SearchGroupFilter) error {
	now := time.Now().UTC()
	f.DateUpdated = now
	if f.ID == 0 {
		f.DateCreated = now
		f.UID = uuid.NewString()
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO reliquary_searchgroupfilters (groupId, fieldId, attribute, handle, name, sortOrder, dateCreated, dateUpdated, uid)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			f.GroupID, nullInt64(f.FieldID), nullString(f.Attribute), f.Handle, f.Name, f.SortOrder, formatTime(f.DateCreated), formatTime(f.DateUpdated), f.UID)
		if err != nil {
			return fmt.Errorf("failed to insert filter: %w", err)
		}
		f.ID, err = res.LastInsertId()
		if err != nil {
			return err
		}
	} else {
		_, err := s.db.ExecContext(ctx,
			`UPDATE reliquary_searchgroupfilters SET groupId = ?, fieldId = ?, attribute = ?, handle = ?, name = ?, sortOrder = ?, dateUpdated = ? WHERE id = ?`,
			f.GroupID, nullInt64(f.FieldID), nullString(f.Attribute), f.Handle, f.Name, f.SortOrder, formatTime(f.DateUpdated), f.ID)
		if err != nil {
			return fmt.Errorf("failed to update filter %d: %w", f.ID, err)
		}
	}

	s.mu.Lock()
	delete(s.filtersByGroup, f.GroupID)
	delete(s.filtersByID, f.ID)
	s.mu.Unlock()
	return nil
}

// DeleteFilter removes a filter and invalidates the caches.
func (s *Store) DeleteFilter(ctx context.Context, filterID int64) error {
	f, err := s.FilterByID(ctx, filterID)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM reliquary_searchgroupfilters WHERE id = ?", filterID); err != nil {
		return fmt.Errorf("failed to delete filter %d: %w", filterID, err)
	}

	s.mu.Lock()
	delete(s.filtersByID, filterID)
	if f != nil {
		delete(s.filtersByGroup, f.GroupID)
	}
	s.mu.Unlock()
	return nil
}
