package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/charliedev/reliquary/model"
)

const searchElementColumns = "id, groupId, elementType, elementTypeId, sortOrder, dateCreated, dateUpdated, uid"

func scanSearchElement(row interface{ Scan(...interface{}) error }) (*model.SearchGroupElement, error) {
	var e model.SearchGroupElement
	var typeID sql.NullInt64
	var created, updated string
	if err := row.Scan(&e.ID, &e.GroupID, &e.ElementType, &typeID, &e.SortOrder, &created, &updated, &e.UID); err != nil {
		return nil, err
	}
	e.ElementTypeID = int64Ptr(typeID)
	e.DateCreated = parseTime(created)
	e.DateUpdated = parseTime(updated)
	return &e, nil
}

// SearchElementsByGroup retrieves a group's element-type selectors ordered
// by their configured sort order.
func (s *Store) SearchElementsByGroup(ctx context.Context, groupID int64) ([]*model.SearchGroupElement, error) {
	s.mu.RLock()
	if elements, ok := s.elementsByGroup[groupID]; ok {
		s.mu.RUnlock()
		return elements, nil
	}
	s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+searchElementColumns+" FROM reliquary_searchgroupelements WHERE groupId = ? ORDER BY sortOrder", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load search elements for group %d: %w", groupID, err)
	}
	defer rows.Close()

	var elements []*model.SearchGroupElement
	for rows.Next() {
		e, err := scanSearchElement(rows)
		if err != nil {
			return nil, err
		}
		elements = append(elements, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.elementsByGroup[groupID] = elements
	s.mu.Unlock()
	return elements, nil
}

// SaveSearchElement inserts or updates an element-type selector and
// invalidates the cache.
func (s *Store) SaveSearchElement(ctx context.Context, e *model.SearchGroupElement) error {
	now := time.Now().UTC()
	e.DateUpdated = now
	if e.ID == 0 {
		e.DateCreated = now
		e.UID = uuid.NewString()
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO reliquary_searchgroupelements (groupId, elementType, elementTypeId, sortOrder, dateCreated, dateUpdated, uid)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.GroupID, e.ElementType, nullInt64(e.ElementTypeID), e.SortOrder, formatTime(e.DateCreated), formatTime(e.DateUpdated), e.UID)
		if err != nil {
			return fmt.Errorf("failed to insert search element: %w", err)
		}
		e.ID, err = res.LastInsertId()
		if err != nil {
			return err
		}
	} else {
		_, err := s.db.ExecContext(ctx,
			`UPDATE reliquary_searchgroupelements SET groupId = ?, elementType = ?, elementTypeId = ?, sortOrder = ?, dateUpdated = ? WHERE id = ?`,
			e.GroupID, e.ElementType, nullInt64(e.ElementTypeID), e.SortOrder, formatTime(e.DateUpdated), e.ID)
		if err != nil {
			return fmt.Errorf("failed to update search element %d: %w", e.ID, err)
		}
	}

	s.mu.Lock()
	delete(s.elementsByGroup, e.GroupID)
	s.mu.Unlock()
	return nil
}

// DeleteSearchElement removes an element-type selector and invalidates the
// cache.
func (s *Store) DeleteSearchElement(ctx context.Context, id, groupID int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM reliquary_searchgroupelements WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete search element %d: %w", id, err)
	}
	s.mu.Lock()
	delete(s.elementsByGroup, groupID)
	s.mu.Unlock()
	return nil
}
