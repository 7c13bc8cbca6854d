package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/charliedev/reliquary/model"
)

const groupColumns = "id, siteId, handle, name, template, pageSize, searchOrder, sortOrder, dateCreated, dateUpdated, uid"

func scanGroup(row interface{ Scan(...interface{}) error }) (*model.SearchGroup, error) {
	var g model.SearchGroup
	var created, updated string
	if err := row.Scan(&g.ID, &g.SiteID, &g.Handle, &g.Name, &g.Template, &g.PageSize, &g.SearchOrder, &g.SortOrder, &created, &updated, &g.UID); err != nil {
		return nil, err
	}
	g.DateCreated = parseTime(created)
	g.DateUpdated = parseTime(updated)
	return &g, nil
}

// GroupByID retrieves a search group, or nil when none exists.
func (s *Store) GroupByID(ctx context.Context, groupID int64) (*model.SearchGroup, error) {
	s.mu.RLock()
	if g, ok := s.groupsByID[groupID]; ok {
		s.mu.RUnlock()
		return g, nil
	}
	s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+groupColumns+" FROM reliquary_searchgroups WHERE id = ?", groupID)
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load search group %d: %w", groupID, err)
	}

	s.mu.Lock()
	s.groupsByID[g.ID] = g
	s.groupsByHandle[g.Handle] = g
	s.mu.Unlock()
	return g, nil
}

// GroupByHandle retrieves a search group by handle, or nil when none exists.
func (s *Store) GroupByHandle(ctx context.Context, handle string) (*model.SearchGroup, error) {
	s.mu.RLock()
	if g, ok := s.groupsByHandle[handle]; ok {
		s.mu.RUnlock()
		return g, nil
	}
	s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+groupColumns+" FROM reliquary_searchgroups WHERE handle = ?", handle)
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load search group '%s': %w", handle, err)
	}

	s.mu.Lock()
	s.groupsByID[g.ID] = g
	s.groupsByHandle[g.Handle] = g
	s.mu.Unlock()
	return g, nil
}

// GroupsBySite retrieves all search groups for a site ordered by their
// configured sort order.
func (s *Store) GroupsBySite(ctx context.Context, siteID int64) ([]*model.SearchGroup, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+groupColumns+" FROM reliquary_searchgroups WHERE siteId = ? ORDER BY sortOrder", siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load search groups for site %d: %w", siteID, err)
	}
	defer rows.Close()
	return collectGroups(rows)
}

// AllGroups retrieves every search group ordered by sort order.
func (s *Store) AllGroups(ctx context.Context) ([]*model.SearchGroup, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+groupColumns+" FROM reliquary_searchgroups ORDER BY sortOrder")
	if err != nil {
		return nil, fmt.Errorf("failed to load search groups: %w", err)
	}
	defer rows.Close()
	return collectGroups(rows)
}

func collectGroups(rows *sql.Rows) ([]*model.SearchGroup, error) {
	var groups []*model.SearchGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// SaveGroup inserts or updates a search group and invalidates the caches.
func (s *Store) SaveGroup(ctx context.Context, g *model.SearchGroup) error {
	now := time.Now().UTC()
	g.DateUpdated = now
	if g.ID == 0 {
		g.DateCreated = now
		g.UID = uuid.NewString()
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO reliquary_searchgroups (siteId, handle, name, template, pageSize, searchOrder, sortOrder, dateCreated, dateUpdated, uid)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			g.SiteID, g.Handle, g.Name, g.Template, g.PageSize, g.SearchOrder, g.SortOrder, formatTime(g.DateCreated), formatTime(g.DateUpdated), g.UID)
		if err != nil {
			return fmt.Errorf("failed to insert search group: %w", err)
		}
		g.ID, err = res.LastInsertId()
		if err != nil {
			return err
		}
	} else {
		_, err := s.db.ExecContext(ctx,
			`UPDATE reliquary_searchgroups SET siteId = ?, handle = ?, name = ?, template = ?, pageSize = ?, searchOrder = ?, sortOrder = ?, dateUpdated = ? WHERE id = ?`,
			g.SiteID, g.Handle, g.Name, g.Template, g.PageSize, g.SearchOrder, g.SortOrder, formatTime(g.DateUpdated), g.ID)
		if err != nil {
			return fmt.Errorf("failed to update search group %d: %w", g.ID, err)
		}
	}

	s.mu.Lock()
	delete(s.groupsByID, g.ID)
	for handle, cached := range s.groupsByHandle {
		if cached.ID == g.ID {
			delete(s.groupsByHandle, handle)
		}
	}
	s.mu.Unlock()
	return nil
}

// DeleteGroup removes a search group; its elements and filters cascade.
func (s *Store) DeleteGroup(ctx context.Context, groupID int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM reliquary_searchgroups WHERE id = ?", groupID); err != nil {
		return fmt.Errorf("failed to delete search group %d: %w", groupID, err)
	}

	s.mu.Lock()
	delete(s.groupsByID, groupID)
	for handle, cached := range s.groupsByHandle {
		if cached.ID == groupID {
			delete(s.groupsByHandle, handle)
		}
	}
	delete(s.elementsByGroup, groupID)
	for _, f := range s.filtersByGroup[groupID] {
		delete(s.filtersByID, f.ID)
	}
	delete(s.filtersByGroup, groupID)
	s.mu.Unlock()
	return nil
}

// ReorderGroups rewrites the sort order of groups to match the given id
// sequence.
func (s *Store) ReorderGroups(ctx context.Context, ids []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for order, id := range ids {
		if _, err := tx.ExecContext(ctx, "UPDATE reliquary_searchgroups SET sortOrder = ? WHERE id = ?", order+1, id); err != nil {
			return fmt.Errorf("failed to reorder search group %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.mu.Lock()
	s.groupsByID = make(map[int64]*model.SearchGroup)
	s.groupsByHandle = make(map[string]*model.SearchGroup)
	s.mu.Unlock()
	return nil
}
