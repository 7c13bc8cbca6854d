package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/charliedev/reliquary/model"
)

// IndexEntriesForElement retrieves the existing index entries for an
// element and site, inside the writer's transaction.
func (s *Store) IndexEntriesForElement(ctx context.Context, tx *sql.Tx, elementID, siteID int64) ([]model.IndexEntry, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT id, elementId, siteId, fieldId, attribute, ngrams FROM reliquary_ngramindex WHERE elementId = ? AND siteId = ?",
		elementID, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load index entries for element %d: %w", elementID, err)
	}
	defer rows.Close()

	var entries []model.IndexEntry
	for rows.Next() {
		var e model.IndexEntry
		var fieldID sql.NullInt64
		var attribute sql.NullString
		if err := rows.Scan(&e.ID, &e.ElementID, &e.SiteID, &fieldID, &attribute, &e.NgramCount); err != nil {
			return nil, err
		}
		e.FieldID = int64Ptr(fieldID)
		e.Attribute = stringPtr(attribute)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// InsertIndexEntries bulk-inserts new index entries. Ids are assigned by
// the caller before insertion, so nothing depends on database id order.
func (s *Store) InsertIndexEntries(ctx context.Context, tx *sql.Tx, entries []model.IndexEntry) error {
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO reliquary_ngramindex (id, elementId, siteId, fieldId, attribute, ngrams) VALUES (?, ?, ?, ?, ?, 0)",
			e.ID, e.ElementID, e.SiteID, nullInt64(e.FieldID), nullString(e.Attribute)); err != nil {
			return fmt.Errorf("failed to insert index entry for element %d: %w", e.ElementID, err)
		}
	}
	return nil
}

// DeletePostingsForElement removes all postings belonging to any index
// entry of an element and site. Postings are always replaced wholesale,
// never patched.
func (s *Store) DeletePostingsForElement(ctx context.Context, tx *sql.Tx, elementID, siteID int64) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM reliquary_ngramdata WHERE indexId IN (
			SELECT id FROM reliquary_ngramindex WHERE elementId = ? AND siteId = ?
		 )`, elementID, siteID); err != nil {
		return fmt.Errorf("failed to delete postings for element %d: %w", elementID, err)
	}
	return nil
}

// DeleteIndexEntries removes index entries whose content was cleared.
func (s *Store) DeleteIndexEntries(ctx context.Context, tx *sql.Tx, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := "DELETE FROM reliquary_ngramindex WHERE id IN (?" + strings.Repeat(", ?", len(ids)-1) + ")"
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete index entries: %w", err)
	}
	return nil
}

// InsertPostings bulk-inserts postings.
func (s *Store) InsertPostings(ctx context.Context, tx *sql.Tx, postings []model.Posting) error {
	const chunkSize = 500 // rows per multi-value insert
	for start := 0; start < len(postings); start += chunkSize {
		end := start + chunkSize
		if end > len(postings) {
			end = len(postings)
		}
		chunk := postings[start:end]

		var sb strings.Builder
		sb.WriteString(`INSERT INTO reliquary_ngramdata (indexId, "offset", "key") VALUES `)
		args := make([]interface{}, 0, len(chunk)*3)
		for i, p := range chunk {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("(?, ?, ?)")
			args = append(args, p.IndexID, p.Offset, p.Key)
		}
		if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
			return fmt.Errorf("failed to insert postings: %w", err)
		}
	}
	return nil
}

// RefreshNgramCounts recomputes the cached posting count of every index
// entry for an element and site.
func (s *Store) RefreshNgramCounts(ctx context.Context, tx *sql.Tx, elementID, siteID int64) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE reliquary_ngramindex SET ngrams = (
			SELECT COUNT(*) FROM reliquary_ngramdata WHERE indexId = reliquary_ngramindex.id
		 ) WHERE elementId = ? AND siteId = ?`, elementID, siteID); err != nil {
		return fmt.Errorf("failed to refresh ngram counts for element %d: %w", elementID, err)
	}
	return nil
}

// DeleteElementIndex removes all index entries and postings for an element
// across every site. Used by the element-deleted hook.
func (s *Store) DeleteElementIndex(ctx context.Context, elementID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM reliquary_ngramdata WHERE indexId IN (SELECT id FROM reliquary_ngramindex WHERE elementId = ?)", elementID); err != nil {
		return fmt.Errorf("failed to delete postings for element %d: %w", elementID, err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM reliquary_ngramindex WHERE elementId = ?", elementID); err != nil {
		return fmt.Errorf("failed to delete index entries for element %d: %w", elementID, err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM reliquary_indexqueue WHERE elementId = ?", elementID); err != nil {
		return fmt.Errorf("failed to clear queue for element %d: %w", elementID, err)
	}
	return tx.Commit()
}

// ClearIndexTables empties the ngram tables entirely, used when the host
// rebuilds its search indexes from scratch.
func (s *Store) ClearIndexTables(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM reliquary_ngramdata"); err != nil {
		return fmt.Errorf("failed to clear postings: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM reliquary_ngramindex"); err != nil {
		return fmt.Errorf("failed to clear index entries: %w", err)
	}
	return nil
}

// MatchedPosting is one stored posting that matched a query gram, joined
// with its owning index entry.
type MatchedPosting struct {
	Entry  model.IndexEntry
	Offset int
	Key    string
}

// MatchedPostings retrieves every posting whose gram is among the query's
// distinct grams, restricted to index entries of the candidate elements on
// one site, ordered by index entry and offset so callers can reconstruct
// consecutive-offset runs in a single forward scan.
func (s *Store) MatchedPostings(ctx context.Context, siteID int64, grams []string, elementIDs []int64) ([]MatchedPosting, error) {
	if len(grams) == 0 || len(elementIDs) == 0 {
		return nil, nil
	}

	args := make([]interface{}, 0, len(grams)+len(elementIDs)+1)
	for _, g := range grams {
		args = append(args, g)
	}
	args = append(args, siteID)
	for _, id := range elementIDs {
		args = append(args, id)
	}

	query := `SELECT d.indexId, d."offset", d."key", i.elementId, i.siteId, i.fieldId, i.attribute, i.ngrams
		FROM reliquary_ngramdata d
		INNER JOIN reliquary_ngramindex i ON d.indexId = i.id
		WHERE d."key" IN (?` + strings.Repeat(", ?", len(grams)-1) + `)
		AND i.siteId = ?
		AND i.elementId IN (?` + strings.Repeat(", ?", len(elementIDs)-1) + `)
		ORDER BY d.indexId, d."offset"`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matched postings: %w", err)
	}
	defer rows.Close()

	var matches []MatchedPosting
	for rows.Next() {
		var m MatchedPosting
		var fieldID sql.NullInt64
		var attribute sql.NullString
		if err := rows.Scan(&m.Entry.ID, &m.Offset, &m.Key, &m.Entry.ElementID, &m.Entry.SiteID, &fieldID, &attribute, &m.Entry.NgramCount); err != nil {
			return nil, err
		}
		m.Entry.FieldID = int64Ptr(fieldID)
		m.Entry.Attribute = stringPtr(attribute)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
