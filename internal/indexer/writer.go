// Package indexer turns queued raw content values into ngram index rows.
//
// The writer consumes the pending-value queue one (element, site) pair at a
// time and rewrites that pair's slice of the inverted index inside a single
// transaction. Passes are idempotent: re-running against an empty queue is a
// no-op, and re-running after a crash reconstructs the same final state from
// the surviving queue rows.
package indexer

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/charliedev/reliquary/internal/ngram"
	"github.com/charliedev/reliquary/internal/normalizer"
	"github.com/charliedev/reliquary/internal/store"
	"github.com/charliedev/reliquary/model"
)

// Writer rewrites the ngram index for single elements from queued values.
type Writer struct {
	store *store.Store
}

// NewWriter creates a writer backed by the given store.
func NewWriter(s *store.Store) *Writer {
	return &Writer{store: s}
}

// Reindex processes every queued value for one element and site and rewrites
// the element's index entries and postings to match. The whole pass runs in
// one transaction so a crash cannot mix postings from two content versions.
func (w *Writer) Reindex(ctx context.Context, elementID, siteID int64) error {
	tx, err := w.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reindex transaction: %w", err)
	}
	defer tx.Rollback()

	// Latest queued value per (fieldId, attribute) group only. Older rows
	// for the same group are superseded and swept up by the final cleanup.
	values, err := w.store.PendingQueueValues(ctx, tx, elementID, siteID)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return tx.Commit()
	}

	existing, err := w.store.IndexEntriesForElement(ctx, tx, elementID, siteID)
	if err != nil {
		return err
	}
	existingByTarget := make(map[string]model.IndexEntry, len(existing))
	for _, e := range existing {
		existingByTarget[e.TargetKey()] = e
	}

	// Entry ids are reused when the same field or attribute still carries
	// content, so postings stay attached to a stable identity across edits.
	kept := make(map[string]bool, len(values))
	var staged []model.IndexEntry
	var postings []model.Posting
	for _, v := range values {
		normalized := normalizer.Normalize(ngram.Pad(v.Value))
		grams := ngram.Build(normalized)
		if len(grams) == 0 {
			// Cleared content. The entry, if any, falls out below.
			continue
		}

		target := v.TargetKey()
		entry, ok := existingByTarget[target]
		if !ok {
			entry = model.IndexEntry{
				ID:        uuid.NewString(),
				ElementID: elementID,
				SiteID:    siteID,
				FieldID:   v.FieldID,
				Attribute: v.Attribute,
			}
			staged = append(staged, entry)
		}
		kept[target] = true

		for offset, key := range grams {
			postings = append(postings, model.Posting{IndexID: entry.ID, Offset: offset, Key: key})
		}
	}

	if err := w.store.InsertIndexEntries(ctx, tx, staged); err != nil {
		return err
	}

	// Full replace. Every posting for the element goes, including those of
	// entries the queue did not touch this pass; their content was cleared
	// and the entries themselves are deleted next.
	if err := w.store.DeletePostingsForElement(ctx, tx, elementID, siteID); err != nil {
		return err
	}

	var stale []string
	for _, e := range existing {
		if !kept[e.TargetKey()] {
			stale = append(stale, e.ID)
		}
	}
	if err := w.store.DeleteIndexEntries(ctx, tx, stale); err != nil {
		return err
	}

	if err := w.store.InsertPostings(ctx, tx, postings); err != nil {
		return err
	}
	if err := w.store.RefreshNgramCounts(ctx, tx, elementID, siteID); err != nil {
		return err
	}

	// Unconditional cleanup, including superseded duplicate rows skipped in
	// the dedup read above.
	if err := w.store.ClearPendingQueueTx(ctx, tx, elementID, siteID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reindex for element %d: %w", elementID, err)
	}
	log.Printf("Reindexed element %d site %d: %d entries kept or created, %d removed, %d postings",
		elementID, siteID, len(kept), len(stale), len(postings))
	return nil
}

// DeleteElement drops all index data and queued values for an element across
// every site. Invoked by the element-deleted hook.
func (w *Writer) DeleteElement(ctx context.Context, elementID int64) error {
	return w.store.DeleteElementIndex(ctx, elementID)
}

// ClearAll empties the index tables entirely so the host can rebuild from
// scratch by re-saving content.
func (w *Writer) ClearAll(ctx context.Context) error {
	return w.store.ClearIndexTables(ctx)
}
