package search

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/charliedev/reliquary/internal/store"
	"github.com/charliedev/reliquary/model"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// seedEntry inserts one index entry with the given postings and refreshes
// its ngram count.
func seedEntry(t *testing.T, st *store.Store, id string, elementID, siteID int64, fieldID int64, postings map[int]string) {
	t.Helper()
	ctx := context.Background()
	tx, err := st.DB().BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("failed to begin tx: %v", err)
	}
	defer tx.Rollback()

	entry := model.IndexEntry{ID: id, ElementID: elementID, SiteID: siteID, FieldID: &fieldID}
	if err := st.InsertIndexEntries(ctx, tx, []model.IndexEntry{entry}); err != nil {
		t.Fatalf("failed to insert entry: %v", err)
	}
	var rows []model.Posting
	for offset, key := range postings {
		rows = append(rows, model.Posting{IndexID: id, Offset: offset, Key: key})
	}
	if err := st.InsertPostings(ctx, tx, rows); err != nil {
		t.Fatalf("failed to insert postings: %v", err)
	}
	if err := st.RefreshNgramCounts(ctx, tx, elementID, siteID); err != nil {
		t.Fatalf("failed to refresh counts: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
}

func candidate(id int64) model.ElementCandidate {
	return model.ElementCandidate{ID: id, Type: "entry"}
}

// One contiguous run of matched grams must far outscore the same grams
// scattered across the field.
func TestScoreRunLengthReward(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// "wxyz" plans grams wxy and xyz, each worth 1/2.
	plan := PlanGrams(map[int64]string{GeneralTerm: "wxyz"})

	seedEntry(t, st, "entry-1", 1, 1, 10, map[int]string{1: "wxy", 2: "xyz"})
	seedEntry(t, st, "entry-2", 2, 1, 10, map[int]string{1: "wxy", 5: "xyz"})

	scorer := NewScorer(st)
	scores, err := scorer.Score(ctx, plan, 1, []model.ElementCandidate{candidate(1), candidate(2)}, nil, nil)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	// Contiguous: (1/2 + 1/2)^(10/2) = 1. Scattered: 2 * (1/2)^10.
	if !approx(scores[1], 1) {
		t.Errorf("contiguous score = %v, want 1", scores[1])
	}
	if want := 2 * math.Pow(0.5, 10); !approx(scores[2], want) {
		t.Errorf("scattered score = %v, want %v", scores[2], want)
	}
	if scores[1] <= scores[2] {
		t.Errorf("one run of 2 (%v) must beat two runs of 1 (%v)", scores[1], scores[2])
	}
}

// An element must match text under every filter that carried text.
func TestScoreAllFiltersGate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	fieldA, fieldB := int64(10), int64(11)
	filters := []*model.SearchGroupFilter{
		{ID: 7, FieldID: &fieldA},
		{ID: 9, FieldID: &fieldB},
	}
	plan := PlanGrams(map[int64]string{7: "abcd", 9: "wxyz"})

	// Element 1 only has matching content for filter 7.
	seedEntry(t, st, "entry-1a", 1, 1, fieldA, map[int]string{1: "abc", 2: "bcd"})
	// Element 2 matches both.
	seedEntry(t, st, "entry-2a", 2, 1, fieldA, map[int]string{1: "abc", 2: "bcd"})
	seedEntry(t, st, "entry-2b", 2, 1, fieldB, map[int]string{1: "wxy", 2: "xyz"})

	scorer := NewScorer(st)
	scores, err := scorer.Score(ctx, plan, 1, []model.ElementCandidate{candidate(1), candidate(2)}, filters, nil)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	if _, ok := scores[1]; ok {
		t.Errorf("element 1 matched only one of two filters, must be excluded; got score %v", scores[1])
	}
	if scores[2] <= 0 {
		t.Errorf("element 2 matched both filters, want positive score, got %v", scores[2])
	}
}

// A filter's text only scores against the field the filter targets.
func TestScoreFilterTargetMatching(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	fieldA, fieldB := int64(10), int64(11)
	filters := []*model.SearchGroupFilter{{ID: 7, FieldID: &fieldA}}
	plan := PlanGrams(map[int64]string{7: "abcd"})

	// The matching content lives on a different field than filter 7 targets.
	seedEntry(t, st, "entry-1b", 1, 1, fieldB, map[int]string{1: "abc", 2: "bcd"})

	scorer := NewScorer(st)
	scores, err := scorer.Score(ctx, plan, 1, []model.ElementCandidate{candidate(1)}, filters, nil)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if len(scores) != 0 {
		t.Errorf("filter text matched the wrong field, want no scores, got %v", scores)
	}
}

// Fields with very large gram counts are penalized by log10(ngramCount).
func TestScoreLengthPenalty(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	plan := PlanGrams(map[int64]string{GeneralTerm: "wxyz"})

	short := map[int]string{1: "wxy", 2: "xyz"}
	seedEntry(t, st, "entry-1", 1, 1, 10, short)

	long := map[int]string{1: "wxy", 2: "xyz"}
	for i := 0; i < 998; i++ {
		long[100+i] = fmt.Sprintf("%03d", i) // filler grams, never queried
	}
	seedEntry(t, st, "entry-2", 2, 1, 10, long)

	scorer := NewScorer(st)
	scores, err := scorer.Score(ctx, plan, 1, []model.ElementCandidate{candidate(1), candidate(2)}, nil, nil)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}

	// Same run in both, but the 1000-gram entry is divided by log10(1000).
	if !approx(scores[1], 1) {
		t.Errorf("short entry score = %v, want 1", scores[1])
	}
	if !approx(scores[2], 1.0/3) {
		t.Errorf("long entry score = %v, want 1/3", scores[2])
	}
}

func TestScoreMultiplier(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	plan := PlanGrams(map[int64]string{GeneralTerm: "wxyz"})
	seedEntry(t, st, "entry-1", 1, 1, 10, map[int]string{1: "wxy", 2: "xyz"})

	fieldA := int64(10)
	subtype := int64(5)
	weights := []*model.CustomFieldWeight{
		{FieldID: &fieldA, ElementType: "entry", Multiplier: 2},
		{FieldID: &fieldA, ElementType: "entry", ElementTypeID: &subtype, Multiplier: 3},
	}

	scorer := NewScorer(st)

	// Type-wide multiplier.
	scores, err := scorer.Score(ctx, plan, 1, []model.ElementCandidate{candidate(1)}, nil, weights)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if !approx(scores[1], 2) {
		t.Errorf("type-wide multiplier score = %v, want 2", scores[1])
	}

	// A subtype-scoped weight wins over the type-wide one.
	tagged := candidate(1)
	tagged.SubtypeID = &subtype
	scores, err = scorer.Score(ctx, plan, 1, []model.ElementCandidate{tagged}, nil, weights)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if !approx(scores[1], 3) {
		t.Errorf("subtype multiplier score = %v, want 3", scores[1])
	}
}

func TestExplain(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	plan := PlanGrams(map[int64]string{GeneralTerm: "wxyz"})
	seedEntry(t, st, "entry-1", 1, 1, 10, map[int]string{1: "wxy", 2: "xyz"})

	scorer := NewScorer(st)
	explanations, err := scorer.Explain(ctx, plan, 1, []model.ElementCandidate{candidate(1)}, nil, nil, 1)
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}
	if len(explanations) != 1 {
		t.Fatalf("got %d explanations, want 1", len(explanations))
	}
	e := explanations[0]
	if e.Runs != 1 || !approx(e.Weight, 1) || e.FilterID != nil || e.NgramCount != 2 {
		t.Errorf("unexpected explanation: %+v", e)
	}
	if len(e.Grams) != 2 {
		t.Errorf("explanation grams = %v, want wxy and xyz", e.Grams)
	}
}
