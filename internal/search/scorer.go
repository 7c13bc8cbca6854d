package search

import (
	"context"
	"math"
	"sort"
	"strconv"

	"github.com/charliedev/reliquary/internal/store"
	"github.com/charliedev/reliquary/model"
	"github.com/charliedev/reliquary/services"
)

// Scorer computes per-element relevance from stored postings and a gram
// plan. It is stateless apart from the store handle and safe for concurrent
// use.
type Scorer struct {
	store *store.Store
}

// NewScorer creates a scorer backed by the given store.
func NewScorer(s *store.Store) *Scorer {
	return &Scorer{store: s}
}

// contribution is one index entry's score under one filter context.
type contribution struct {
	entry      model.IndexEntry
	filterID   int64 // GeneralTerm for the unbound term
	runs       int
	runScore   float64 // sum of run scores before the length penalty
	weight     float64 // after the length penalty
	multiplier float64
	grams      []string
}

// Score evaluates the plan against the candidate set and returns the
// aggregate score per element id. Elements that fail to match text under
// every required filter are omitted entirely. Minimum-score cutoff is the
// caller's concern.
func (s *Scorer) Score(ctx context.Context, plan *Plan, siteID int64, candidates []model.ElementCandidate, filters []*model.SearchGroupFilter, weights []*model.CustomFieldWeight) (map[int64]float64, error) {
	scores, _, err := s.evaluate(ctx, plan, siteID, candidates, filters, weights)
	return scores, err
}

// Explain evaluates the plan like Score but returns the per-entry
// contributions of a single element, for relevance debugging.
func (s *Scorer) Explain(ctx context.Context, plan *Plan, siteID int64, candidates []model.ElementCandidate, filters []*model.SearchGroupFilter, weights []*model.CustomFieldWeight, elementID int64) ([]services.ScoreExplanation, error) {
	_, contribs, err := s.evaluate(ctx, plan, siteID, candidates, filters, weights)
	if err != nil {
		return nil, err
	}
	var explanations []services.ScoreExplanation
	for _, c := range contribs {
		if c.entry.ElementID != elementID {
			continue
		}
		e := services.ScoreExplanation{
			ElementID:  c.entry.ElementID,
			FieldID:    c.entry.FieldID,
			Attribute:  c.entry.Attribute,
			NgramCount: c.entry.NgramCount,
			Runs:       c.runs,
			RunScore:   c.runScore,
			Weight:     c.weight,
			Multiplier: c.multiplier,
			Grams:      c.grams,
		}
		if c.filterID != GeneralTerm {
			id := c.filterID
			e.FilterID = &id
		}
		explanations = append(explanations, e)
	}
	return explanations, nil
}

func (s *Scorer) evaluate(ctx context.Context, plan *Plan, siteID int64, candidates []model.ElementCandidate, filters []*model.SearchGroupFilter, weights []*model.CustomFieldWeight) (map[int64]float64, []contribution, error) {
	if plan.Empty() || len(candidates) == 0 {
		return map[int64]float64{}, nil, nil
	}

	byID := make(map[int64]*model.ElementCandidate, len(candidates))
	ids := make([]int64, 0, len(candidates))
	for i := range candidates {
		byID[candidates[i].ID] = &candidates[i]
		ids = append(ids, candidates[i].ID)
	}

	matches, err := s.store.MatchedPostings(ctx, siteID, plan.Grams(), ids)
	if err != nil {
		return nil, nil, err
	}

	filterTargets := make(map[int64]string, len(filters))
	for _, f := range filters {
		filterTargets[f.ID] = f.TargetKey()
	}
	multipliers := buildMultiplierIndex(weights)
	contexts := plan.FilterIDs()

	scores := make(map[int64]float64)
	matchedFilters := make(map[int64]map[int64]bool)
	var contribs []contribution

	// Postings arrive ordered by entry then offset, so each entry is one
	// contiguous slice of the result.
	for start := 0; start < len(matches); {
		end := start
		for end < len(matches) && matches[end].Entry.ID == matches[start].Entry.ID {
			end++
		}
		group := matches[start:end]
		start = end

		entry := group[0].Entry
		candidate := byID[entry.ElementID]
		if candidate == nil {
			continue
		}

		for _, filterID := range contexts {
			// A filter's text only scores against the field or attribute the
			// filter targets; the general term scores against everything.
			if filterID != GeneralTerm && filterTargets[filterID] != entry.TargetKey() {
				continue
			}
			c, ok := scoreEntry(group, plan.FilterWeights(filterID))
			if !ok {
				continue
			}
			c.entry = entry
			c.filterID = filterID
			c.multiplier = multipliers.lookup(entry.TargetKey(), candidate.Type, candidate.SubtypeID)
			contribs = append(contribs, c)

			scores[entry.ElementID] += c.weight * c.multiplier
			if filterID != GeneralTerm {
				set := matchedFilters[entry.ElementID]
				if set == nil {
					set = make(map[int64]bool)
					matchedFilters[entry.ElementID] = set
				}
				set[filterID] = true
			}
		}
	}

	// Every filter that carried text must have matched something on the
	// element, otherwise it is excluded outright.
	required := plan.RequiredFilters()
	for id := range scores {
		if len(matchedFilters[id]) < len(required) {
			delete(scores, id)
		}
	}
	return scores, contribs, nil
}

// scoreEntry reconstructs maximal consecutive-offset runs among the matched
// postings of one index entry, restricted to grams weighted under the given
// filter context, and folds them into a single contribution. The exponent
// 10/runLength rewards long contiguous matches disproportionately; the
// log10 divisor keeps very large fields from dominating by sheer volume.
func scoreEntry(group []store.MatchedPosting, gramWeights map[string]float64) (contribution, bool) {
	if len(gramWeights) == 0 {
		return contribution{}, false
	}

	var c contribution
	gramSeen := make(map[string]bool)

	runWeight := 0.0
	runLength := 0
	lastOffset := 0
	flush := func() {
		if runLength == 0 {
			return
		}
		c.runs++
		c.runScore += math.Pow(runWeight, 10/float64(runLength))
		runWeight = 0
		runLength = 0
	}
	for _, m := range group {
		w, ok := gramWeights[m.Key]
		if !ok {
			continue
		}
		if runLength > 0 && m.Offset != lastOffset+1 {
			flush()
		}
		runWeight += w
		runLength++
		lastOffset = m.Offset
		if !gramSeen[m.Key] {
			gramSeen[m.Key] = true
			c.grams = append(c.grams, m.Key)
		}
	}
	flush()

	if c.runs == 0 {
		return contribution{}, false
	}
	sort.Strings(c.grams)
	divisor := math.Log10(float64(group[0].Entry.NgramCount))
	if divisor < 1 {
		divisor = 1
	}
	c.weight = c.runScore / divisor
	return c, true
}

// multiplierIndex resolves custom field weight multipliers by field or
// attribute target, element type, and optional subtype.
type multiplierIndex map[string]float64

func buildMultiplierIndex(weights []*model.CustomFieldWeight) multiplierIndex {
	idx := make(multiplierIndex, len(weights))
	for _, w := range weights {
		idx[multiplierKey(w.TargetKey(), w.ElementType, w.ElementTypeID)] = w.Multiplier
	}
	return idx
}

// lookup resolves the multiplier for a target and element type, preferring a
// subtype-scoped entry over a type-wide one, defaulting to 1.
func (idx multiplierIndex) lookup(target, elementType string, subtypeID *int64) float64 {
	if subtypeID != nil {
		if m, ok := idx[multiplierKey(target, elementType, subtypeID)]; ok {
			return m
		}
	}
	if m, ok := idx[multiplierKey(target, elementType, nil)]; ok {
		return m
	}
	return 1
}

func multiplierKey(target, elementType string, subtypeID *int64) string {
	key := target + "|" + elementType + "|"
	if subtypeID != nil {
		key += strconv.FormatInt(*subtypeID, 10)
	}
	return key
}
