// Package search implements query planning, relevance scoring, and the
// request orchestration that ties candidate selection, filtering, scoring,
// and pagination together.
package search

import (
	"sort"
	"strings"

	"github.com/charliedev/reliquary/internal/ngram"
	"github.com/charliedev/reliquary/internal/normalizer"
)

// GeneralTerm is the planner key for the group-wide search term that is not
// bound to any particular filter.
const GeneralTerm int64 = -1

// Plan is the weighted gram set derived from a request's search strings.
// Weights are kept per filter so the scorer can require every filter's text
// to match independently.
type Plan struct {
	// weights maps filter id (GeneralTerm for the unbound term) to the
	// accumulated weight of each gram key under that filter.
	weights map[int64]map[string]float64

	// required holds the filter ids (general term excluded) that produced at
	// least one gram; an element must match text under every one of them.
	required []int64

	grams []string
}

// PlanGrams converts the request's search strings, one per filter plus an
// optional general term keyed by GeneralTerm, into a weighted gram plan.
//
// Each term is padded, normalized, and broken into grams. Grams containing a
// space act as run boundaries and carry no weight themselves; within a run
// of N boundary-free grams each occurrence accumulates weight 1/N, so every
// matched word contributes a total weight of 1 regardless of its length.
func PlanGrams(terms map[int64]string) *Plan {
	plan := &Plan{weights: make(map[int64]map[string]float64)}
	seen := make(map[string]bool)

	for key, term := range terms {
		grams := ngram.Build(normalizer.Normalize(ngram.Pad(term)))

		var run []string
		flush := func() {
			if len(run) == 0 {
				return
			}
			weights := plan.weights[key]
			if weights == nil {
				weights = make(map[string]float64)
				plan.weights[key] = weights
			}
			share := 1 / float64(len(run))
			for _, g := range run {
				weights[g] += share
				if !seen[g] {
					seen[g] = true
					plan.grams = append(plan.grams, g)
				}
			}
			run = run[:0]
		}
		for _, g := range grams {
			if strings.ContainsRune(g, ' ') {
				flush()
				continue
			}
			run = append(run, g)
		}
		flush()

		if key != GeneralTerm && len(plan.weights[key]) > 0 {
			plan.required = append(plan.required, key)
		}
	}

	sort.Strings(plan.grams)
	sort.Slice(plan.required, func(i, j int) bool { return plan.required[i] < plan.required[j] })
	return plan
}

// Empty reports whether no search string produced any gram.
func (p *Plan) Empty() bool {
	return len(p.grams) == 0
}

// Grams returns the distinct gram keys across every term, sorted.
func (p *Plan) Grams() []string {
	return p.grams
}

// RequiredFilters returns the filter ids whose text must match.
func (p *Plan) RequiredFilters() []int64 {
	return p.required
}

// FilterWeights returns the gram weight map for one filter id, or nil when
// the filter contributed no grams.
func (p *Plan) FilterWeights(filterID int64) map[string]float64 {
	return p.weights[filterID]
}

// FilterIDs returns every filter id present in the plan, the general term
// included, sorted.
func (p *Plan) FilterIDs() []int64 {
	ids := make([]int64, 0, len(p.weights))
	for id := range p.weights {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
