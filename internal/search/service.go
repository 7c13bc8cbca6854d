package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/charliedev/reliquary/config"
	"github.com/charliedev/reliquary/internal/errors"
	"github.com/charliedev/reliquary/internal/registry"
	"github.com/charliedev/reliquary/internal/store"
	"github.com/charliedev/reliquary/model"
	"github.com/charliedev/reliquary/services"
)

// defaultPageSize applies when a group was saved without an explicit page
// size.
const defaultPageSize = 20

// Service orchestrates a search request end to end: candidate selection
// across the group's element types, filter predicates, text scoring or
// static ordering, pagination, and element materialization.
type Service struct {
	store    *store.Store
	registry *registry.Registry
	scorer   *Scorer
	settings *config.Settings
}

// NewService creates the search orchestrator.
func NewService(s *store.Store, r *registry.Registry, settings *config.Settings) *Service {
	return &Service{
		store:    s,
		registry: r,
		scorer:   NewScorer(s),
		settings: settings,
	}
}

var _ services.Searcher = (*Service)(nil)

// parsedOptions is the outcome of walking a request's option set.
type parsedOptions struct {
	texts   map[int64]string // filter id (GeneralTerm for the unbound term) -> search text
	queries []*services.FilterQuery
	rawByID map[int64]interface{} // non-general option values, for usage logging
}

// Search runs one paginated search against a group, identified by numeric id
// or by handle.
func (s *Service) Search(ctx context.Context, groupKey string, options []services.SearchOption, page int, subjectID string) (*services.SearchResult, error) {
	started := time.Now()

	group, err := s.resolveGroup(ctx, groupKey)
	if err != nil {
		return nil, err
	}
	filters, err := s.store.FiltersByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	selectors, err := s.store.SearchElementsByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	parsed, err := s.parseOptions(ctx, group, filters, selectors, options)
	if err != nil {
		return nil, err
	}

	candidates, err := s.collectCandidates(ctx, group, selectors)
	if err != nil {
		return nil, err
	}
	candidates = applyPredicates(candidates, parsed.queries)

	var scores map[int64]float64
	scored := false
	if len(parsed.texts) > 0 {
		plan := PlanGrams(parsed.texts)
		// Terms too short to produce grams degrade to the static order
		// rather than silently matching nothing.
		if !plan.Empty() {
			weights, err := s.store.AllWeights(ctx)
			if err != nil {
				return nil, err
			}
			scores, err = s.scorer.Score(ctx, plan, group.SiteID, candidates, filters, weights)
			if err != nil {
				return nil, err
			}
			scored = true
		}
	}

	if scored {
		kept := candidates[:0]
		for _, c := range candidates {
			if scores[c.ID] >= s.settings.MinimumScore && scores[c.ID] > 0 {
				kept = append(kept, c)
			}
		}
		candidates = kept
		sort.SliceStable(candidates, func(i, j int) bool {
			si, sj := scores[candidates[i].ID], scores[candidates[j].ID]
			if si != sj {
				return si > sj
			}
			return candidates[i].ID < candidates[j].ID
		})
	} else {
		sortCandidates(candidates, group.SearchOrder)
	}

	total := int64(len(candidates))
	pageSize := group.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if page < 1 {
		page = 1
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	offset := (page - 1) * pageSize
	var pageCandidates []model.ElementCandidate
	if offset < len(candidates) {
		end := offset + pageSize
		if end > len(candidates) {
			end = len(candidates)
		}
		pageCandidates = candidates[offset:end]
	}

	elements, err := s.materialize(ctx, group.SiteID, pageCandidates, scores, scored)
	if err != nil {
		return nil, err
	}

	s.recordSearch(ctx, subjectID, parsed)

	// Ordinals derive from the requested page alone, so an empty page still
	// reports where it would have started.
	result := &services.SearchResult{
		TotalElements: total,
		TotalPages:    totalPages,
		FirstElement:  int64(offset + 1),
		LastElement:   int64(offset + len(pageCandidates)),
		Elements:      elements,
		CurrentPage:   page,
		PageSize:      pageSize,
		QueryTime:     float64(time.Since(started).Microseconds()) / 1000,
		QueryID:       uuid.NewString(),
	}
	if page > 1 {
		prev := page - 1
		result.PreviousPage = &prev
	}
	if page < totalPages {
		next := page + 1
		result.NextPage = &next
	}
	return result, nil
}

// Explain reruns the scoring pipeline for one element of a group and
// returns its per-entry contributions.
func (s *Service) Explain(ctx context.Context, groupKey string, options []services.SearchOption, elementID int64) ([]services.ScoreExplanation, error) {
	group, err := s.resolveGroup(ctx, groupKey)
	if err != nil {
		return nil, err
	}
	filters, err := s.store.FiltersByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	selectors, err := s.store.SearchElementsByGroup(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	parsed, err := s.parseOptions(ctx, group, filters, selectors, options)
	if err != nil {
		return nil, err
	}
	if len(parsed.texts) == 0 {
		return nil, nil
	}
	plan := PlanGrams(parsed.texts)
	if plan.Empty() {
		return nil, nil
	}

	candidates, err := s.collectCandidates(ctx, group, selectors)
	if err != nil {
		return nil, err
	}
	target := candidates[:0]
	for _, c := range candidates {
		if c.ID == elementID {
			target = append(target, c)
		}
	}
	weights, err := s.store.AllWeights(ctx)
	if err != nil {
		return nil, err
	}
	return s.scorer.Explain(ctx, plan, group.SiteID, target, filters, weights, elementID)
}

// GetOptions lists the selectable options of one filter. Attribute-bound
// filters are answered by the element types that recognize the attribute;
// when several do, their metadata must agree.
func (s *Service) GetOptions(ctx context.Context, filterID int64, hint string) (*services.OptionSet, error) {
	filter, err := s.store.FilterByID(ctx, filterID)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return nil, errors.NewFilterNotFoundError(filterID)
	}

	if filter.FieldID != nil {
		handler, name, ok := s.registry.FieldHandler(*filter.FieldID)
		if !ok {
			return nil, errors.NewMissingHandlerError("get field options", name)
		}
		return handler.GetFieldOptions(ctx, *filter.FieldID, hint, s.settings.OptionPageSize)
	}

	attribute := *filter.Attribute
	selectors, err := s.store.SearchElementsByGroup(ctx, filter.GroupID)
	if err != nil {
		return nil, err
	}
	var merged *services.OptionSet
	for _, name := range selectorTypes(selectors) {
		handler, ok := s.registry.ElementType(name)
		if !ok {
			return nil, errors.NewMissingHandlerError("get attribute options", name)
		}
		set, handled, err := handler.GetAttributeOptions(ctx, attribute, hint, s.settings.OptionPageSize)
		if err != nil {
			return nil, err
		}
		if !handled {
			continue
		}
		if merged == nil {
			merged = set
			continue
		}
		if merged.Type != set.Type || merged.Total != set.Total {
			return nil, errors.NewConflictingOptionsError(attribute)
		}
	}
	if merged == nil {
		return nil, errors.NewMissingHandlerError("get attribute options", attribute)
	}
	return merged, nil
}

// resolveGroup finds a group by numeric id or handle.
func (s *Service) resolveGroup(ctx context.Context, groupKey string) (*model.SearchGroup, error) {
	var group *model.SearchGroup
	var err error
	if id, convErr := strconv.ParseInt(groupKey, 10, 64); convErr == nil {
		group, err = s.store.GroupByID(ctx, id)
	} else {
		group, err = s.store.GroupByHandle(ctx, groupKey)
	}
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, errors.NewSearchGroupNotFoundError(groupKey)
	}
	return group, nil
}

// parseOptions walks the request's option set once, rejecting duplicates and
// unknown filters, collecting search texts and structural predicates.
func (s *Service) parseOptions(ctx context.Context, group *model.SearchGroup, filters []*model.SearchGroupFilter, selectors []*model.SearchGroupElement, options []services.SearchOption) (*parsedOptions, error) {
	filterByID := make(map[int64]*model.SearchGroupFilter, len(filters))
	for _, f := range filters {
		filterByID[f.ID] = f
	}

	parsed := &parsedOptions{
		texts:   make(map[int64]string),
		rawByID: make(map[int64]interface{}),
	}
	seen := make(map[int64]bool)
	for _, option := range options {
		if option.Value == nil {
			continue
		}
		if str, ok := option.Value.(string); ok && strings.TrimSpace(str) == "" {
			continue
		}

		key := GeneralTerm
		if option.Filter != nil {
			key = *option.Filter
		}
		if seen[key] {
			return nil, errors.NewDuplicateFilterError(key)
		}
		seen[key] = true

		if key == GeneralTerm {
			term, ok := option.Value.(string)
			if !ok {
				return nil, errors.NewMalformedFilterValueError(key, "general term must be a string")
			}
			parsed.texts[GeneralTerm] = term
			continue
		}

		filter := filterByID[key]
		if filter == nil {
			return nil, errors.NewFilterNotFoundError(key)
		}
		parsed.rawByID[key] = option.Value

		query := &services.FilterQuery{}
		if filter.FieldID != nil {
			handler, name, ok := s.registry.FieldHandler(*filter.FieldID)
			if !ok {
				return nil, errors.NewMissingHandlerError("modify filter query", name)
			}
			if err := handler.ModifyFilterQuery(ctx, filter, option.Value, query); err != nil {
				return nil, err
			}
		} else {
			handled := false
			for _, typeName := range selectorTypes(selectors) {
				handler, ok := s.registry.ElementType(typeName)
				if !ok {
					return nil, errors.NewMissingHandlerError("extend element type query", typeName)
				}
				ok, err := handler.ModifyAttributeFilterQuery(ctx, filter, option.Value, query)
				if err != nil {
					return nil, err
				}
				handled = handled || ok
			}
			if !handled {
				return nil, errors.NewMissingHandlerError("modify attribute filter query", *filter.Attribute)
			}
		}

		if query.TextSearchRequested() {
			term, ok := option.Value.(string)
			if !ok {
				return nil, errors.NewMalformedFilterValueError(key, "text filter value must be a string")
			}
			parsed.texts[key] = term
		}
		parsed.queries = append(parsed.queries, query)
	}
	return parsed, nil
}

// collectCandidates unions every selector's candidate set, tagging each
// candidate with its selector's sort priority and dropping duplicates in
// favor of the earliest selector.
func (s *Service) collectCandidates(ctx context.Context, group *model.SearchGroup, selectors []*model.SearchGroupElement) ([]model.ElementCandidate, error) {
	var candidates []model.ElementCandidate
	seen := make(map[int64]bool)
	for _, selector := range selectors {
		handler, ok := s.registry.ElementType(selector.ElementType)
		if !ok {
			return nil, errors.NewMissingHandlerError("extend element type query", selector.ElementType)
		}
		batch, err := handler.ExtendTypeQuery(ctx, selector, group.SiteID)
		if err != nil {
			return nil, fmt.Errorf("failed to query candidates for type %q: %w", selector.ElementType, err)
		}
		for _, c := range batch {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			c.Priority = selector.SortOrder
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}

// selectorTypes returns the distinct element type names referenced by a
// group's selectors, in configuration order.
func selectorTypes(selectors []*model.SearchGroupElement) []string {
	var names []string
	seen := make(map[string]bool)
	for _, selector := range selectors {
		if !seen[selector.ElementType] {
			seen[selector.ElementType] = true
			names = append(names, selector.ElementType)
		}
	}
	return names
}

func applyPredicates(candidates []model.ElementCandidate, queries []*services.FilterQuery) []model.ElementCandidate {
	if len(queries) == 0 {
		return candidates
	}
	kept := candidates[:0]
	for i := range candidates {
		match := true
		for _, q := range queries {
			if !q.Match(&candidates[i]) {
				match = false
				break
			}
		}
		if match {
			kept = append(kept, candidates[i])
		}
	}
	return kept
}

// sortCandidates applies the group's configured static order, used whenever
// no search text was supplied.
func sortCandidates(candidates []model.ElementCandidate, order string) {
	less := func(a, b *model.ElementCandidate) bool { return a.ID < b.ID }
	switch order {
	case model.SearchOrderIDDesc:
		less = func(a, b *model.ElementCandidate) bool { return a.ID > b.ID }
	case model.SearchOrderTitleAsc:
		less = func(a, b *model.ElementCandidate) bool {
			ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if ta != tb {
				return ta < tb
			}
			return a.ID < b.ID
		}
	case model.SearchOrderTitleDesc:
		less = func(a, b *model.ElementCandidate) bool {
			ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if ta != tb {
				return ta > tb
			}
			return a.ID < b.ID
		}
	case model.SearchOrderDateAsc:
		less = func(a, b *model.ElementCandidate) bool { return dateLess(a, b, true) }
	case model.SearchOrderDateDesc:
		less = func(a, b *model.ElementCandidate) bool { return dateLess(a, b, false) }
	case model.SearchOrderDefault:
		less = func(a, b *model.ElementCandidate) bool {
			if a.Priority != b.Priority {
				return a.Priority < b.Priority
			}
			return hintLess(a, b)
		}
	case model.SearchOrderDefaultNoGroup:
		less = hintLess
	case model.SearchOrderIDAsc:
		// Already the fallback.
	}
	sort.SliceStable(candidates, func(i, j int) bool { return less(&candidates[i], &candidates[j]) })
}

// hintLess orders by structural position first when both sides have one,
// then by content date (newest first), missing hints last, id as the final
// tie-break.
func hintLess(a, b *model.ElementCandidate) bool {
	switch {
	case a.Position != nil && b.Position != nil:
		if *a.Position != *b.Position {
			return *a.Position < *b.Position
		}
	case a.Position != nil:
		return true
	case b.Position != nil:
		return false
	}
	switch {
	case a.PostDate != nil && b.PostDate != nil:
		if !a.PostDate.Equal(*b.PostDate) {
			return a.PostDate.After(*b.PostDate)
		}
	case a.PostDate != nil:
		return true
	case b.PostDate != nil:
		return false
	}
	return a.ID < b.ID
}

func dateLess(a, b *model.ElementCandidate, ascending bool) bool {
	switch {
	case a.PostDate != nil && b.PostDate != nil:
		if !a.PostDate.Equal(*b.PostDate) {
			if ascending {
				return a.PostDate.Before(*b.PostDate)
			}
			return a.PostDate.After(*b.PostDate)
		}
	case a.PostDate != nil:
		return true
	case b.PostDate != nil:
		return false
	}
	return a.ID < b.ID
}

// materialize loads display-ready elements for the page, one batch per
// element type, preserving the page order and attaching scores.
func (s *Service) materialize(ctx context.Context, siteID int64, page []model.ElementCandidate, scores map[int64]float64, scored bool) ([]*model.Element, error) {
	idsByType := make(map[string][]int64)
	for _, c := range page {
		idsByType[c.Type] = append(idsByType[c.Type], c.ID)
	}

	loaded := make(map[int64]*model.Element, len(page))
	for typeName, ids := range idsByType {
		handler, ok := s.registry.ElementType(typeName)
		if !ok {
			return nil, errors.NewMissingHandlerError("get elements", typeName)
		}
		batch, err := handler.GetElements(ctx, ids, siteID)
		if err != nil {
			return nil, fmt.Errorf("failed to materialize elements of type %q: %w", typeName, err)
		}
		for id, element := range batch {
			loaded[id] = element
		}
	}

	elements := make([]*model.Element, 0, len(page))
	for _, c := range page {
		element := loaded[c.ID]
		if element == nil {
			log.Printf("Element %d of type %q was not materialized, dropping from page", c.ID, c.Type)
			continue
		}
		if scored {
			score := scores[c.ID]
			element.Score = &score
		}
		elements = append(elements, element)
	}
	return elements, nil
}

// recordSearch logs the executed search for usage statistics, best-effort.
func (s *Service) recordSearch(ctx context.Context, subjectID string, parsed *parsedOptions) {
	if subjectID == "" {
		return
	}
	record := &model.SearchRecord{
		SubjectID: subjectID,
		Term:      parsed.texts[GeneralTerm],
	}
	if len(parsed.rawByID) > 0 {
		byID := make(map[string]interface{}, len(parsed.rawByID))
		for id, value := range parsed.rawByID {
			byID[strconv.FormatInt(id, 10)] = value
		}
		encoded, err := json.Marshal(byID)
		if err == nil {
			record.Filters = string(encoded)
		}
	}
	if err := s.store.InsertSearchRecord(ctx, record); err != nil {
		log.Printf("Failed to record search for subject %s: %v", subjectID, err)
	}
}
