// Package search ranks legislative entities against free-text queries and
// policy topics. Scoring is deterministic: exact phrase matches outrank
// word overlap, recent updates get a small boost, and ties break on entity
// type and identifier so repeated queries return identical orderings.
package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"congressd/internal/api"
	"congressd/internal/congress"
	"congressd/internal/logging"
)

// Scoring weights. Primary is the entity's title or name, secondary its
// supporting fields (sponsor, committee, state).
const (
	weightPrimaryPhrase   = 2.0
	weightSecondaryPhrase = 1.5
	weightIdentifier      = 1.5
	weightPrimaryWord     = 0.5
	weightSecondaryWord   = 0.3
	weightRecency         = 0.1

	recencyWindow = 30 * 24 * time.Hour

	// fetchWindow is how many entities of each type a search pulls before
	// scoring.
	fetchWindow = 100

	defaultResultLimit = 20
	maxResultLimit     = 100
)

// EntityType names a searchable collection.
type EntityType string

const (
	TypeBill      EntityType = "bill"
	TypeHearing   EntityType = "hearing"
	TypeCommittee EntityType = "committee"
	TypeMember    EntityType = "member"
)

// typeRank orders entity types for tie-breaking.
var typeRank = map[EntityType]int{
	TypeBill:      0,
	TypeHearing:   1,
	TypeCommittee: 2,
	TypeMember:    3,
}

// Result is one ranked match.
type Result struct {
	Type       EntityType `json:"type"`
	Identifier string     `json:"identifier"`
	Title      string     `json:"title"`
	Detail     string     `json:"detail,omitempty"`
	Score      float64    `json:"score"`
	URL        string     `json:"url,omitempty"`
}

// source is the slice of the API client the engine needs.
type source interface {
	Bills(ctx context.Context, cong int, billType congress.BillType, window api.DateRange, limit, offset int) (*congress.BillList, error)
	Hearings(ctx context.Context, cong int, window api.DateRange, limit, offset int) (*congress.HearingList, error)
	Committees(ctx context.Context, cong int, chamber congress.Chamber, limit, offset int) (*congress.CommitteeList, error)
	Members(ctx context.Context, cong, limit, offset int) (*congress.MemberList, error)
}

// Engine scores entities fetched through the shared client, so searches
// ride the same cache and rate budget as direct lookups.
type Engine struct {
	src    source
	logger *logging.AppLogger
	now    func() time.Time
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine builds a search engine over the given source.
func NewEngine(src source, logger *logging.AppLogger) *Engine {
	return &Engine{src: src, logger: logger, now: time.Now}
}

// NewEngineWith builds an engine with options applied.
func NewEngineWith(src source, logger *logging.AppLogger, opts ...EngineOption) *Engine {
	e := NewEngine(src, logger)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SearchAll ranks bills, hearings, committees and members against a
// free-text query. A non-empty types list restricts which collections are
// fetched and scored. A failing collection degrades the result set instead
// of failing the whole search; only every requested collection failing is
// an error.
func (e *Engine) SearchAll(ctx context.Context, query string, cong, limit int, types []string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, api.InvalidArgument("search query must not be empty")
	}
	include, err := parseTypes(types)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit)

	entities, err := e.collect(ctx, cong, include)
	if err != nil {
		return nil, err
	}

	results := e.score(entities, []string{query})
	return truncate(results, limit), nil
}

// parseTypes normalizes a type filter. Empty means every type.
func parseTypes(types []string) (map[EntityType]bool, error) {
	include := map[EntityType]bool{}
	if len(types) == 0 {
		for t := range typeRank {
			include[t] = true
		}
		return include, nil
	}
	for _, raw := range types {
		t := EntityType(strings.ToLower(strings.TrimSpace(raw)))
		// Tolerate plural forms ("bills").
		t = EntityType(strings.TrimSuffix(string(t), "s"))
		if _, ok := typeRank[t]; !ok {
			return nil, api.InvalidArgument("unknown entity type %q", raw)
		}
		include[t] = true
	}
	return include, nil
}

// SearchByTopic ranks entities against a topic's keyword set. An unknown
// topic returns an empty result, not an error.
func (e *Engine) SearchByTopic(ctx context.Context, topic string, cong, limit int) ([]Result, error) {
	keywords := KeywordsFor(topic)
	if len(keywords) == 0 {
		e.logger.Debug("unknown search topic", "topic", topic)
		return []Result{}, nil
	}
	limit = clampLimit(limit)

	include, _ := parseTypes(nil)
	entities, err := e.collect(ctx, cong, include)
	if err != nil {
		return nil, err
	}

	results := e.score(entities, keywords)
	return truncate(results, limit), nil
}

// scorable is one entity flattened for matching.
type scorable struct {
	typ        EntityType
	identifier string
	title      string
	detail     string
	url        string
	primary    string
	secondary  []string
	updated    string
}

func (e *Engine) collect(ctx context.Context, cong int, include map[EntityType]bool) ([]scorable, error) {
	var entities []scorable
	sources := 0

	if include[TypeBill] {
		if list, err := e.src.Bills(ctx, cong, "", api.DateRange{}, fetchWindow, 0); err != nil && !api.IsStale(err) {
			e.logger.Warn("search: bill collection unavailable", "error", err)
		} else {
			sources++
			for i := range list.Bills {
				b := &list.Bills[i]
				entities = append(entities, scorable{
					typ:        TypeBill,
					identifier: b.Identifier(),
					title:      b.Title,
					detail:     "Sponsor: " + b.SponsorName(),
					url:        b.URL,
					primary:    b.Title,
					secondary:  []string{b.SponsorName(), b.LatestActionText()},
					updated:    b.UpdateDate,
				})
			}
		}
	}

	if include[TypeHearing] {
		if list, err := e.src.Hearings(ctx, cong, api.DateRange{}, fetchWindow, 0); err != nil && !api.IsStale(err) {
			e.logger.Warn("search: hearing collection unavailable", "error", err)
		} else {
			sources++
			for i := range list.Hearings {
				h := &list.Hearings[i]
				entities = append(entities, scorable{
					typ:        TypeHearing,
					identifier: string(h.JacketNumber),
					title:      h.DisplayTitle(),
					detail:     "Committee: " + h.CommitteeName(),
					url:        h.URL,
					primary:    h.DisplayTitle(),
					secondary:  []string{h.CommitteeName()},
					updated:    h.UpdateDate,
				})
			}
		}
	}

	if include[TypeCommittee] {
		if list, err := e.src.Committees(ctx, cong, "", fetchWindow, 0); err != nil && !api.IsStale(err) {
			e.logger.Warn("search: committee collection unavailable", "error", err)
		} else {
			sources++
			for i := range list.Committees {
				c := &list.Committees[i]
				entities = append(entities, scorable{
					typ:        TypeCommittee,
					identifier: c.SystemCode,
					title:      c.Name,
					detail:     c.DisplayChamber(),
					url:        c.URL,
					primary:    c.Name,
					secondary:  []string{c.SystemCode},
					updated:    c.UpdateDate,
				})
			}
		}
	}

	if include[TypeMember] {
		if list, err := e.src.Members(ctx, cong, fetchWindow, 0); err != nil && !api.IsStale(err) {
			e.logger.Warn("search: member collection unavailable", "error", err)
		} else {
			sources++
			for i := range list.Members {
				m := &list.Members[i]
				entities = append(entities, scorable{
					typ:        TypeMember,
					identifier: m.BioguideID,
					title:      m.DisplayName(),
					detail:     m.DisplayParty() + ", " + m.State,
					url:        m.URL,
					primary:    m.DisplayName(),
					secondary:  []string{m.State, m.DisplayParty()},
					updated:    m.UpdateDate,
				})
			}
		}
	}

	if sources == 0 {
		return nil, &api.Error{Kind: api.KindUpstreamUnavailable, Err: errAllSourcesFailed}
	}
	return entities, nil
}

var errAllSourcesFailed = &sourceError{}

type sourceError struct{}

func (*sourceError) Error() string { return "every searchable collection failed to load" }

func (e *Engine) score(entities []scorable, terms []string) []Result {
	now := e.now()
	results := make([]Result, 0, len(entities))
	for i := range entities {
		ent := &entities[i]
		best := 0.0
		for _, term := range terms {
			if s := scoreEntity(ent, term); s > best {
				best = s
			}
		}
		if best == 0 {
			continue
		}
		if recent(ent.updated, now) {
			best += weightRecency
		}
		results = append(results, Result{
			Type:       ent.typ,
			Identifier: ent.identifier,
			Title:      ent.title,
			Detail:     ent.detail,
			Score:      best,
			URL:        ent.url,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if typeRank[results[i].Type] != typeRank[results[j].Type] {
			return typeRank[results[i].Type] < typeRank[results[j].Type]
		}
		return results[i].Identifier < results[j].Identifier
	})
	return results
}

func scoreEntity(ent *scorable, term string) float64 {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return 0
	}
	score := 0.0

	primary := strings.ToLower(ent.primary)
	if strings.Contains(primary, term) {
		score += weightPrimaryPhrase
	} else {
		score += weightPrimaryWord * wordOverlap(primary, term)
	}

	for _, field := range ent.secondary {
		lower := strings.ToLower(field)
		if strings.Contains(lower, term) {
			score += weightSecondaryPhrase
		} else {
			score += weightSecondaryWord * wordOverlap(lower, term)
		}
	}

	if strings.EqualFold(ent.identifier, term) {
		score += weightIdentifier
	}
	return score
}

// wordOverlap counts how many query words appear in the field.
func wordOverlap(field, term string) float64 {
	if field == "" {
		return 0
	}
	fieldWords := map[string]bool{}
	for _, w := range strings.Fields(field) {
		fieldWords[strings.Trim(w, ".,;:()")] = true
	}
	matched := 0.0
	for _, w := range strings.Fields(term) {
		if fieldWords[w] {
			matched++
		}
	}
	return matched
}

var updateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02",
}

func recent(updated string, now time.Time) bool {
	if updated == "" {
		return false
	}
	for _, layout := range updateLayouts {
		if t, err := time.Parse(layout, updated); err == nil {
			return now.Sub(t) <= recencyWindow
		}
	}
	return false
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultResultLimit
	}
	if limit > maxResultLimit {
		return maxResultLimit
	}
	return limit
}

func truncate(results []Result, limit int) []Result {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}
