package query

import (
	"time"

	"github.com/kailas-cloud/matchdex/internal/domain"
	"github.com/kailas-cloud/matchdex/internal/domain/geo"
)

// Eligibility and recency fields of the user index.
const (
	FieldActive        = "active"
	FieldCompleted     = "completed"
	FieldInappropriate = "inappropriate"
	FieldInvisible     = "invisible"
	FieldDisabled      = "disabled"
	FieldLastLogin     = "last_login"
)

// DefaultRecencyDays is the activity window injected when scoring options
// are used without an explicit last_login range.
const DefaultRecencyDays = 90

// Operator combines the terms of a full-text match.
type Operator string

const (
	// OperatorAnd requires every term.
	OperatorAnd Operator = "and"
	// OperatorOr requires any term.
	OperatorOr Operator = "or"
)

// RangeMode selects whether a range includes or excludes matching records.
type RangeMode int

const (
	// RangeInclude routes the range to must.
	RangeInclude RangeMode = iota
	// RangeExclude routes the range to must_not.
	RangeExclude
)

type rangeKey struct {
	branch Branch
	field  string
}

// Builder accumulates clauses for one search. It is not safe for concurrent
// use and is discarded after Build.
type Builder struct {
	index       string
	query       BoolQuery
	ranges      map[rangeKey]*RangeClause
	sort        []SortEntry
	page        Page
	aggs        map[string]any
	trackTotal  bool
	explain     bool
	source      []string
	center      *geo.Point
	scoring     ScoringOptions
	recencyDays int
	now         func() time.Time
}

// Option configures a Builder at construction time.
type Option func(*builderOptions)

type builderOptions struct {
	includeDisabled bool
	recencyDays     int
	now             func() time.Time
}

// WithIncludeDisabled omits the disabled=0 eligibility clause.
func WithIncludeDisabled() Option {
	return func(o *builderOptions) { o.includeDisabled = true }
}

// WithRecencyDays overrides the default activity window used with scoring options.
func WithRecencyDays(days int) Option {
	return func(o *builderOptions) {
		if days > 0 {
			o.recencyDays = days
		}
	}
}

// WithClock sets the time source used for relative date constraints.
func WithClock(now func() time.Time) Option {
	return func(o *builderOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// NewBuilder creates a builder with the baseline eligibility clauses:
// active, completed, not inappropriate, not invisible and, unless
// WithIncludeDisabled is given, not disabled.
func NewBuilder(index string, opts ...Option) *Builder {
	o := builderOptions{recencyDays: DefaultRecencyDays, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	b := &Builder{
		index:       index,
		ranges:      make(map[rangeKey]*RangeClause),
		page:        Page{Size: DefaultPageSize},
		recencyDays: o.recencyDays,
		now:         o.now,
	}

	b.query.Add(BranchMust, Term(FieldActive, 1))
	b.query.Add(BranchMust, Term(FieldCompleted, 1))
	b.query.Add(BranchMust, Term(FieldInappropriate, 0))
	b.query.Add(BranchMust, Term(FieldInvisible, 0))
	if !o.includeDisabled {
		b.query.Add(BranchMust, Term(FieldDisabled, 0))
	}
	return b
}

// Now returns the builder clock reading.
func (b *Builder) Now() time.Time { return b.now() }

// Where adds an exact-match clause to must.
func (b *Builder) Where(field string, value any) error {
	if value == nil {
		return domain.NewConfigurationError(field, "value is undefined")
	}
	b.query.Add(BranchMust, Term(field, value))
	return nil
}

// WhereNot adds an exact-match clause to must_not.
func (b *Builder) WhereNot(field string, value any) error {
	if value == nil {
		return domain.NewConfigurationError(field, "value is undefined")
	}
	b.query.Add(BranchMustNot, Term(field, value))
	return nil
}

// WhereIn requires the field to hold one of values.
func WhereIn[T any](b *Builder, field string, values []T) error {
	if len(values) == 0 {
		return domain.NewConfigurationError(field, "at least one value is required")
	}
	b.query.Add(BranchMust, Terms(field, values))
	return nil
}

// WhereNotIn excludes records whose field holds one of values.
func WhereNotIn[T any](b *Builder, field string, values []T) error {
	if len(values) == 0 {
		return domain.NewConfigurationError(field, "at least one value is required")
	}
	b.query.Add(BranchMustNot, Terms(field, values))
	return nil
}

// Match adds a full-text clause with an explicit term operator.
func (b *Builder) Match(field, text string, op Operator) {
	b.query.Add(BranchMust, Raw{"match": map[string]any{
		field: map[string]any{"query": text, "operator": string(op)},
	}})
}

// WhereContains adds a case-insensitive substring clause to must or should.
func (b *Builder) WhereContains(field, value string, branch Branch) error {
	if branch != BranchMust && branch != BranchShould {
		return domain.NewConfigurationError(field, "contains clause branch must be must or should, got %q", branch)
	}
	b.query.Add(branch, Raw{"wildcard": map[string]any{
		field: map[string]any{"value": "*" + value + "*", "case_insensitive": true},
	}})
	return nil
}

// Filter adds a non-scoring structural clause such as geo_bounding_box.
func (b *Builder) Filter(kind string, value any) error {
	if value == nil {
		return domain.NewConfigurationError(kind, "value is undefined")
	}
	b.query.Add(BranchFilter, Raw{kind: value})
	return nil
}

// Should adds an optional clause.
func (b *Builder) Should(c Clause) { b.query.Add(BranchShould, c) }

// MustNot adds an excluding clause.
func (b *Builder) MustNot(c Clause) { b.query.Add(BranchMustNot, c) }

// Range constrains a numeric field. A second range on the same field in the
// same branch merges into the existing clause instead of adding another.
func (b *Builder) Range(field string, bounds Bounds, mode RangeMode) error {
	if bounds.IsEmpty() {
		return domain.NewConfigurationError(field, "range requires at least one boundary")
	}
	branch := BranchMust
	if mode == RangeExclude {
		branch = BranchMustNot
	}
	key := rangeKey{branch: branch, field: field}
	if rc, ok := b.ranges[key]; ok {
		rc.bounds = rc.bounds.merge(bounds)
		return nil
	}
	rc := &RangeClause{field: field, bounds: bounds.merge(Bounds{})}
	b.ranges[key] = rc
	b.query.Add(branch, rc)
	return nil
}

// HasRange reports whether a range on field exists in must or filter.
func (b *Builder) HasRange(field string) bool {
	_, must := b.ranges[rangeKey{branch: BranchMust, field: field}]
	_, filter := b.ranges[rangeKey{branch: BranchFilter, field: field}]
	return must || filter
}

// Sort appends sort instructions in precedence order.
func (b *Builder) Sort(entries ...SortEntry) { b.sort = append(b.sort, entries...) }

// Limit sets the page size, clamped to MaxPageSize unless Window is used.
func (b *Builder) Limit(n int) {
	if n <= 0 {
		n = DefaultPageSize
	}
	b.page.Size = min(n, MaxPageSize)
}

// Window sets size and offset directly, bounded by MaxWindow.
func (b *Builder) Window(p Page) {
	size := min(max(p.Size, 0), MaxWindow)
	offset := max(p.Offset, 0)
	if offset+size > MaxWindow {
		offset = MaxWindow - size
	}
	b.page = Page{Size: size, Offset: offset}
}

// Offset sets the number of hits to skip.
func (b *Builder) Offset(n int) { b.page.Offset = max(n, 0) }

// Aggregations merges aggregation specs into the request.
func (b *Builder) Aggregations(spec map[string]any) {
	if len(spec) == 0 {
		return
	}
	if b.aggs == nil {
		b.aggs = make(map[string]any, len(spec))
	}
	for k, v := range spec {
		b.aggs[k] = v
	}
}

// TrackTotalHits asks the index for an exact total.
func (b *Builder) TrackTotalHits() { b.trackTotal = true }

// Explain asks the index to return score explanations.
func (b *Builder) Explain() { b.explain = true }

// Source restricts the returned document fields.
func (b *Builder) Source(fields ...string) { b.source = append([]string{}, fields...) }

// SetCenter sets the geo center used by distance filters and sorts.
func (b *Builder) SetCenter(p geo.Point) { b.center = &p }

// Center returns the geo center, or nil when none was set.
func (b *Builder) Center() *geo.Point { return b.center }

// SetScoringOptions stores scoring options; they take effect in Build.
func (b *Builder) SetScoringOptions(opts ScoringOptions) { b.scoring = opts }

// Build finalizes the accumulated clauses. When scoring options are set and
// no last_login range exists, an "active within RecencyDays" range is
// injected before the scoring wrapper is applied.
func (b *Builder) Build() Request {
	if len(b.scoring) > 0 && !b.HasRange(FieldLastLogin) {
		since := b.now().AddDate(0, 0, -b.recencyDays).Unix()
		// bounds are never empty here, error is impossible
		_ = b.Range(FieldLastLogin, AtLeast(float64(since)).InEpochSeconds(), RangeInclude)
	}

	req := Request{
		Index:          b.index,
		Query:          b.query.clone(),
		Scoring:        b.scoring,
		Sort:           append([]SortEntry(nil), b.sort...),
		Page:           b.page,
		TrackTotalHits: b.trackTotal,
		Explain:        b.explain,
	}
	if b.source != nil {
		req.Fields = append([]string{}, b.source...)
	}
	if len(b.aggs) > 0 {
		req.Aggregations = make(map[string]any, len(b.aggs))
		for k, v := range b.aggs {
			req.Aggregations[k] = v
		}
	}
	return req
}
