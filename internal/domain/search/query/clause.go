package query

// Branch is one of the clause categories of a bool query.
type Branch string

const (
	// BranchMust clauses must match and contribute to the score.
	BranchMust Branch = "must"
	// BranchMustNot clauses must not match.
	BranchMustNot Branch = "must_not"
	// BranchShould clauses are optional; at least one must match once any is present.
	BranchShould Branch = "should"
	// BranchFilter clauses must match but never score.
	BranchFilter Branch = "filter"
)

// Clause is a single query clause in index wire form.
type Clause interface {
	Source() map[string]any
}

// Raw is a clause already expressed as an index query object.
type Raw map[string]any

// Source returns the clause itself.
func (r Raw) Source() map[string]any { return r }

// RangeClause constrains one field. The builder keeps a single instance per
// (branch, field) and merges later constraints into it.
type RangeClause struct {
	field  string
	bounds Bounds
}

// NewRange creates a standalone range clause, e.g. for nested bool queries.
func NewRange(field string, b Bounds) *RangeClause {
	return &RangeClause{field: field, bounds: b.merge(Bounds{})}
}

// Bounds returns the merged boundaries.
func (r *RangeClause) Bounds() Bounds { return r.bounds }

// Source renders the range clause.
func (r *RangeClause) Source() map[string]any {
	return map[string]any{"range": map[string]any{r.field: r.bounds.source()}}
}

// BoolQuery accumulates clauses per branch.
type BoolQuery struct {
	Must               []Clause
	MustNot            []Clause
	Should             []Clause
	Filter             []Clause
	MinimumShouldMatch int
}

// Add appends a clause to the branch. Any should clause sets
// minimum_should_match to 1.
func (q *BoolQuery) Add(b Branch, c Clause) {
	switch b {
	case BranchMust:
		q.Must = append(q.Must, c)
	case BranchMustNot:
		q.MustNot = append(q.MustNot, c)
	case BranchShould:
		q.Should = append(q.Should, c)
		q.MinimumShouldMatch = 1
	case BranchFilter:
		q.Filter = append(q.Filter, c)
	}
}

// IsEmpty reports whether the query has no clauses.
func (q *BoolQuery) IsEmpty() bool {
	return len(q.Must) == 0 && len(q.MustNot) == 0 && len(q.Should) == 0 && len(q.Filter) == 0
}

// Source renders {"bool": {...}}. Empty branches are omitted.
func (q *BoolQuery) Source() map[string]any {
	body := make(map[string]any, 5)
	put := func(name string, clauses []Clause) {
		if len(clauses) == 0 {
			return
		}
		out := make([]any, len(clauses))
		for i, c := range clauses {
			out[i] = c.Source()
		}
		body[name] = out
	}
	put(string(BranchMust), q.Must)
	put(string(BranchMustNot), q.MustNot)
	put(string(BranchShould), q.Should)
	put(string(BranchFilter), q.Filter)
	if q.MinimumShouldMatch > 0 {
		body["minimum_should_match"] = q.MinimumShouldMatch
	}
	return map[string]any{"bool": body}
}

// clone detaches the query from the builder: range clauses are copied so
// later merges cannot leak into an already built request.
func (q *BoolQuery) clone() BoolQuery {
	return BoolQuery{
		Must:               cloneClauses(q.Must),
		MustNot:            cloneClauses(q.MustNot),
		Should:             cloneClauses(q.Should),
		Filter:             cloneClauses(q.Filter),
		MinimumShouldMatch: q.MinimumShouldMatch,
	}
}

func cloneClauses(in []Clause) []Clause {
	if len(in) == 0 {
		return nil
	}
	out := make([]Clause, len(in))
	for i, c := range in {
		if rc, ok := c.(*RangeClause); ok {
			cp := *rc
			out[i] = &cp
			continue
		}
		out[i] = c
	}
	return out
}

// Term builds an exact-match clause.
func Term(field string, value any) Raw {
	return Raw{"term": map[string]any{field: value}}
}

// Terms builds a membership clause.
func Terms[T any](field string, values []T) Raw {
	return Raw{"terms": map[string]any{field: values}}
}
